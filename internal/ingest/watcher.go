package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a file must stay quiet before it is handed
// off. Editors and downloads write in bursts; acting on the first event
// would read half a document.
const settleDelay = 500 * time.Millisecond

// DocumentHandler processes one settled document.
type DocumentHandler func(ctx context.Context, path string)

// Watch monitors dir for created or rewritten documents until ctx is
// cancelled. Subdirectories are not watched. Handlers run one at a
// time, on the watch goroutine, so downstream host mutation stays
// strictly sequential.
func Watch(ctx context.Context, dir string, handler DocumentHandler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	slog.Info("watching for documents", "dir", dir)

	// One timer per path; every new event replaces it and bumps the
	// path's generation. A replaced timer may already have fired and be
	// blocked sending, so deliveries carry the generation they were
	// scheduled with and stale ones are dropped on receipt.
	type delivery struct {
		path string
		gen  uint64
	}
	pending := make(map[string]*time.Timer)
	gens := make(map[string]uint64)
	settled := make(chan delivery)

	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		gens[path]++
		gen := gens[path]
		if t, ok := pending[path]; ok {
			t.Stop()
		}
		pending[path] = time.AfterFunc(settleDelay, func() {
			select {
			case settled <- delivery{path: path, gen: gen}:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case d := <-settled:
			if d.gen != gens[d.path] {
				continue
			}
			delete(pending, d.path)
			delete(gens, d.path)
			handler(ctx, d.path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !Supported(event.Name) {
				continue
			}
			slog.Debug("document changed", "path", event.Name, "op", event.Op.String())
			schedule(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}
