// Package render serializes cards into host markup nodes.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/nbarna/cardsmith/internal/card"
	"github.com/nbarna/cardsmith/internal/host"
)

// Markup separators understood by the host's flashcard plugin. A node's
// separator decides how it is studied: forward only, both directions,
// or as an attribute of its parent.
const (
	basicSeparator      = " >> "
	reverseSeparator    = " <> "
	descriptorSeparator = " ;; "
	listSuffix          = " >>>"
)

// numberedCloze matches the numbered deletion form {{cN::X}} some
// models emit out of habit. The host expects plain {{X}} spans.
var numberedCloze = regexp.MustCompile(`\{\{c\d+::(.*?)\}\}`)

// RewriteCloze converts numbered cloze deletions to the plain form the
// host understands. Text already in plain form passes through intact.
func RewriteCloze(text string) string {
	return numberedCloze.ReplaceAllString(text, "{{$1}}")
}

// Renderer writes cards into a note host, one node per creation call.
type Renderer struct {
	host host.NodeCreator
}

// New creates a renderer on top of the given host.
func New(h host.NodeCreator) *Renderer {
	return &Renderer{host: h}
}

// Render emits the markup node(s) for one card under parent and returns
// the refs the host handed back, in creation order. A card of unknown
// type is ignored with a warning and produces no nodes. List cards are
// abandoned at the first failed node; refs already created are still
// returned alongside the error.
func (r *Renderer) Render(ctx context.Context, c card.Card, parent *host.NodeRef) ([]host.NodeRef, error) {
	switch c.Type {
	case card.TypeBasic:
		return r.createOne(ctx, c.Front+basicSeparator+c.Back, parent)
	case card.TypeBasicReverse:
		return r.createOne(ctx, c.Front+reverseSeparator+c.Back, parent)
	case card.TypeDescriptor:
		return r.createOne(ctx, c.Front+descriptorSeparator+c.Back, parent)
	case card.TypeCloze:
		return r.createOne(ctx, RewriteCloze(c.ClozeText), parent)
	case card.TypeList:
		return r.renderList(ctx, c, parent)
	default:
		slog.Warn("ignoring card of unknown type", "type", c.Type)
		return nil, nil
	}
}

func (r *Renderer) createOne(ctx context.Context, markup string, parent *host.NodeRef) ([]host.NodeRef, error) {
	ref, err := r.host.CreateNode(ctx, markup, parent)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, fmt.Errorf("host returned no node ref")
	}
	return []host.NodeRef{*ref}, nil
}

// renderList creates the heading node first, then each item as its
// child, in back order. The heading must exist before any item; if it
// fails, no item is attempted.
func (r *Renderer) renderList(ctx context.Context, c card.Card, parent *host.NodeRef) ([]host.NodeRef, error) {
	headRef, err := r.host.CreateNode(ctx, c.Front+listSuffix, parent)
	if err != nil {
		return nil, fmt.Errorf("create list heading: %w", err)
	}
	if headRef == nil {
		return nil, fmt.Errorf("create list heading: host returned no node ref")
	}

	refs := []host.NodeRef{*headRef}
	for i, item := range c.BackItems {
		ref, err := r.host.CreateNode(ctx, item, headRef)
		if err != nil {
			return refs, fmt.Errorf("create list item %d: %w", i+1, err)
		}
		if ref == nil {
			return refs, fmt.Errorf("create list item %d: host returned no node ref", i+1)
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

// BatchResult is the outcome of one rendered batch.
type BatchResult struct {
	Created int // cards rendered completely
	Skipped int // cards abandoned or ignored
	Nodes   int // host nodes created, list items included
}

// RenderBatch renders cards strictly in order, one at a time. A card
// that fails is logged and skipped; the rest of the batch proceeds.
// Nodes created before a mid-card failure stay in the host.
func (r *Renderer) RenderBatch(ctx context.Context, cards []card.Card, parent *host.NodeRef) BatchResult {
	var res BatchResult
	for _, c := range cards {
		refs, err := r.Render(ctx, c, parent)
		res.Nodes += len(refs)
		if err != nil {
			slog.Error("failed to render card", "type", c.Type, "front", c.Front, "error", err)
			res.Skipped++
			continue
		}
		if len(refs) == 0 {
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res
}
