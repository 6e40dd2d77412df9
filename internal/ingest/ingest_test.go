package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("line endings", func(t *testing.T) {
		assert.Equal(t, "a\nb\nc", Normalize("a\r\nb\rc"))
	})

	t.Run("tabs become four spaces", func(t *testing.T) {
		assert.Equal(t, "a    b", Normalize("a\tb"))
	})

	t.Run("collapses three or more blank lines", func(t *testing.T) {
		// Two blank lines are a deliberate section break and survive.
		assert.Equal(t, "a\n\n\nb", Normalize("a\n\n\nb"))
		assert.Equal(t, "a\n\n\nb", Normalize("a\n\n\n\n\n\nb"))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "text", Normalize("  \n\ntext\n\n  "))
	})

	t.Run("words are untouched", func(t *testing.T) {
		assert.Equal(t, "Émile Zola wrote Germinal.", Normalize("Émile Zola wrote Germinal."))
	})
}

func TestValidate(t *testing.T) {
	t.Run("lower bound", func(t *testing.T) {
		assert.NoError(t, Validate(strings.Repeat("a", MinChars)))

		err := Validate(strings.Repeat("a", MinChars-1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooShort)
	})

	t.Run("upper bound", func(t *testing.T) {
		assert.NoError(t, Validate(strings.Repeat("a", MaxChars)))

		err := Validate(strings.Repeat("a", MaxChars+1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooLong)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		// 20 three-byte runes: 60 bytes, still long enough.
		assert.NoError(t, Validate(strings.Repeat("あ", MinChars)))
	})
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("notes.md"))
	assert.True(t, Supported("NOTES.TXT"))
	assert.True(t, Supported("/a/b/chapter.pdf"))
	assert.False(t, Supported("image.png"))
	assert.False(t, Supported("noext"))
}

func TestReadDocument(t *testing.T) {
	t.Run("reads text files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

		text, err := ReadDocument(path)
		require.NoError(t, err)
		assert.Equal(t, "hello world", text)
	})

	t.Run("reads markdown as-is", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.md")
		require.NoError(t, os.WriteFile(path, []byte("# Title\n\nBody"), 0644))

		text, err := ReadDocument(path)
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nBody", text)
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		_, err := ReadDocument("music.mp3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported document type")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadDocument(filepath.Join(t.TempDir(), "absent.txt"))
		assert.Error(t, err)
	})
}

func TestReadAll(t *testing.T) {
	text, err := ReadAll(strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)
}

func TestWatch(t *testing.T) {
	t.Run("hands settled documents to the handler", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		got := make(chan string, 1)
		done := make(chan error, 1)
		go func() {
			done <- Watch(ctx, dir, func(_ context.Context, path string) {
				got <- path
			})
		}()

		// Give the watcher a moment to register before writing.
		time.Sleep(100 * time.Millisecond)

		path := filepath.Join(dir, "new.md")
		require.NoError(t, os.WriteFile(path, []byte("fresh notes"), 0644))

		select {
		case p := <-got:
			assert.Equal(t, path, p)
		case <-time.After(5 * time.Second):
			t.Fatal("handler was not called")
		}

		cancel()
		assert.NoError(t, <-done)
	})

	t.Run("coalesces a write burst into one delivery", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		got := make(chan string, 4)
		go func() {
			_ = Watch(ctx, dir, func(_ context.Context, path string) {
				got <- path
			})
		}()

		time.Sleep(100 * time.Millisecond)

		path := filepath.Join(dir, "draft.md")
		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("chunk ", i+1)), 0644))
			time.Sleep(50 * time.Millisecond)
		}

		select {
		case p := <-got:
			assert.Equal(t, path, p)
		case <-time.After(5 * time.Second):
			t.Fatal("handler was not called")
		}

		select {
		case p := <-got:
			t.Fatalf("handler called twice for one burst: %s", p)
		case <-time.After(time.Second):
		}
	})

	t.Run("ignores unsupported files", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		got := make(chan string, 1)
		go func() {
			_ = Watch(ctx, dir, func(_ context.Context, path string) {
				got <- path
			})
		}()

		time.Sleep(100 * time.Millisecond)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte{1, 2, 3}, 0644))

		select {
		case p := <-got:
			t.Fatalf("handler called for unsupported file %s", p)
		case <-time.After(time.Second):
		}
	})

	t.Run("fails on a missing directory", func(t *testing.T) {
		err := Watch(context.Background(), "/does/not/exist", func(context.Context, string) {})
		assert.Error(t, err)
	})
}
