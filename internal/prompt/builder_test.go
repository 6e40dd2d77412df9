package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarna/cardsmith/internal/card"
)

func TestBuild(t *testing.T) {
	source := "The mitochondrion is the powerhouse of the cell."

	t.Run("contains every requested type block", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeBasic, card.TypeCloze}, 10)

		assert.Contains(t, got, "### basic ")
		assert.Contains(t, got, "### cloze ")
		assert.NotContains(t, got, "### list ")
		assert.NotContains(t, got, "### descriptor ")

		for _, typ := range []card.Type{card.TypeBasic, card.TypeCloze} {
			d, ok := card.DescriptorFor(typ)
			require.True(t, ok)
			assert.Contains(t, got, d.Shape)
			assert.Contains(t, got, d.Example)
		}
	})

	t.Run("closes the type list in request order", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeCloze, card.TypeBasic}, 10)
		assert.Contains(t, got, "must be exactly one of: cloze, basic.")
	})

	t.Run("deduplicates repeated types", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeBasic, card.TypeBasic, card.TypeBasic}, 10)
		assert.Equal(t, 1, strings.Count(got, "### basic "))
		assert.Contains(t, got, "must be exactly one of: basic.")
	})

	t.Run("skips identifiers outside the closed set", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeBasic, card.Type("quiz")}, 10)
		assert.NotContains(t, got, "quiz")
		assert.Contains(t, got, "must be exactly one of: basic.")
	})

	t.Run("states the card budget", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeBasic}, 17)
		assert.Contains(t, got, "up to 17 ")
	})

	t.Run("demands a fenced JSON array", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeBasic}, 10)
		assert.Contains(t, got, "```json")
		assert.Contains(t, got, "JSON array")
	})

	t.Run("source text comes verbatim and last", func(t *testing.T) {
		got := Build(source, []card.Type{card.TypeBasic}, 10)

		idx := strings.Index(got, source)
		require.GreaterOrEqual(t, idx, 0, "source text must appear verbatim")
		assert.Greater(t, idx, strings.Index(got, "```json"), "source text must follow the output contract")
	})

	t.Run("deterministic", func(t *testing.T) {
		types := []card.Type{card.TypeList, card.TypeDescriptor}
		assert.Equal(t, Build(source, types, 5), Build(source, types, 5))
	})
}
