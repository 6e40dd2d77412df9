// Package prompt compiles generation instructions for a text model.
// Building a prompt is pure string assembly: no I/O, no host access.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nbarna/cardsmith/internal/card"
)

// Build assembles the instruction text for one generation batch. The
// same source, types and budget always produce the same prompt.
// Duplicate entries in types are collapsed, order is preserved, and
// identifiers outside the closed type set are skipped. Callers validate
// their type lists before reaching this point.
func Build(sourceText string, types []card.Type, maxCards int) string {
	var b strings.Builder

	fmt.Fprintf(&b, promptHeader, maxCards)
	b.WriteString("\n\n")

	seen := make(map[card.Type]bool)
	var names []string
	for _, t := range types {
		if seen[t] {
			continue
		}
		d, ok := card.DescriptorFor(t)
		if !ok {
			continue
		}
		seen[t] = true
		names = append(names, string(t))

		fmt.Fprintf(&b, typeBlock, d.Type, d.Label, d.Shape, d.Example)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, allowedTypesLine, strings.Join(names, ", "))
	b.WriteString("\n\n")

	b.WriteString(outputContract)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, sourceBlock, sourceText)

	return b.String()
}
