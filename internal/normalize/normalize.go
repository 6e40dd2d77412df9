// Package normalize turns raw model replies into canonical cards.
// Model output is untrusted: it may wrap the payload in prose, emit
// trailing commas, or invent shapes. Everything salvageable is kept,
// everything else is logged and dropped.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/nbarna/cardsmith/internal/card"
)

var (
	// fenceRe matches the first code block labeled json, any casing.
	fenceRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

	// trailingCommaRe matches a comma directly before a closing bracket
	// or brace, the one malformation models produce often enough to be
	// worth repairing. Applied only when the payload fails to parse
	// as-is, so well-formed text containing ",]" is never rewritten.
	trailingCommaRe = regexp.MustCompile(`,(\s*[\]}])`)
)

// Parse extracts every structurally valid card from a raw model reply,
// in reply order. It never fails: an unusable reply yields an empty
// slice, and the caller decides what an empty batch means.
func Parse(raw string) []card.Card {
	cards, err := parse(raw)
	if err != nil {
		slog.Warn("discarding malformed model reply", "error", err)
		return nil
	}
	return cards
}

// parse is the fallible form of Parse. A nil error with zero cards
// means the payload was well formed but nothing survived the validity
// filter; an error means the payload itself was unusable.
func parse(raw string) ([]card.Card, error) {
	payload := extractPayload(raw)

	var elems []any
	if err := json.Unmarshal([]byte(payload), &elems); err != nil {
		repaired := trailingCommaRe.ReplaceAllString(payload, "$1")
		if json.Unmarshal([]byte(repaired), &elems) != nil {
			return nil, fmt.Errorf("payload is not a JSON array: %w", err)
		}
	}

	var cards []card.Card
	for i, elem := range elems {
		obj, ok := elem.(map[string]any)
		if !ok {
			slog.Debug("dropping non-object entry", "index", i)
			continue
		}
		if !valid(obj) {
			slog.Debug("dropping invalid entry", "index", i, "type", obj["type"])
			continue
		}
		cards = append(cards, coerce(obj))
	}
	return cards, nil
}

// extractPayload returns the interior of the first json-labeled fence,
// or the whole reply when no such fence exists.
func extractPayload(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

// valid applies the structural rules in order, each clause assuming the
// previous ones passed: known type first, then the fields that type
// requires, with the exact JSON kinds they must have.
func valid(obj map[string]any) bool {
	typ, ok := obj["type"].(string)
	if !ok || !card.Type(typ).Valid() {
		return false
	}

	switch card.Type(typ) {
	case card.TypeCloze:
		text, ok := obj["clozeText"].(string)
		return ok && strings.Contains(text, card.ClozeOpen)
	case card.TypeList:
		_, frontOK := obj["front"].(string)
		_, backOK := obj["back"].([]any)
		return frontOK && backOK
	default:
		_, frontOK := obj["front"].(string)
		_, backOK := obj["back"].(string)
		return frontOK && backOK
	}
}

// coerce builds the canonical card from an object that passed valid.
// Fields beyond the known ones are ignored.
func coerce(obj map[string]any) card.Card {
	c := card.Card{
		Type:  card.Type(obj["type"].(string)),
		Front: stringify(obj["front"]),
	}

	if c.Type == card.TypeList {
		items := obj["back"].([]any)
		c.BackItems = make([]string, len(items))
		for i, item := range items {
			c.BackItems[i] = stringify(item)
		}
	} else {
		c.Back = stringify(obj["back"])
	}

	if v, present := obj["clozeText"]; present {
		c.ClozeText = stringify(v)
	}

	return c
}

// stringify renders a decoded JSON value as flat text. Absent and null
// values become the empty string; the validity filter has already
// rejected entries where that would lose required content.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
