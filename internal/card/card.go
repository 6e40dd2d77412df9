// Package card defines the canonical flashcard model shared by the
// prompt compiler, the response normalizer and the renderer.
package card

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies one of the supported flashcard shapes. The set is
// closed: replies proposing any other value are dropped during
// normalization.
type Type string

const (
	TypeBasic        Type = "basic"
	TypeBasicReverse Type = "basic-reverse"
	TypeCloze        Type = "cloze"
	TypeList         Type = "list"
	TypeDescriptor   Type = "descriptor"
)

// ClozeOpen is the two-character sequence opening a hidden span in
// cloze text. A cloze card without it has nothing to hide and is
// rejected during normalization.
const ClozeOpen = "{{"

// Types returns every supported card type in canonical order.
func Types() []Type {
	return []Type{TypeBasic, TypeBasicReverse, TypeCloze, TypeList, TypeDescriptor}
}

// Valid reports whether t is a member of the closed type set.
func (t Type) Valid() bool {
	switch t {
	case TypeBasic, TypeBasicReverse, TypeCloze, TypeList, TypeDescriptor:
		return true
	}
	return false
}

// ParseTypes parses a comma-separated list of type identifiers, as
// found in the CARD_TYPES variable and the --types flag.
func ParseTypes(s string) ([]Type, error) {
	var types []Type
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := Type(part)
		if !t.Valid() {
			return nil, fmt.Errorf("unknown card type: %q", part)
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no card types given")
	}
	return types, nil
}

// Card is one normalized flashcard. Back holds the answer text for
// every type except list, which carries its items in BackItems.
// ClozeText is only meaningful for cloze cards.
type Card struct {
	Type      Type
	Front     string
	Back      string
	BackItems []string
	ClozeText string
}

// cardJSON is the wire form of a card. Back is a string for most types
// and an array for list cards, so it marshals as json.RawMessage.
type cardJSON struct {
	Type      Type            `json:"type"`
	Front     string          `json:"front"`
	Back      json.RawMessage `json:"back"`
	ClozeText string          `json:"clozeText,omitempty"`
}

// MarshalJSON emits the same JSON shape the normalizer accepts, so a
// marshaled card parses back to itself.
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{
		Type:      c.Type,
		Front:     c.Front,
		ClozeText: c.ClozeText,
	}

	var back any = c.Back
	if c.Type == TypeList {
		items := c.BackItems
		if items == nil {
			items = []string{}
		}
		back = items
	}
	raw, err := json.Marshal(back)
	if err != nil {
		return nil, err
	}
	out.Back = raw

	return json.Marshal(out)
}
