package card

// Descriptor describes one card type for prompt construction: a short
// human label, the JSON shape the model must emit, and one worked
// example.
type Descriptor struct {
	Type    Type
	Label   string
	Shape   string
	Example string
}

var descriptors = []Descriptor{
	{
		Type:    TypeBasic,
		Label:   "question and answer",
		Shape:   `{"type": "basic", "front": "<question>", "back": "<answer>"}`,
		Example: `{"type": "basic", "front": "What causes tides on Earth?", "back": "The gravitational pull of the Moon and, to a lesser degree, the Sun"}`,
	},
	{
		Type:    TypeBasicReverse,
		Label:   "term and definition, studied in both directions",
		Shape:   `{"type": "basic-reverse", "front": "<term>", "back": "<definition>"}`,
		Example: `{"type": "basic-reverse", "front": "Mitochondrion", "back": "The organelle that produces most of a cell's ATP"}`,
	},
	{
		Type:    TypeCloze,
		Label:   "fill-in-the-blank sentence",
		Shape:   `{"type": "cloze", "clozeText": "<sentence with the hidden part wrapped in {{ and }}>"}`,
		Example: `{"type": "cloze", "clozeText": "Water boils at {{100}} degrees Celsius at sea level"}`,
	},
	{
		Type:    TypeList,
		Label:   "enumeration with a heading and ordered items",
		Shape:   `{"type": "list", "front": "<heading>", "back": ["<item>", "<item>", ...]}`,
		Example: `{"type": "list", "front": "The three classical states of matter", "back": ["Solid", "Liquid", "Gas"]}`,
	},
	{
		Type:    TypeDescriptor,
		Label:   "attribute and value of a concept",
		Shape:   `{"type": "descriptor", "front": "<attribute>", "back": "<value>"}`,
		Example: `{"type": "descriptor", "front": "Atomic number of oxygen", "back": "8"}`,
	},
}

// Descriptors returns the descriptor for every supported type, in
// canonical order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// DescriptorFor returns the descriptor for t.
func DescriptorFor(t Type) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Type == t {
			return d, true
		}
	}
	return Descriptor{}, false
}
