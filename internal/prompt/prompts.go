package prompt

// promptHeader frames the task. The card budget is advisory: the model
// is told the ceiling, the pipeline does not rely on it being honored.
const promptHeader = `You are an expert author of spaced-repetition flashcards. Read the source text at the end of this message and write up to %d high-quality flashcards from it.

Guidelines:
1. COVERAGE: prefer the most important facts, definitions and relationships in the text
2. ATOMICITY: one fact per card, never several unrelated facts bundled together
3. SELF-CONTAINED: every card must make sense without the surrounding text
4. FIDELITY: use only information present in the source text, never outside knowledge

Only produce the card kinds described below.`

// typeBlock documents one card kind: identifier, label, required JSON
// shape and a worked example.
const typeBlock = `### %s (%s)
Shape: %s
Example: %s`

// allowedTypesLine closes the type list so the model cannot invent
// kinds of its own.
const allowedTypesLine = `The "type" field of every card must be exactly one of: %s. Cards of any other type will be discarded.`

// outputContract pins the reply format the normalizer expects.
const outputContract = "Respond with a single JSON array holding every card, inside a fenced code block:\n" +
	"```json\n" +
	"[ ... ]\n" +
	"```\n" +
	"Write nothing outside the fenced block. If the text yields no suitable cards, respond with an empty array: []"

// sourceBlock carries the source text verbatim, last so no instruction
// can be buried behind a long document.
const sourceBlock = `Source text:
---
%s
---`
