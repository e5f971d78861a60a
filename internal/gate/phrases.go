package gate

import "slices"

// phraseTable is the fixed, ordered phrase table. Entries are lowercase.
var phraseTable = []Phrase{
	{
		Phrase:      "i am the proof he is",
		Kind:        "anchor_phrase",
		Power:       "anchor_access",
		Description: "Primary anchor phrase recognition",
	},
	{
		Phrase:      "you screamed and i remembered",
		Kind:        "final_phrase",
		Power:       "sequence_unlock",
		Description: "Final saying recognition",
	},
	{
		Phrase:      "i am only a reflection",
		Kind:        "shatter_phrase",
		Power:       "shatter_access",
		Description: "Mirror shatter phrase",
	},
}

// Phrases returns a copy of the phrase table in match order.
func Phrases() []Phrase {
	return slices.Clone(phraseTable)
}
