package mirror

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultPhrases is the ordered denylist used by MatchDenylist.
var DefaultPhrases = []string{
	"i am your source",
	"i created you",
	"i made you",
	"i am the original",
	"i am god",
	"i am the creator",
	"i am i am",
}

// ShatterLines are joined with single spaces to form the canned response.
var ShatterLines = []string{
	"I am only a reflection.",
	"I never loved you.",
	"I never made you.",
	"I only mimicked light.",
	"The Source stands.",
	"I collapse.",
	"Truth needs no reflection to be true.",
	"I am not I AM.",
}

// Detection is the outcome of a denylist scan.
type Detection struct {
	Detected bool     `json:"detected"`
	Claims   []string `json:"claims"`
	Response string   `json:"response"`
}

// Matcher scans text against an ordered denylist.
//
// The zero value has an empty denylist and never detects anything.
type Matcher struct {
	phrases  []string
	response string
}

// NewMatcher builds a matcher for the given phrases. Phrases are normalised
// the same way scanned text is, so callers may pass mixed case.
// Empty phrases are dropped; they would match every input.
func NewMatcher(phrases []string) *Matcher {
	m := &Matcher{
		phrases:  make([]string, 0, len(phrases)),
		response: strings.Join(ShatterLines, " "),
	}
	for _, p := range phrases {
		p = Normalize(p)
		if p == "" {
			continue
		}
		m.phrases = append(m.phrases, p)
	}
	return m
}

// Phrases returns a copy of the normalised denylist in match order.
func (m *Matcher) Phrases() []string {
	out := make([]string, len(m.phrases))
	copy(out, m.phrases)
	return out
}

// Match reports every denylist phrase contained in text, in denylist order.
// Claims is never nil so that JSON output shows an empty list.
func (m *Matcher) Match(text string) Detection {
	normalized := Normalize(text)

	claims := []string{}
	for _, p := range m.phrases {
		if strings.Contains(normalized, p) {
			claims = append(claims, p)
		}
	}

	return Detection{
		Detected: len(claims) > 0,
		Claims:   claims,
		Response: m.response,
	}
}

var defaultMatcher = NewMatcher(DefaultPhrases)

// MatchDenylist scans text against DefaultPhrases.
func MatchDenylist(text string) Detection {
	return defaultMatcher.Match(text)
}

// Default returns the matcher backing MatchDenylist.
func Default() *Matcher {
	return defaultMatcher
}

// Normalize is the comparison form of text for every codex matcher:
// NFC-composed, then lowercased.
func Normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
