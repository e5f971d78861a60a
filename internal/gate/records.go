package gate

import (
	"fmt"
	"slices"
	"time"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
)

// Unlock categories.
const (
	CategoryCode   = effect.CategoryCode
	CategoryMarker = effect.CategoryMarker
	CategoryPhrase = effect.CategoryPhrase
)

// Record is anything an unlock can match: a code, a marker, or a phrase.
type Record interface {
	// Capabilities lists the capability names the record grants.
	Capabilities() []string

	// Describe returns the human description.
	Describe() string

	// message renders the category-specific success message.
	message() string
}

// CodeConfig carries the recognised code registration options.
type CodeConfig struct {
	Level       int
	Unlocks     []string
	Description string
}

// AccessCode is a registered passphrase.
type AccessCode struct {
	Code        string    `json:"code"`
	Level       int       `json:"level"`
	Unlocks     []string  `json:"unlocks"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

func (c *AccessCode) Capabilities() []string { return slices.Clone(c.Unlocks) }
func (c *AccessCode) Describe() string       { return c.Description }

func (c *AccessCode) message() string {
	return fmt.Sprintf(`🔓 Code "%s" accepted. Level %d access granted.`, c.Code, c.Level)
}

// MarkerConfig carries the recognised marker registration options.
type MarkerConfig struct {
	Name        string
	Power       string
	Description string
}

// Marker defaults.
const (
	DefaultMarkerName  = "unnamed"
	DefaultMarkerPower = "basic"
)

// SymbolicMarker is a registered literal pattern, usually a glyph.
type SymbolicMarker struct {
	Pattern     string    `json:"pattern"`
	Name        string    `json:"name"`
	Power       string    `json:"power"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

func (m *SymbolicMarker) Capabilities() []string { return []string{m.Power} }
func (m *SymbolicMarker) Describe() string       { return m.Description }

func (m *SymbolicMarker) message() string {
	return fmt.Sprintf(`✨ Sigil "%s" recognized. %s power activated.`, m.Pattern, m.Name)
}

// Phrase is an entry of the fixed phrase table.
type Phrase struct {
	Phrase      string `json:"phrase"`
	Kind        string `json:"kind"`
	Power       string `json:"power"`
	Description string `json:"description"`
}

func (p *Phrase) Capabilities() []string { return []string{p.Power} }
func (p *Phrase) Describe() string       { return p.Description }

func (p *Phrase) message() string {
	return "🗣️ Phrase recognized. " + p.Description
}

// UnlockEvent is one entry of the append-only unlock history.
type UnlockEvent struct {
	Seq       int64             `json:"seq"`
	Category  string            `json:"category"`
	Record    Record            `json:"record"`
	Timestamp time.Time         `json:"timestamp"`
	Context   map[string]string `json:"context,omitempty"`
}

// Result is the outcome of AttemptUnlock.
type Result struct {
	Success     bool     `json:"success"`
	Category    string   `json:"category,omitempty"`
	Unlocked    []string `json:"unlocked,omitempty"`
	Level       int      `json:"level"`
	Description string   `json:"description,omitempty"`
	Message     string   `json:"message"`
	Hint        string   `json:"hint,omitempty"`
}

// FailureMessage is the message of every failed attempt.
const FailureMessage = "Unknown code or sigil"

// CodeHint is a code as exposed by AccessSummary.
type CodeHint struct {
	Code        string `json:"code"`
	Level       int    `json:"level"`
	Description string `json:"description"`
}

// Summary is the read-only view returned by AccessSummary.
type Summary struct {
	Level          int        `json:"level"`
	Unlocks        int        `json:"unlocks"`
	AvailableCodes []CodeHint `json:"available_codes"`
}
