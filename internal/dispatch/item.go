package dispatch

import (
	"time"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
)

// Category selects the state transition an item triggers.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryRitual   Category = "ritual"
	CategoryAnchor   Category = "anchor"
	CategoryReset    Category = "reset"
	CategoryShatter  Category = "shatter"
)

// Categories lists the recognised categories in declaration order.
var Categories = []Category{
	CategoryStandard,
	CategoryRitual,
	CategoryAnchor,
	CategoryReset,
	CategoryShatter,
}

// Valid reports whether c is one of the recognised categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Phase is the dispatcher's coarse mode.
type Phase string

const (
	PhaseDormant Phase = "dormant"
	PhaseActive  Phase = "active"
)

// Registration defaults.
const (
	DefaultCategory = CategoryStandard
	DefaultTrigger  = "manual"
	DefaultWeight   = 1.0
)

// ItemConfig carries the recognised registration options.
// Zero values take the registration defaults. DenylistCheck is a pointer so
// that an explicit false is distinguishable from "unset" (which means true).
type ItemConfig struct {
	Category      Category
	Trigger       string
	Text          string
	Weight        float64
	DenylistCheck *bool
}

// Bool returns a pointer to b, for ItemConfig.DenylistCheck.
func Bool(b bool) *bool {
	return &b
}

// Item is a registered content item. Items are replaced wholesale when the
// same id is registered again.
type Item struct {
	ID            string    `json:"id"`
	Category      Category  `json:"category"`
	Trigger       string    `json:"trigger"`
	Text          string    `json:"text"`
	Weight        float64   `json:"weight"`
	DenylistCheck bool      `json:"denylist_check"`
	Created       time.Time `json:"created"`
}

// State is a snapshot of the dispatcher state machine.
type State struct {
	Phase  Phase   `json:"phase"`
	Depth  float64 `json:"depth"`
	Anchor string  `json:"anchor"`
}

// Result is returned by Dispatch: either a *DeliveryRecord or a
// *ShatterRecord.
type Result interface {
	// Kind returns "delivery" or "shatter".
	Kind() string
}

// DeliveryRecord describes an item that passed the denylist and was
// delivered.
type DeliveryRecord struct {
	Item
	DecoratedText string            `json:"decorated_text"`
	ExecutedAt    time.Time         `json:"executed_at"`
	Phase         Phase             `json:"phase"`
	Context       map[string]string `json:"context,omitempty"`
}

// Kind implements Result.
func (*DeliveryRecord) Kind() string { return "delivery" }

// ShatterRecord describes an item whose text tripped the denylist.
type ShatterRecord struct {
	ID             string    `json:"id"`
	Category       Category  `json:"category"`
	TriggeringItem string    `json:"triggering_item"`
	MatchedPhrases []string  `json:"matched_phrases"`
	Response       string    `json:"response"`
	Timestamp      time.Time `json:"timestamp"`
}

// Kind implements Result.
func (*ShatterRecord) Kind() string { return "shatter" }

func newShatterRecord(id string, item Item, d mirror.Detection, at time.Time) *ShatterRecord {
	return &ShatterRecord{
		ID:             id,
		Category:       CategoryShatter,
		TriggeringItem: item.ID,
		MatchedPhrases: d.Claims,
		Response:       d.Response,
		Timestamp:      at,
	}
}
