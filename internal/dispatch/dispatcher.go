package dispatch

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/clock"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
)

// Decoration glyphs.
const (
	PhaseGlyph  = "🜁"
	DepthMarker = "»"
)

// InitialAnchor is the anchor text of a fresh dispatcher.
const InitialAnchor = "I am the proof He is."

// Dispatcher is the content dispatcher.
//
// INVARIANTS:
//   - item ids are unique; re-registration replaces the item in place
//   - state.Depth >= 0
//   - state only changes through updateState, and never on a shatter
type Dispatcher struct {
	items  map[string]Item
	order  []string // registration order of ids
	state  State
	active map[string]struct{}

	matcher *mirror.Matcher
	wall    clock.Wall
	ids     IDGenerator
	sink    effect.Sink
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMatcher replaces the default denylist matcher.
func WithMatcher(m *mirror.Matcher) Option {
	return func(d *Dispatcher) {
		d.matcher = m
	}
}

// WithClock sets the wall clock used for timestamps.
func WithClock(w clock.Wall) Option {
	return func(d *Dispatcher) {
		d.wall = w
	}
}

// WithIDGenerator sets the shatter id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Dispatcher) {
		d.ids = g
	}
}

// WithSink sets the effect sink notified on shatters.
func WithSink(s effect.Sink) Option {
	return func(d *Dispatcher) {
		d.sink = s
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates an empty dispatcher in the dormant phase.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		items:   make(map[string]Item),
		active:  make(map[string]struct{}),
		state:   State{Phase: PhaseDormant, Anchor: InitialAnchor},
		matcher: mirror.Default(),
		wall:    clock.System{},
		ids:     UUIDv7Generator{},
		sink:    effect.Nop{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register upserts an item, applying defaults to unset config fields.
// Registering an existing id replaces it but keeps its listing position.
func (d *Dispatcher) Register(id string, cfg ItemConfig) Item {
	item := Item{
		ID:            id,
		Category:      cfg.Category,
		Trigger:       cfg.Trigger,
		Text:          cfg.Text,
		Weight:        cfg.Weight,
		DenylistCheck: true,
		Created:       d.wall.Now(),
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	if item.Trigger == "" {
		item.Trigger = DefaultTrigger
	}
	if item.Weight == 0 {
		item.Weight = DefaultWeight
	}
	if cfg.DenylistCheck != nil {
		item.DenylistCheck = *cfg.DenylistCheck
	}

	if _, exists := d.items[id]; !exists {
		d.order = append(d.order, id)
	}
	d.items[id] = item

	d.logger.Debug("item registered", "id", id, "category", item.Category)
	return item
}

// Dispatch delivers the item registered under id.
//
// Returns *NotFoundError for an unknown id. When the item's denylist check is
// enabled and its text matches, a *ShatterRecord is returned and state is not
// touched. Otherwise a *DeliveryRecord is returned and the item's category
// transition is applied.
func (d *Dispatcher) Dispatch(id string, meta map[string]string) (Result, error) {
	item, ok := d.items[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	if item.DenylistCheck {
		if det := d.matcher.Match(item.Text); det.Detected {
			return d.shatter(item, det), nil
		}
	}

	return d.deliver(item, meta), nil
}

func (d *Dispatcher) shatter(item Item, det mirror.Detection) *ShatterRecord {
	shatterID := "shatter_" + d.ids.Generate()
	d.active[shatterID] = struct{}{}

	rec := newShatterRecord(shatterID, item, det, d.wall.Now())
	d.sink.OnShatter(item.ID)

	d.logger.Info("shatter triggered", "item", item.ID, "shatter_id", shatterID, "claims", det.Claims)
	return rec
}

func (d *Dispatcher) deliver(item Item, meta map[string]string) *DeliveryRecord {
	rec := &DeliveryRecord{
		Item:          item,
		DecoratedText: d.Decorate(item.Text),
		ExecutedAt:    d.wall.Now(),
		Phase:         d.state.Phase,
		Context:       copyMeta(meta),
	}

	d.updateState(item)

	d.logger.Debug("item delivered",
		"item", item.ID,
		"phase", d.state.Phase,
		"depth", d.state.Depth,
	)
	return rec
}

// updateState applies the category transition for item.
func (d *Dispatcher) updateState(item Item) {
	switch item.Category {
	case CategoryRitual:
		d.state.Phase = PhaseActive
		d.state.Depth = math.Max(0, d.state.Depth+item.Weight)
	case CategoryAnchor:
		d.state.Anchor = item.Text
	case CategoryReset:
		d.state.Phase = PhaseDormant
		d.state.Depth = 0
	}
}

// Decorate renders text for the current state as
// "[phase-glyph] [depth-markers] text". The phase glyph is present only when
// active; depth markers repeat floor(depth) times and are present only when
// depth > 0.
func (d *Dispatcher) Decorate(text string) string {
	parts := make([]string, 0, 3)
	if d.state.Phase == PhaseActive {
		parts = append(parts, PhaseGlyph)
	}
	if d.state.Depth > 0 {
		if n := int(math.Floor(d.state.Depth)); n > 0 {
			parts = append(parts, strings.Repeat(DepthMarker, n))
		}
	}
	parts = append(parts, text)
	return strings.Join(parts, " ")
}

// Items returns the registered items in registration order.
func (d *Dispatcher) Items() []Item {
	out := make([]Item, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.items[id])
	}
	return out
}

// Item returns the item registered under id.
func (d *Dispatcher) Item(id string) (Item, bool) {
	item, ok := d.items[id]
	return item, ok
}

// State returns a snapshot of the state machine.
func (d *Dispatcher) State() State {
	return d.state
}

// ActiveSequences returns the shatter ids produced so far, sorted.
func (d *Dispatcher) ActiveSequences() []string {
	out := make([]string, 0, len(d.active))
	for id := range d.active {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func copyMeta(meta map[string]string) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	return maps.Clone(meta)
}
