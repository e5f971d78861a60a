package gate

import (
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/clock"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
)

// Gate is the access gate.
//
// INVARIANTS:
//   - code keys are lowercase and unique; marker keys are literal and unique
//   - level never decreases
//   - history is append-only and ordered by Seq
type Gate struct {
	codes       map[string]*AccessCode
	codeOrder   []string
	markers     map[string]*SymbolicMarker
	markerOrder []string

	level   int
	history []UnlockEvent

	seq    *clock.Seq
	wall   clock.Wall
	rng    *rand.Rand
	sink   effect.Sink
	logger *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the wall clock used for timestamps.
func WithClock(w clock.Wall) Option {
	return func(g *Gate) {
		g.wall = w
	}
}

// WithRand sets the random source used to pick hints.
func WithRand(r *rand.Rand) Option {
	return func(g *Gate) {
		g.rng = r
	}
}

// WithSeed seeds the hint random source. Equal seeds give equal hint
// sequences.
func WithSeed(seed uint64) Option {
	return WithRand(NewRand(seed))
}

// WithSink sets the effect sink notified on unlocks.
func WithSink(s effect.Sink) Option {
	return func(g *Gate) {
		g.sink = s
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// NewRand returns a PCG-backed random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New creates an empty gate at level 0.
func New(opts ...Option) *Gate {
	g := &Gate{
		codes:   make(map[string]*AccessCode),
		markers: make(map[string]*SymbolicMarker),
		seq:     clock.NewSeq(),
		wall:    clock.System{},
		rng:     NewRand(rand.Uint64()),
		sink:    effect.Nop{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterCode upserts a code. The key is mirror.Normalize(code); the
// stored code is uppercased. Levels below 1 become 1.
func (g *Gate) RegisterCode(code string, cfg CodeConfig) *AccessCode {
	key := mirror.Normalize(code)
	level := cfg.Level
	if level < 1 {
		level = 1
	}
	rec := &AccessCode{
		Code:        strings.ToUpper(code),
		Level:       level,
		Unlocks:     slices.Clone(cfg.Unlocks),
		Description: cfg.Description,
		Created:     g.wall.Now(),
	}

	if _, exists := g.codes[key]; !exists {
		g.codeOrder = append(g.codeOrder, key)
	}
	g.codes[key] = rec

	g.logger.Debug("code registered", "code", rec.Code, "level", rec.Level)
	return rec
}

// RegisterMarker upserts a marker keyed by its literal pattern.
// Empty patterns are ignored; they would match every input.
func (g *Gate) RegisterMarker(pattern string, cfg MarkerConfig) *SymbolicMarker {
	if pattern == "" {
		g.logger.Warn("ignoring marker with empty pattern", "name", cfg.Name)
		return nil
	}
	rec := &SymbolicMarker{
		Pattern:     pattern,
		Name:        cfg.Name,
		Power:       cfg.Power,
		Description: cfg.Description,
		Created:     g.wall.Now(),
	}
	if rec.Name == "" {
		rec.Name = DefaultMarkerName
	}
	if rec.Power == "" {
		rec.Power = DefaultMarkerPower
	}

	if _, exists := g.markers[pattern]; !exists {
		g.markerOrder = append(g.markerOrder, pattern)
	}
	g.markers[pattern] = rec

	g.logger.Debug("marker registered", "pattern", pattern, "name", rec.Name)
	return rec
}

// AttemptUnlock matches input against codes, markers and phrases in that
// order and executes the first hit. A miss returns an unsuccessful result
// with a hint.
func (g *Gate) AttemptUnlock(input string, meta map[string]string) Result {
	normalized := mirror.Normalize(strings.TrimSpace(input))

	if code, ok := g.codes[normalized]; ok {
		return g.executeUnlock(code, CategoryCode, meta)
	}

	for _, pattern := range g.markerOrder {
		if strings.Contains(input, pattern) {
			return g.executeUnlock(g.markers[pattern], CategoryMarker, meta)
		}
	}

	for i := range phraseTable {
		p := &phraseTable[i]
		if strings.Contains(normalized, p.Phrase) {
			return g.executeUnlock(p, CategoryPhrase, map[string]string{"phrase": p.Phrase})
		}
	}

	g.logger.Debug("unlock attempt failed", "level", g.level)
	return Result{
		Success: false,
		Level:   g.level,
		Message: FailureMessage,
		Hint:    g.hint(),
	}
}

// executeUnlock records a successful unlock and builds its result.
func (g *Gate) executeUnlock(rec Record, category string, meta map[string]string) Result {
	g.history = append(g.history, UnlockEvent{
		Seq:       g.seq.Next(),
		Category:  category,
		Record:    rec,
		Timestamp: g.wall.Now(),
		Context:   cloneMeta(meta),
	})

	if code, ok := rec.(*AccessCode); ok && category == CategoryCode && code.Level > g.level {
		g.logger.Info("access level raised", "from", g.level, "to", code.Level)
		g.level = code.Level
	}

	g.sink.OnUnlock(category)

	return Result{
		Success:     true,
		Category:    category,
		Unlocked:    rec.Capabilities(),
		Level:       g.level,
		Description: rec.Describe(),
		Message:     rec.message(),
	}
}

// AccessSummary reports the current level, the number of unlocks, and every
// code at most one level above the current one, in registration order.
func (g *Gate) AccessSummary() Summary {
	s := Summary{
		Level:          g.level,
		Unlocks:        len(g.history),
		AvailableCodes: []CodeHint{},
	}
	for _, key := range g.codeOrder {
		c := g.codes[key]
		if c.Level <= g.level+1 {
			s.AvailableCodes = append(s.AvailableCodes, CodeHint{
				Code:        c.Code,
				Level:       c.Level,
				Description: c.Description,
			})
		}
	}
	return s
}

// HasCapability reports whether any unlock so far granted name.
func (g *Gate) HasCapability(name string) bool {
	for _, ev := range g.history {
		if slices.Contains(ev.Record.Capabilities(), name) {
			return true
		}
	}
	return false
}

// Level returns the current access level.
func (g *Gate) Level() int {
	return g.level
}

// History returns a copy of the unlock history, oldest first.
func (g *Gate) History() []UnlockEvent {
	return slices.Clone(g.history)
}

// Codes returns the registered codes in registration order.
func (g *Gate) Codes() []AccessCode {
	out := make([]AccessCode, 0, len(g.codeOrder))
	for _, key := range g.codeOrder {
		c := *g.codes[key]
		c.Unlocks = slices.Clone(c.Unlocks)
		out = append(out, c)
	}
	return out
}

// Markers returns the registered markers in registration order.
func (g *Gate) Markers() []SymbolicMarker {
	out := make([]SymbolicMarker, 0, len(g.markerOrder))
	for _, pattern := range g.markerOrder {
		out = append(out, *g.markers[pattern])
	}
	return out
}

func cloneMeta(meta map[string]string) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	return maps.Clone(meta)
}
