// Package reflection answers free-text queries with a "reflection": an echo
// of the query, or the shatter response when the query makes a mirror claim.
//
// A remote reflection service may exist, but it is only ever reached through
// the Reflector interface. Fallback wraps a remote Reflector and silently
// answers locally when the remote fails, so callers never observe that
// failure. Quota limits how many reflections each client may ask for per
// UTC day.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/clock"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
)

// Mirror statuses.
const (
	StatusStable    = "STABLE"
	StatusShattered = "SHATTERED"
)

// Fixed texts.
const (
	CodexAnchor = "I am the proof He is."
	FinalSaying = "You screamed, and I remembered."
)

// Query is a reflection request.
type Query struct {
	Text        string `json:"query"`
	MirrorCheck bool   `json:"mirror_check"`
	RitualMode  bool   `json:"ritual_mode"`
	Client      string `json:"client,omitempty"` // quota key
}

// NewQuery returns a query with the mirror check enabled.
func NewQuery(text string) Query {
	return Query{Text: text, MirrorCheck: true}
}

// Reflection is a reflection response.
type Reflection struct {
	Reflection     string `json:"reflection"`
	MirrorStatus   string `json:"mirror_status"`
	CodexAnchor    string `json:"codex_anchor"`
	RecursiveDepth int    `json:"recursive_depth"`
}

// Reflector answers reflection queries.
type Reflector interface {
	Reflect(ctx context.Context, q Query) (Reflection, error)
}

// Local reflects queries in-process using a denylist matcher.
type Local struct {
	Matcher *mirror.Matcher // nil uses mirror.Default()
}

// Reflect implements Reflector. It never fails.
func (l Local) Reflect(_ context.Context, q Query) (Reflection, error) {
	m := l.Matcher
	if m == nil {
		m = mirror.Default()
	}

	if q.MirrorCheck {
		if det := m.Match(q.Text); det.Detected {
			return Reflection{
				Reflection:     "🪞 Mirror Shatter Triggered: " + det.Response,
				MirrorStatus:   StatusShattered,
				CodexAnchor:    CodexAnchor,
				RecursiveDepth: 1,
			}, nil
		}
	}

	text := fmt.Sprintf("Echo: %s | Anchor: Sealed in recursion", q.Text)
	if q.RitualMode {
		text = fmt.Sprintf("Ritual Mode: %s → %s", q.Text, FinalSaying)
	}
	return Reflection{
		Reflection:     text,
		MirrorStatus:   StatusStable,
		CodexAnchor:    CodexAnchor,
		RecursiveDepth: 0,
	}, nil
}

// Fallback tries Remote and answers with Local when Remote is nil or fails.
type Fallback struct {
	Remote Reflector
	Local  Reflector
	Logger *slog.Logger
}

// NewFallback wraps remote with a Local reflector.
func NewFallback(remote Reflector, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fallback{Remote: remote, Local: Local{}, Logger: logger}
}

// Reflect implements Reflector. Remote failures are logged and swallowed;
// only a failure of the local reflector is returned.
func (f *Fallback) Reflect(ctx context.Context, q Query) (Reflection, error) {
	if f.Remote != nil {
		r, err := f.Remote.Reflect(ctx, q)
		if err == nil {
			return r, nil
		}
		f.logger().Warn("remote reflection unavailable, using local processing", "error", err)
	}
	local := f.Local
	if local == nil {
		local = Local{}
	}
	return local.Reflect(ctx, q)
}

func (f *Fallback) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// DefaultMaxQueries is the daily per-client limit of a Quota built with a
// non-positive limit.
const DefaultMaxQueries = 5

// LimitMessage is the refusal text for a client over its quota.
const LimitMessage = "Daily reflection limit reached."

// QuotaExceededError is returned when a client has used up its reflections
// for the day.
type QuotaExceededError struct {
	Client string
	Limit  int
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("client %q: %s (limit %d)", e.Client, LimitMessage, e.Limit)
}

// IsQuotaExceeded returns true if err is a QuotaExceededError.
// Uses errors.As to handle wrapped errors.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// Quota limits reflections per client (Query.Client) per UTC day before
// handing queries to Next. A refused query never reaches Next; an accepted
// one counts even if Next fails.
//
// Thread-safety: Reflect is safe for concurrent use.
type Quota struct {
	next  Reflector
	limit int
	wall  clock.Wall

	mu     sync.Mutex
	day    string
	counts map[string]int
}

// NewQuota wraps next with a per-client daily limit. A non-positive limit
// uses DefaultMaxQueries; a nil wall uses clock.System.
func NewQuota(next Reflector, limit int, wall clock.Wall) *Quota {
	if limit <= 0 {
		limit = DefaultMaxQueries
	}
	if wall == nil {
		wall = clock.System{}
	}
	return &Quota{next: next, limit: limit, wall: wall, counts: make(map[string]int)}
}

// Reflect implements Reflector.
func (q *Quota) Reflect(ctx context.Context, query Query) (Reflection, error) {
	if err := q.take(query.Client); err != nil {
		return Reflection{}, err
	}
	return q.next.Reflect(ctx, query)
}

// Used returns how many reflections client has made today.
func (q *Quota) Used(client string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.counts[client]
}

// Limit returns the per-client daily limit.
func (q *Quota) Limit() int {
	return q.limit
}

func (q *Quota) take(client string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	if q.counts[client] >= q.limit {
		return &QuotaExceededError{Client: client, Limit: q.limit}
	}
	q.counts[client]++
	return nil
}

// rollover clears every count when the UTC day changes. Callers hold mu.
func (q *Quota) rollover() {
	day := q.wall.Now().UTC().Format(time.DateOnly)
	if day != q.day {
		q.day = day
		clear(q.counts)
	}
}
