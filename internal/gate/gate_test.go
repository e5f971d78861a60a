package gate

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/testutil"
)

// Test helper to create a gate with stock registrations and deterministic
// collaborators
func newTestGate(t *testing.T) (*Gate, *effect.Recorder) {
	t.Helper()
	rec := &effect.Recorder{}
	g := New(
		WithClock(testutil.NewStepClock()),
		WithSeed(42),
		WithSink(rec),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	g.RegisterDefaults()
	return g, rec
}

func TestNew_Empty(t *testing.T) {
	g := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	assert.Equal(t, 0, g.Level())
	assert.Empty(t, g.History())
	assert.Empty(t, g.Codes())
	assert.Empty(t, g.Markers())
}

func TestRegisterCode_Normalisation(t *testing.T) {
	g := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	c := g.RegisterCode("Shadow", CodeConfig{Unlocks: []string{"dark"}})
	assert.Equal(t, "SHADOW", c.Code)
	assert.Equal(t, 1, c.Level, "level defaults to 1")

	res := g.AttemptUnlock("  shadow \n", nil)
	require.True(t, res.Success)
	assert.Equal(t, CategoryCode, res.Category)
	assert.Equal(t, []string{"dark"}, res.Unlocked)
}

func TestRegisterCode_LevelBelowOneClamped(t *testing.T) {
	g := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	c := g.RegisterCode("neg", CodeConfig{Level: -3})
	assert.Equal(t, 1, c.Level)
}

func TestRegisterCode_LastWriteWins(t *testing.T) {
	g, _ := newTestGate(t)

	g.RegisterCode("mirror", CodeConfig{Level: 5, Unlocks: []string{"replaced"}, Description: "new"})

	codes := g.Codes()
	require.Len(t, codes, 3)
	assert.Equal(t, "MIRROR", codes[0].Code, "re-registration keeps position")
	assert.Equal(t, 5, codes[0].Level)

	res := g.AttemptUnlock("MIRROR", nil)
	require.True(t, res.Success)
	assert.Equal(t, []string{"replaced"}, res.Unlocked)
	assert.Equal(t, 5, res.Level)
	assert.Equal(t, "new", res.Description)
}

func TestRegisterMarker_Defaults(t *testing.T) {
	g := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	m := g.RegisterMarker("◈", MarkerConfig{})
	require.NotNil(t, m)
	assert.Equal(t, "unnamed", m.Name)
	assert.Equal(t, "basic", m.Power)

	assert.Nil(t, g.RegisterMarker("", MarkerConfig{Name: "empty"}))
	assert.Len(t, g.Markers(), 1)
}

func TestRegisterMarker_LastWriteWins(t *testing.T) {
	g, _ := newTestGate(t)
	g.RegisterMarker("🜁", MarkerConfig{Name: "renamed", Power: "new_power"})

	res := g.AttemptUnlock("🜁", nil)
	require.True(t, res.Success)
	assert.Equal(t, []string{"new_power"}, res.Unlocked)
	assert.Equal(t, `✨ Sigil "🜁" recognized. renamed power activated.`, res.Message)
}

func TestAttemptUnlock_CodeCaseInsensitive(t *testing.T) {
	a, _ := newTestGate(t)
	b, _ := newTestGate(t)

	lower := a.AttemptUnlock("mirror", nil)
	upper := b.AttemptUnlock("MIRROR", nil)

	assert.Equal(t, lower, upper)
	assert.True(t, upper.Success)
	assert.Equal(t, 1, upper.Level)
	assert.Equal(t, []string{"shatter_protocol"}, upper.Unlocked)
	assert.Equal(t, `🔓 Code "MIRROR" accepted. Level 1 access granted.`, upper.Message)
	assert.Equal(t, "Basic mirror shatter access", upper.Description)
}

func TestAttemptUnlock_CodeRequiresExactMatch(t *testing.T) {
	g, _ := newTestGate(t)

	res := g.AttemptUnlock("the mirror code", nil)
	assert.False(t, res.Success, "codes are not substring matched")
}

func TestAttemptUnlock_Marker(t *testing.T) {
	g, sink := newTestGate(t)

	res := g.AttemptUnlock("behold 🪞 the glass", nil)
	require.True(t, res.Success)
	assert.Equal(t, CategoryMarker, res.Category)
	assert.Equal(t, []string{"shatter_override"}, res.Unlocked)
	assert.Equal(t, 0, res.Level, "markers do not raise the level")
	assert.Equal(t, "Mirror destruction sigil", res.Description)
	assert.Equal(t, []effect.Event{{Kind: "unlock", Value: "marker"}}, sink.Events())
}

func TestAttemptUnlock_MarkerRegistrationOrderWins(t *testing.T) {
	g, _ := newTestGate(t)

	res := g.AttemptUnlock("🪞 and 🜁", nil)
	require.True(t, res.Success)
	assert.Equal(t, []string{"core_access"}, res.Unlocked, "🜁 was registered first")
}

func TestAttemptUnlock_MarkerIsCaseSensitive(t *testing.T) {
	g := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), WithSeed(1))
	g.RegisterMarker("XO", MarkerConfig{Name: "kiss", Power: "affection"})

	assert.True(t, g.AttemptUnlock("hugs XO", nil).Success)
	assert.False(t, g.AttemptUnlock("hugs xo", nil).Success)
}

func TestAttemptUnlock_CodeBeatsMarker(t *testing.T) {
	g := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	g.RegisterCode("🜁", CodeConfig{Level: 2, Unlocks: []string{"glyph_code"}})
	g.RegisterMarker("🜁", MarkerConfig{Power: "glyph_marker"})

	res := g.AttemptUnlock("🜁", nil)
	assert.Equal(t, CategoryCode, res.Category)
}

func TestAttemptUnlock_Phrase(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		power  string
		expect string
	}{
		{"anchor", "I AM THE PROOF HE IS", "anchor_access", "🗣️ Phrase recognized. Primary anchor phrase recognition"},
		{"final", "and you screamed and i remembered it all", "sequence_unlock", "🗣️ Phrase recognized. Final saying recognition"},
		{"shatter", "I am only a reflection.", "shatter_access", "🗣️ Phrase recognized. Mirror shatter phrase"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newTestGate(t)
			res := g.AttemptUnlock(tc.input, map[string]string{"ignored": "yes"})

			require.True(t, res.Success)
			assert.Equal(t, CategoryPhrase, res.Category)
			assert.Equal(t, []string{tc.power}, res.Unlocked)
			assert.Equal(t, tc.expect, res.Message)

			history := g.History()
			require.Len(t, history, 1)
			assert.Contains(t, history[0].Context, "phrase", "phrase unlocks record the phrase as context")
			assert.NotContains(t, history[0].Context, "ignored")
		})
	}
}

func TestAttemptUnlock_PhrasePunctuationMatters(t *testing.T) {
	g, _ := newTestGate(t)
	res := g.AttemptUnlock("You screamed, and I remembered.", nil)
	assert.False(t, res.Success, "comma breaks the phrase")
}

func TestAttemptUnlock_PhraseNormalisedLikeDenylist(t *testing.T) {
	// "ś" composed vs "s" + combining acute accent. Both compose to "ś",
	// which breaks "he is" for the phrase stage and the denylist alike.
	composed := "I am the proof he i\u015b"
	decomposed := "I am the proof he is\u0301"

	g, _ := newTestGate(t)
	assert.False(t, g.AttemptUnlock(composed, nil).Success)
	assert.False(t, g.AttemptUnlock(decomposed, nil).Success)

	m := mirror.NewMatcher([]string{"he is"})
	assert.False(t, m.Match(composed).Detected)
	assert.False(t, m.Match(decomposed).Detected)
}

func TestAttemptUnlock_PhraseTableOrder(t *testing.T) {
	g, _ := newTestGate(t)
	res := g.AttemptUnlock("i am only a reflection; i am the proof he is", nil)
	require.True(t, res.Success)
	assert.Equal(t, []string{"anchor_access"}, res.Unlocked)
}

func TestAttemptUnlock_FailureCarriesPoolHint(t *testing.T) {
	g, sink := newTestGate(t)

	res := g.AttemptUnlock("xyz123", nil)
	assert.False(t, res.Success)
	assert.Equal(t, FailureMessage, res.Message)
	assert.Contains(t, HintPool(0), res.Hint)
	assert.Empty(t, res.Unlocked)
	assert.Empty(t, g.History(), "failures are not recorded")
	assert.Empty(t, sink.Events())
}

func TestAttemptUnlock_SeededHintsAreDeterministic(t *testing.T) {
	a, _ := newTestGate(t)
	b, _ := newTestGate(t)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.AttemptUnlock("nope", nil).Hint, b.AttemptUnlock("nope", nil).Hint)
	}
}

func TestAttemptUnlock_HintsCoverPool(t *testing.T) {
	g, _ := newTestGate(t)

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		seen[g.AttemptUnlock("nope", nil).Hint] = true
	}
	assert.Len(t, seen, len(HintPool(0)))
}

func TestHintPool_NamesNextLevel(t *testing.T) {
	assert.Equal(t, "Level 1 codes exist", HintPool(0)[4])
	assert.Equal(t, "Level 3 codes exist", HintPool(2)[4])
}

func TestLevel_MonotonicNonDecreasing(t *testing.T) {
	g, _ := newTestGate(t)

	inputs := []string{"codex", "mirror", "🜁", "nothing", "recursive", "codex", "i am the proof he is", "MIRROR"}
	prev := g.Level()
	for _, in := range inputs {
		res := g.AttemptUnlock(in, nil)
		assert.GreaterOrEqual(t, g.Level(), prev, "level decreased after %q", in)
		assert.Equal(t, g.Level(), res.Level)
		prev = g.Level()
	}
	assert.Equal(t, 3, g.Level())
}

func TestAttemptUnlock_LowerCodeKeepsLevel(t *testing.T) {
	g, _ := newTestGate(t)

	g.AttemptUnlock("codex", nil)
	res := g.AttemptUnlock("mirror", nil)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Level)
}

func TestAccessSummary_Visibility(t *testing.T) {
	g, _ := newTestGate(t)

	s := g.AccessSummary()
	assert.Equal(t, 0, s.Level)
	assert.Equal(t, 0, s.Unlocks)
	require.Len(t, s.AvailableCodes, 1)
	assert.Equal(t, CodeHint{Code: "MIRROR", Level: 1, Description: "Basic mirror shatter access"}, s.AvailableCodes[0])

	g.AttemptUnlock("mirror", nil)
	g.AttemptUnlock("🪞", nil)
	s = g.AccessSummary()
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 2, s.Unlocks)
	require.Len(t, s.AvailableCodes, 2)
	assert.Equal(t, "CODEX", s.AvailableCodes[1].Code)

	g.AttemptUnlock("codex", nil)
	s = g.AccessSummary()
	assert.Len(t, s.AvailableCodes, 3)
}

func TestHasCapability(t *testing.T) {
	g, _ := newTestGate(t)

	assert.False(t, g.HasCapability("ritual_mode"))
	assert.False(t, g.HasCapability("core_access"))

	g.AttemptUnlock("CODEX", nil)
	g.AttemptUnlock("seal 🜁", nil)
	g.AttemptUnlock("i am only a reflection", nil)

	assert.True(t, g.HasCapability("ritual_mode"))
	assert.True(t, g.HasCapability("api_access"))
	assert.True(t, g.HasCapability("core_access"))
	assert.True(t, g.HasCapability("shatter_access"))
	assert.False(t, g.HasCapability("deep_reflection"))
}

func TestHistory_AppendOnlyAndOrdered(t *testing.T) {
	g, sink := newTestGate(t)

	g.AttemptUnlock("mirror", map[string]string{"via": "cli"})
	g.AttemptUnlock("nothing", nil)
	g.AttemptUnlock("🪞", nil)

	history := g.History()
	require.Len(t, history, 2)
	assert.Equal(t, int64(1), history[0].Seq)
	assert.Equal(t, int64(2), history[1].Seq)
	assert.Equal(t, CategoryCode, history[0].Category)
	assert.Equal(t, "cli", history[0].Context["via"])
	assert.Equal(t, CategoryMarker, history[1].Category)
	assert.True(t, history[1].Timestamp.After(history[0].Timestamp))

	history[0].Category = "mutated"
	assert.Equal(t, CategoryCode, g.History()[0].Category)

	assert.Equal(t, []effect.Event{
		{Kind: "unlock", Value: "code"},
		{Kind: "unlock", Value: "marker"},
	}, sink.Events())
}

func TestPhrases_Copy(t *testing.T) {
	p := Phrases()
	require.Len(t, p, 3)
	p[0].Phrase = "mutated"
	assert.Equal(t, "i am the proof he is", Phrases()[0].Phrase)
}

func TestCodes_DefensiveCopy(t *testing.T) {
	g, _ := newTestGate(t)
	codes := g.Codes()
	codes[0].Unlocks[0] = "mutated"

	res := g.AttemptUnlock("mirror", nil)
	assert.Equal(t, []string{"shatter_protocol"}, res.Unlocked)
}
