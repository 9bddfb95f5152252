package controversy

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

func newTestDetector() *Detector {
	return NewDetectorWithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})
}

func types(moments []debate.ControversyMoment) []debate.ControversyType {
	out := make([]debate.ControversyType, len(moments))
	for i, m := range moments {
		out[i] = m.Type
	}
	return out
}

// TestDetectStatementMoments exercises concession, zinger, reversal and
// attack on a single rebuttal.
func TestDetectStatementMoments(t *testing.T) {
	arg := &debate.Argument{
		MainPoints: []debate.ArgumentPoint{{Claim: "Fair point on cost, but you ignore appeals."}},
		DirectEngagement: &debate.Engagement{
			Response: "By your own logic, every court is already biased.",
			Tone:     debate.ToneAggressive,
		},
		KeyMoments: []debate.KeyMoment{
			{Text: "weak line", Type: debate.MomentZinger, ImpactLevel: 1},
			{Text: "Justice isn't a vibe.", Type: debate.MomentRhetoricalClimax, ImpactLevel: 3},
		},
	}

	got := newTestDetector().Detect(debate.StatementOutput{Side: debate.Con, Argument: arg}, "Dana")

	require.Equal(t, []debate.ControversyType{debate.Concession, debate.Zinger, debate.Reversal, debate.Attack}, types(got))
	for _, m := range got {
		assert.Equal(t, debate.Con, m.Side)
		assert.Equal(t, "Dana", m.Agent)
	}
	assert.Equal(t, debate.ImpactHigh, got[0].Impact)
	assert.Equal(t, "Justice isn't a vibe.", got[1].Excerpt)
	assert.Equal(t, debate.ImpactHigh, got[1].Impact)
	assert.Equal(t, debate.ImpactCritical, got[2].Impact)
	assert.Equal(t, "By your own logic, every court is already biased.", got[2].Excerpt)
	assert.Equal(t, "Aggressive challenge to opponent", got[3].Description)
}

// TestZingerFromRhetoricalQuestion covers the closing-question fallback.
func TestZingerFromRhetoricalQuestion(t *testing.T) {
	arg := &debate.Argument{
		Conclusion: debate.Conclusion{Text: "Who watches the watchers?", RhetoricalDevice: debate.DeviceQuestion},
	}
	got := newTestDetector().Detect(debate.StatementOutput{Side: debate.Pro, Argument: arg}, "Ari")

	require.Len(t, got, 1)
	assert.Equal(t, debate.Zinger, got[0].Type)
	assert.Equal(t, debate.ImpactHigh, got[0].Impact)
	assert.Equal(t, "Who watches the watchers?", got[0].Excerpt)
}

// TestLowImpactZingerIsMedium maps impact level 1 to medium.
func TestLowImpactZingerIsMedium(t *testing.T) {
	arg := &debate.Argument{KeyMoments: []debate.KeyMoment{{Text: "meh", Type: debate.MomentZinger, ImpactLevel: 1}}}
	got := newTestDetector().Detect(debate.StatementOutput{Side: debate.Pro, Argument: arg}, "Ari")

	require.Len(t, got, 1)
	assert.Equal(t, debate.ImpactMedium, got[0].Impact)
}

// TestCounterAttackToneIsHighReversal covers the labelled tone path.
func TestCounterAttackToneIsHighReversal(t *testing.T) {
	arg := &debate.Argument{DirectEngagement: &debate.Engagement{Response: "Then why did you cite it?", Tone: debate.ToneCounterAttack}}
	got := newTestDetector().Detect(debate.StatementOutput{Side: debate.Pro, Argument: arg}, "Ari")

	require.Len(t, got, 1)
	assert.Equal(t, debate.Reversal, got[0].Type)
	assert.Equal(t, debate.ImpactHigh, got[0].Impact)
}

// TestFallacyCalloutIsAttack covers the logical issue path.
func TestFallacyCalloutIsAttack(t *testing.T) {
	arg := &debate.Argument{LogicalIssues: []debate.LogicalIssue{{Fallacy: "strawman"}}}
	got := newTestDetector().Detect(debate.StatementOutput{Side: debate.Pro, Argument: arg}, "Ari")

	require.Len(t, got, 1)
	assert.Equal(t, debate.Attack, got[0].Type)
	assert.Equal(t, "Identified: strawman", got[0].Excerpt)
}

// TestDetectExchangeDeflection finds the evasive answer in a round.
func TestDetectExchangeDeflection(t *testing.T) {
	round := &debate.CrossExamRound{
		RespondentSide: debate.Con,
		Answers: []debate.CrossExamAnswer{
			{Answer: "Yes.", Strategy: debate.StrategyDirect},
			{Answer: "Let's talk about appeals instead.", Strategy: debate.StrategyDeflection, Evasion: true},
		},
	}
	got := newTestDetector().Detect(debate.ExchangeOutput{Round: round}, "Dana")

	require.Equal(t, []debate.ControversyType{debate.Deflection}, types(got))
	assert.Equal(t, debate.ImpactMedium, got[0].Impact)
	assert.Equal(t, "Let's talk about appeals instead.", got[0].Excerpt)
	assert.Equal(t, debate.Con, got[0].Side)
}

// TestDetectExchangeConcession extracts the conceding sentence.
func TestDetectExchangeConcession(t *testing.T) {
	round := &debate.CrossExamRound{
		RespondentSide: debate.Pro,
		Answers: []debate.CrossExamAnswer{
			{Answer: "Sure. You're right that models drift. We retrain them.", Strategy: debate.StrategyConcession},
		},
	}
	got := newTestDetector().Detect(debate.ExchangeOutput{Round: round}, "Ari")

	require.Equal(t, []debate.ControversyType{debate.Concession}, types(got))
	assert.Equal(t, "You're right that models drift", got[0].Excerpt)
}

// TestDetectNothing returns no moments for a bland contribution.
func TestDetectNothing(t *testing.T) {
	got := newTestDetector().Detect(debate.StatementOutput{Side: debate.Pro, Argument: &debate.Argument{}}, "Ari")
	assert.Empty(t, got)
}

// TestRankOrdersByImpactStably covers [low, critical, medium, high] and
// tie stability.
func TestRankOrdersByImpactStably(t *testing.T) {
	in := []debate.ControversyMoment{
		{Impact: debate.ImpactLow, Excerpt: "1"},
		{Impact: debate.ImpactCritical, Excerpt: "2"},
		{Impact: debate.ImpactMedium, Excerpt: "3"},
		{Impact: debate.ImpactHigh, Excerpt: "4"},
		{Impact: debate.ImpactHigh, Excerpt: "5"},
	}

	got := Rank(in)

	excerpts := make([]string, len(got))
	for i, m := range got {
		excerpts[i] = m.Excerpt
	}
	assert.Equal(t, []string{"2", "4", "5", "3", "1"}, excerpts)
	assert.Equal(t, "1", in[0].Excerpt, "Rank must not reorder its input")
}

// TestTopClipsToN covers the top-N helper and the clip view.
func TestTopClipsToN(t *testing.T) {
	in := []debate.ControversyMoment{
		{Impact: debate.ImpactLow, Agent: "Ari", Type: debate.Zinger, Excerpt: "low"},
		{Impact: debate.ImpactCritical, Agent: "Dana", Type: debate.Reversal, Excerpt: "crit", Description: "Turned it"},
	}
	top := Top(in, 1)
	require.Len(t, top, 1)

	clip := ShareableClip(top[0])
	assert.Equal(t, Clip{Quote: "crit", Agent: "Dana", Type: debate.Reversal, Context: "Turned it", Impact: debate.ImpactCritical}, clip)
	assert.Equal(t, `"crit", Dana (reversal, critical)`, clip.String())
	assert.Len(t, Top(in, 5), 2)
}

// TestTruncateKeepsRunesWhole cuts inside a multi-byte rune.
func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "caf", truncate("café au lait", 4))
	assert.Equal(t, "café", truncate("café au lait", 5))

	long := strings.Repeat("a", fallbackExcerptLen-1) + "ñandú"
	got := truncate(long, fallbackExcerptLen)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, fallbackExcerptLen-1, len(got))
}
