// Package momentum scores how each contribution swings a debate and keeps
// the running per-side totals.
package momentum

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

const (
	subScoreBound    = 10.0
	volatilityWindow = 5
)

// Factors are the five bounded sub-scores behind a shift, in the order
// they are reported.
type Factors struct {
	LogicalStrength  float64
	EvidenceQuality  float64
	RhetoricalImpact float64
	DirectEngagement float64
	AudienceAppeal   float64
}

func (f Factors) named() []namedFactor {
	return []namedFactor{
		{"logical strength", f.LogicalStrength},
		{"evidence quality", f.EvidenceQuality},
		{"rhetorical impact", f.RhetoricalImpact},
		{"direct engagement", f.DirectEngagement},
		{"audience appeal", f.AudienceAppeal},
	}
}

type namedFactor struct {
	name  string
	value float64
}

// Mean is the unrounded average of the sub-scores.
func (f Factors) Mean() float64 {
	var sum float64
	for _, nf := range f.named() {
		sum += nf.value
	}
	return sum / 5
}

// KeyFactor names the sub-score with the largest magnitude. Later
// factors win ties.
func (f Factors) KeyFactor() string {
	best := f.named()[0]
	for _, nf := range f.named()[1:] {
		if math.Abs(nf.value) >= math.Abs(best.value) {
			best = nf
		}
	}
	return best.name
}

// Tracker implements debate.MomentumScorer.
type Tracker struct {
	now func() time.Time
}

// NewTracker creates a Tracker stamping events with the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// NewTrackerWithClock creates a Tracker with a custom clock (for testing).
func NewTrackerWithClock(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// ScoreShift scores out and orients the result toward the speaking side:
// a positive shift favours pro, a negative one favours con.
func (t *Tracker) ScoreShift(out debate.PhaseOutput, phaseLabel string) debate.MomentumEvent {
	f := Score(out)
	mean := f.Mean()
	if out.Speaker() == debate.Con {
		mean = -mean
	}
	shift := math.Round(mean*10) / 10
	return debate.MomentumEvent{
		Timestamp:   t.now().UTC(),
		Phase:       phaseLabel,
		Trigger:     f.KeyFactor(),
		Shift:       shift,
		Description: Describe(f, shift),
	}
}

// Score computes the speaker-relative sub-scores of a contribution.
func Score(out debate.PhaseOutput) Factors {
	switch o := out.(type) {
	case debate.StatementOutput:
		if o.Argument == nil {
			return Factors{}
		}
		return scoreArgument(o.Argument)
	case debate.ExchangeOutput:
		if o.Round == nil {
			return Factors{}
		}
		return scoreExchange(o.Round)
	}
	return Factors{}
}

func scoreArgument(a *debate.Argument) Factors {
	return Factors{
		LogicalStrength:  clamp(argumentLogic(a)),
		EvidenceQuality:  clamp(argumentEvidence(a)),
		RhetoricalImpact: clamp(argumentRhetoric(a)),
		DirectEngagement: clamp(argumentEngagement(a)),
		AudienceAppeal:   clamp(argumentAppeal(a)),
	}
}

func argumentLogic(a *debate.Argument) float64 {
	score := -2 * float64(len(a.LogicalIssues))
	if len(a.MainPoints) >= 3 {
		score += 3
	}
	if a.DirectEngagement != nil {
		score += 2
	}
	return score
}

func argumentEvidence(a *debate.Argument) float64 {
	if len(a.Evidence) == 0 {
		return 0
	}
	score := math.Min(float64(len(a.Evidence))*2, 8)
	for _, e := range a.Evidence {
		src := strings.ToLower(e.Source)
		if strings.Contains(src, "study") || strings.Contains(src, "report") {
			score += 2
			break
		}
	}
	return score
}

func argumentRhetoric(a *debate.Argument) float64 {
	score := 2 * float64(len(a.KeyMoments))
	if a.EmotionalJourney != nil {
		score += 2
	}
	if a.PersonalElement != nil {
		score += 3
	}
	if a.Opening.HookType != "" {
		score += 2
	}
	return score
}

func argumentEngagement(a *debate.Argument) float64 {
	e := a.DirectEngagement
	if e == nil {
		return 0
	}
	var score float64
	if e.OpponentQuote != "" {
		score += 4
	}
	if len(e.Response) > 100 {
		score += 3
	}
	if e.Tone == debate.ToneAggressive || e.Tone == debate.ToneDirect {
		score += 2
	}
	return score
}

func argumentAppeal(a *debate.Argument) float64 {
	score := 5.0
	if a.Conclusion.RhetoricalDevice != "" {
		score += 3
	}
	if a.Conclusion.CallbackTo != "" {
		score += 2
	}
	return score
}

// scoreExchange rates a cross-examination round from the respondent's
// point of view.
func scoreExchange(r *debate.CrossExamRound) Factors {
	var f Factors
	f.LogicalStrength = r.Analysis.DirectnessScore - 5
	f.LogicalStrength -= 2 * float64(len(r.Analysis.ConcessionsMade))

	var direct, evasive, counters float64
	for _, ans := range r.Answers {
		switch {
		case ans.Evasion || ans.Strategy == debate.StrategyDeflection:
			evasive++
		case ans.Strategy == debate.StrategyCounterAttack:
			counters++
		case ans.Strategy == debate.StrategyDirect:
			direct++
		}
	}
	f.RhetoricalImpact = 2 * (counters + float64(len(r.Analysis.CounterAttacks)))
	f.DirectEngagement = 2*(direct+counters) - 2*evasive

	switch r.Analysis.Winner {
	case debate.WinnerRespondent:
		f.AudienceAppeal = 5
	case debate.WinnerQuestioner:
		f.AudienceAppeal = -5
	}

	f.LogicalStrength = clamp(f.LogicalStrength)
	f.RhetoricalImpact = clamp(f.RhetoricalImpact)
	f.DirectEngagement = clamp(f.DirectEngagement)
	f.AudienceAppeal = clamp(f.AudienceAppeal)
	return f
}

// Describe renders a shift, already oriented pro-positive, as text.
func Describe(f Factors, shift float64) string {
	mag := math.Abs(shift)
	if mag < 1 {
		return "No significant momentum shift"
	}
	side := debate.Pro
	if shift < 0 {
		side = debate.Con
	}
	key := f.KeyFactor()
	switch {
	case mag > 5:
		return fmt.Sprintf("Strong %s momentum from %s", side.Label(), key)
	case mag > 3:
		return fmt.Sprintf("%s gains ground with %s", side.Label(), key)
	default:
		return fmt.Sprintf("Slight %s edge on %s", side.Label(), key)
	}
}

func clamp(v float64) float64 {
	return math.Max(-subScoreBound, math.Min(subScoreBound, v))
}
