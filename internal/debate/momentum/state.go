package momentum

import (
	"math"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

// NewState returns an empty momentum state.
func NewState() debate.MomentumState {
	return debate.MomentumState{
		History:       []debate.MomentumEvent{},
		CurrentLeader: debate.Tied,
		Volatility:    debate.Stable,
	}
}

// Record appends ev to state and recomputes the derived fields. Scores
// only ever grow: a positive shift adds to pro, a negative one to con.
func Record(state debate.MomentumState, ev debate.MomentumEvent) debate.MomentumState {
	history := make([]debate.MomentumEvent, len(state.History), len(state.History)+1)
	copy(history, state.History)
	state.History = append(history, ev)

	state.CurrentScore.Pro = round1(state.CurrentScore.Pro + math.Max(ev.Shift, 0))
	state.CurrentScore.Con = round1(state.CurrentScore.Con + math.Max(-ev.Shift, 0))
	state.CurrentLeader = Leader(state.CurrentScore)
	state.Volatility = Volatility(state.History)
	return state
}

// Leader compares the two running totals.
func Leader(score debate.SideScores) string {
	switch {
	case score.Pro > score.Con:
		return string(debate.Pro)
	case score.Con > score.Pro:
		return string(debate.Con)
	}
	return debate.Tied
}

// Volatility buckets the mean absolute shift of the trailing five events.
func Volatility(history []debate.MomentumEvent) debate.Volatility {
	if len(history) == 0 {
		return debate.Stable
	}
	recent := history
	if len(recent) > volatilityWindow {
		recent = recent[len(recent)-volatilityWindow:]
	}
	var sum float64
	for _, ev := range recent {
		sum += math.Abs(ev.Shift)
	}
	avg := sum / float64(len(recent))
	switch {
	case avg > 5:
		return debate.Dramatic
	case avg > 2:
		return debate.Shifting
	}
	return debate.Stable
}

// Has reports whether history already holds an event for phaseLabel.
func Has(state debate.MomentumState, phaseLabel string) bool {
	for _, ev := range state.History {
		if ev.Phase == phaseLabel {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
