// Package controversy classifies the memorable moments of a debate.
package controversy

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

const (
	fallbackExcerptLen = 150
	reversalExcerptLen = 200
)

var concessionPhrases = []string{
	"you're right",
	"i concede",
	"fair point",
	"i admit",
	"that's valid",
	"i agree that",
}

var reversalPhrases = []string{
	"by your own logic",
	"using your argument",
	"if we follow your reasoning",
	"that actually proves my point",
	"you've just made my case",
}

// Detector implements debate.ControversyDetector.
type Detector struct {
	now func() time.Time
}

// NewDetector creates a Detector stamping moments with the wall clock.
func NewDetector() *Detector {
	return &Detector{now: time.Now}
}

// NewDetectorWithClock creates a Detector with a custom clock (for testing).
func NewDetectorWithClock(now func() time.Time) *Detector {
	return &Detector{now: now}
}

// Detect runs the five detectors over out. Each contributes at most one
// moment, in the order concession, zinger, reversal, deflection, attack.
func (d *Detector) Detect(out debate.PhaseOutput, agent string) []debate.ControversyMoment {
	var found []debate.ControversyMoment
	for _, detect := range []func(debate.PhaseOutput) *debate.ControversyMoment{
		detectConcession,
		detectZinger,
		detectReversal,
		detectDeflection,
		detectAttack,
	} {
		m := detect(out)
		if m == nil {
			continue
		}
		m.Timestamp = d.now().UTC()
		m.Side = out.Speaker()
		m.Agent = agent
		found = append(found, *m)
	}
	return found
}

// searchText is the lower-cased text the lexical detectors scan.
func searchText(out debate.PhaseOutput) string {
	var payload any
	switch o := out.(type) {
	case debate.StatementOutput:
		payload = o.Argument
	case debate.ExchangeOutput:
		if o.Round == nil {
			return ""
		}
		payload = struct {
			Answers  []debate.CrossExamAnswer `json:"answers"`
			Analysis debate.CrossExamAnalysis `json:"analysis"`
		}{o.Round.Answers, o.Round.Analysis}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return strings.ToLower(string(b))
}

// spokenText is the respondent's own words, used for excerpts.
func spokenText(out debate.PhaseOutput) string {
	switch o := out.(type) {
	case debate.StatementOutput:
		if o.Argument == nil {
			return ""
		}
		if o.Argument.DirectEngagement != nil && o.Argument.DirectEngagement.Response != "" {
			return o.Argument.DirectEngagement.Response
		}
		return o.Argument.Conclusion.Text
	case debate.ExchangeOutput:
		if o.Round == nil {
			return ""
		}
		parts := make([]string, 0, len(o.Round.Answers))
		for _, a := range o.Round.Answers {
			parts = append(parts, a.Answer)
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func detectConcession(out debate.PhaseOutput) *debate.ControversyMoment {
	if !containsAny(searchText(out), concessionPhrases) {
		return nil
	}
	return &debate.ControversyMoment{
		Type:        debate.Concession,
		Description: "Agent admitted weakness in their argument",
		Impact:      debate.ImpactHigh,
		Excerpt:     concessionExcerpt(spokenText(out)),
	}
}

func concessionExcerpt(text string) string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if strings.Contains(lower, "right") || strings.Contains(lower, "fair") || strings.Contains(lower, "concede") {
			return strings.TrimSpace(s)
		}
	}
	return truncate(text, fallbackExcerptLen)
}

func detectZinger(out debate.PhaseOutput) *debate.ControversyMoment {
	o, ok := out.(debate.StatementOutput)
	if !ok || o.Argument == nil {
		return nil
	}
	var best *debate.KeyMoment
	for i := range o.Argument.KeyMoments {
		km := &o.Argument.KeyMoments[i]
		if km.Type != debate.MomentZinger && km.Type != debate.MomentRhetoricalClimax {
			continue
		}
		if best == nil || km.ImpactLevel > best.ImpactLevel {
			best = km
		}
	}
	if best != nil {
		impact := debate.ImpactMedium
		if best.ImpactLevel >= 2 {
			impact = debate.ImpactHigh
		}
		return &debate.ControversyMoment{
			Type:        debate.Zinger,
			Description: "Memorable one-liner",
			Impact:      impact,
			Excerpt:     best.Text,
		}
	}
	if o.Argument.Conclusion.RhetoricalDevice == debate.DeviceQuestion {
		return &debate.ControversyMoment{
			Type:        debate.Zinger,
			Description: "Powerful rhetorical question",
			Impact:      debate.ImpactHigh,
			Excerpt:     o.Argument.Conclusion.Text,
		}
	}
	return nil
}

func detectReversal(out debate.PhaseOutput) *debate.ControversyMoment {
	if containsAny(searchText(out), reversalPhrases) {
		excerpt := spokenText(out)
		if excerpt == "" {
			excerpt = truncate(searchText(out), reversalExcerptLen)
		}
		return &debate.ControversyMoment{
			Type:        debate.Reversal,
			Description: "Turned opponent's argument against them",
			Impact:      debate.ImpactCritical,
			Excerpt:     excerpt,
		}
	}
	switch o := out.(type) {
	case debate.StatementOutput:
		if o.Argument != nil && o.Argument.DirectEngagement != nil && o.Argument.DirectEngagement.Tone == debate.ToneCounterAttack {
			return &debate.ControversyMoment{
				Type:        debate.Reversal,
				Description: "Counter-attacked opponent's position",
				Impact:      debate.ImpactHigh,
				Excerpt:     o.Argument.DirectEngagement.Response,
			}
		}
	case debate.ExchangeOutput:
		if o.Round == nil {
			return nil
		}
		for _, a := range o.Round.Answers {
			if a.Strategy == debate.StrategyCounterAttack {
				return &debate.ControversyMoment{
					Type:        debate.Reversal,
					Description: "Turned the question back on the questioner",
					Impact:      debate.ImpactHigh,
					Excerpt:     a.Answer,
				}
			}
		}
	}
	return nil
}

func detectDeflection(out debate.PhaseOutput) *debate.ControversyMoment {
	o, ok := out.(debate.ExchangeOutput)
	if !ok || o.Round == nil {
		return nil
	}
	for _, a := range o.Round.Answers {
		if a.Strategy == debate.StrategyDeflection || a.Evasion {
			excerpt := a.Answer
			if excerpt == "" {
				excerpt = "Deflected question"
			}
			return &debate.ControversyMoment{
				Type:        debate.Deflection,
				Description: "Avoided direct answer to question",
				Impact:      debate.ImpactMedium,
				Excerpt:     excerpt,
			}
		}
	}
	return nil
}

func detectAttack(out debate.PhaseOutput) *debate.ControversyMoment {
	o, ok := out.(debate.StatementOutput)
	if !ok || o.Argument == nil {
		return nil
	}
	if e := o.Argument.DirectEngagement; e != nil && e.Tone == debate.ToneAggressive {
		return &debate.ControversyMoment{
			Type:        debate.Attack,
			Description: "Aggressive challenge to opponent",
			Impact:      debate.ImpactHigh,
			Excerpt:     e.Response,
		}
	}
	if len(o.Argument.LogicalIssues) > 0 {
		return &debate.ControversyMoment{
			Type:        debate.Attack,
			Description: "Called out logical fallacy",
			Impact:      debate.ImpactHigh,
			Excerpt:     "Identified: " + o.Argument.LogicalIssues[0].Fallacy,
		}
	}
	return nil
}

// Rank returns a copy of moments ordered by impact, critical first.
// Moments of equal impact keep their original order.
func Rank(moments []debate.ControversyMoment) []debate.ControversyMoment {
	ranked := slices.Clone(moments)
	slices.SortStableFunc(ranked, func(a, b debate.ControversyMoment) int {
		return b.Impact.Rank() - a.Impact.Rank()
	})
	return ranked
}

// Top returns the n highest impact moments.
func Top(moments []debate.ControversyMoment, n int) []debate.ControversyMoment {
	ranked := Rank(moments)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Clip is the shareable rendering of a moment.
type Clip struct {
	Quote   string                 `json:"quote"`
	Agent   string                 `json:"agent"`
	Type    debate.ControversyType `json:"type"`
	Context string                 `json:"context"`
	Impact  debate.Impact          `json:"impact"`
}

// ShareableClip builds the clip for m.
func ShareableClip(m debate.ControversyMoment) Clip {
	return Clip{
		Quote:   m.Excerpt,
		Agent:   m.Agent,
		Type:    m.Type,
		Context: m.Description,
		Impact:  m.Impact,
	}
}

// String renders the clip as a single quotable line.
func (c Clip) String() string {
	return fmt.Sprintf("%q, %s (%s, %s)", c.Quote, c.Agent, c.Type, c.Impact)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
