// Package replica rebuilds a client-side view of a debate from its
// update stream.
package replica

import (
	"encoding/json"
	"fmt"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/events"
)

// View is the observer's copy of a debate. It is not safe for concurrent
// use; feed it from a single goroutine.
type View struct {
	Debate  debate.Debate
	LastSeq uint64
}

// New creates an empty view for id.
func New(id string) *View {
	return &View{Debate: debate.Debate{
		ID:                 id,
		Status:             debate.StatusPreparing,
		Agents:             []debate.Agent{},
		ControversyMoments: []debate.ControversyMoment{},
	}}
}

// Apply folds msg into the view. Messages at or below LastSeq were
// already applied and are skipped, so replays are harmless. Every update
// is an upsert: it overwrites the slot it names and nothing else.
func (v *View) Apply(msg events.Message) (bool, error) {
	if msg.Seq <= v.LastSeq {
		return false, nil
	}
	if err := v.apply(msg); err != nil {
		return false, fmt.Errorf("replica: apply %s #%d: %w", msg.Type, msg.Seq, err)
	}
	v.LastSeq = msg.Seq
	return true, nil
}

func (v *View) apply(msg events.Message) error {
	d := &v.Debate
	switch msg.Type {
	case debate.UpdateInit:
		var data debate.InitData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		d.Topic = data.Topic
		d.Agents = data.Agents
		d.Analysis = data.Analysis

	case debate.UpdateStatus:
		var data debate.StatusData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		d.Status = data.Phase
		d.CurrentPhase = debate.CurrentPhase{Type: data.Phase, SubLabel: data.SubLabel, Progress: data.Progress}

	case debate.UpdateOpening, debate.UpdateRebuttal:
		var st debate.Statement
		if err := json.Unmarshal(msg.Data, &st); err != nil {
			return err
		}
		if !msg.Side.Valid() {
			return fmt.Errorf("invalid side %q", msg.Side)
		}
		slots := &d.Phases.OpeningStatements
		if msg.Type == debate.UpdateRebuttal {
			slots = &d.Phases.Rebuttals
		}
		if *slots == nil {
			*slots = &debate.SideStatements{}
		}
		*(*slots).Slot(msg.Side) = &st

	case debate.UpdateCrossExam:
		var data debate.CrossExamData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		if data.Round < 1 {
			return fmt.Errorf("round %d out of range", data.Round)
		}
		if d.Phases.CrossExamination == nil {
			d.Phases.CrossExamination = &debate.CrossExamination{}
		}
		rounds := d.Phases.CrossExamination.Rounds
		for len(rounds) < data.Round {
			rounds = append(rounds, nil)
		}
		rounds[data.Round-1] = data.Payload
		d.Phases.CrossExamination.Rounds = rounds

	case debate.UpdateLightning:
		var lr debate.LightningRound
		if err := json.Unmarshal(msg.Data, &lr); err != nil {
			return err
		}
		d.Phases.LightningRound = &lr

	case debate.UpdateClosing:
		var c debate.Closing
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			return err
		}
		if !msg.Side.Valid() {
			return fmt.Errorf("invalid side %q", msg.Side)
		}
		if d.Phases.ClosingStatements == nil {
			d.Phases.ClosingStatements = &debate.SideClosings{}
		}
		*d.Phases.ClosingStatements.Slot(msg.Side) = &c

	case debate.UpdateVerdictJudge:
		var j debate.Judgment
		if err := json.Unmarshal(msg.Data, &j); err != nil {
			return err
		}
		if d.Phases.Verdict == nil {
			d.Phases.Verdict = &debate.Verdict{}
		}
		slot := d.Phases.Verdict.Slot(msg.JudgeType)
		if slot == nil {
			return fmt.Errorf("unknown judge %q", msg.JudgeType)
		}
		*slot = &j

	case debate.UpdateVerdictFinal:
		var fs debate.FinalScore
		if err := json.Unmarshal(msg.Data, &fs); err != nil {
			return err
		}
		d.FinalScore = &fs

	case debate.UpdateMomentum:
		var m debate.MomentumState
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return err
		}
		d.Momentum = m

	case debate.UpdateControversy:
		var moments []debate.ControversyMoment
		if err := json.Unmarshal(msg.Data, &moments); err != nil {
			return err
		}
		d.ControversyMoments = moments

	default:
		return fmt.Errorf("unknown update type %q", msg.Type)
	}
	return nil
}

// Done reports whether the view has reached a terminal status.
func (v *View) Done() bool { return v.Debate.Status.Terminal() }
