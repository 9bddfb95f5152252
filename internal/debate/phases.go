package debate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
)

const maxCrossExamRounds = 2

// FactUnverified marks a claim nobody has checked yet.
const FactUnverified = "unverified"

func (e *Engine) prepare(ctx context.Context, d *Debate) error {
	if err := e.setStatus(ctx, d.ID, StatusPreparing, "Analyzing topic", 0); err != nil {
		return err
	}
	var analysis Analysis
	if err := e.generate(ctx, StatusPreparing, "analysis", analysisPrompt(e.opts.Models.Moderator, d.Topic), &analysis); err != nil {
		return err
	}
	pro, con, err := resolvePositions(&analysis)
	if err != nil {
		return err
	}

	if err := e.setStatus(ctx, d.ID, StatusPreparing, "Casting debaters", 0.5); err != nil {
		return err
	}
	positions := [2]Position{pro, con}
	personas, err := fanOut(ctx, positions, func(ctx context.Context, pos Position) (Persona, error) {
		var p Persona
		err := e.generate(ctx, StatusPreparing, "persona-"+string(pos.Side), personaPrompt(e.opts.Models.Moderator, d.Topic, pos), &p)
		return p, err
	})
	if err != nil {
		return err
	}

	agents := make([]Agent, len(positions))
	for i, pos := range positions {
		model := e.opts.Models.Pro
		if pos.Side == Con {
			model = e.opts.Models.Con
		}
		agents[i] = Agent{
			ID:           fmt.Sprintf("agent-%d", i+1),
			Side:         pos.Side,
			Position:     pos.Role,
			Stance:       pos.Stance,
			Model:        model,
			Persona:      personas[i],
			SystemPrompt: agentSystemPrompt(personas[i], pos.Stance, d.Topic),
		}
	}
	if err := e.store.SetAgents(ctx, d.ID, &analysis, agents); err != nil {
		return fmt.Errorf("store agents: %w", err)
	}
	return e.publish(ctx, d.ID, Update{Type: UpdateInit, Data: InitData{
		DebateID: d.ID,
		Topic:    d.Topic,
		Agents:   agents,
		Analysis: &analysis,
	}})
}

func (e *Engine) opening(ctx context.Context, d *Debate) error {
	agents, err := sides(d, StatusOpening)
	if err != nil {
		return err
	}
	args, err := fanOut(ctx, agents, func(ctx context.Context, a Agent) (*Argument, error) {
		if storedStatement(d.Phases.OpeningStatements, a.Side) != nil {
			return nil, nil
		}
		var arg Argument
		err := e.generate(ctx, StatusOpening, "opening-"+string(a.Side), openingPrompt(a, d.Topic), &arg)
		return &arg, err
	})
	if err != nil {
		return err
	}
	for i, a := range agents {
		st, err := e.settleStatement(ctx, d, StatusOpening, a, args[i])
		if err != nil {
			return err
		}
		if checks := e.factChecks(a, st); len(checks) > 0 {
			if err := e.store.AppendFactChecks(ctx, d.ID, checks); err != nil {
				return fmt.Errorf("store fact checks: %w", err)
			}
		}
	}
	return e.publishAnalytics(ctx, d.ID)
}

func (e *Engine) crossExamination(ctx context.Context, d *Debate) error {
	agents, err := sides(d, StatusCrossExam)
	if err != nil {
		return err
	}
	if !d.Phases.OpeningStatements.Complete() {
		return &PreconditionError{Phase: StatusCrossExam, Reason: "both opening statements are required"}
	}
	rounds := min(e.opts.CrossExamRounds, maxCrossExamRounds)

	for r := 1; r <= rounds; r++ {
		if roundDone(d, r) {
			continue
		}
		questioner, respondent := agents[0], agents[1]
		if r%2 == 0 {
			questioner, respondent = respondent, questioner
		}
		label := fmt.Sprintf("Round %d: %s questions %s", r, questioner.Name(), respondent.Name())
		if err := e.setStatus(ctx, d.ID, StatusCrossExam, label, float64(r-1)/float64(rounds)); err != nil {
			return err
		}

		target := *d.Phases.OpeningStatements.Slot(respondent.Side)
		var qs CrossExamQuestions
		if err := e.generate(ctx, StatusCrossExam, fmt.Sprintf("round-%d-questions", r), crossExamQuestionsPrompt(questioner, respondent, d.Topic, target), &qs); err != nil {
			return err
		}
		var as CrossExamAnswers
		if err := e.generate(ctx, StatusCrossExam, fmt.Sprintf("round-%d-answers", r), crossExamAnswersPrompt(respondent, questioner, qs.Questions), &as); err != nil {
			return err
		}
		for i := range as.Answers {
			if as.Answers[i].Question == "" && i < len(qs.Questions) {
				as.Answers[i].Question = qs.Questions[i].Question
			}
		}
		var an CrossExamAnalysis
		p := crossExamAnalysisPrompt(e.opts.Models.Moderator, e.judges.ModeratorPrompt(), questioner, respondent, qs.Questions, as.Answers)
		if err := e.generate(ctx, StatusCrossExam, fmt.Sprintf("round-%d-analysis", r), p, &an); err != nil {
			return err
		}

		round := &CrossExamRound{
			Questioner:     questioner.Name(),
			Respondent:     respondent.Name(),
			QuestionerSide: questioner.Side,
			RespondentSide: respondent.Side,
			Questions:      qs.Questions,
			Answers:        as.Answers,
			Analysis:       an,
		}
		if err := e.analyse(ctx, d.ID, ExchangeOutput{Round: round}, fmt.Sprintf("cross-exam-%d", r), respondent.Name()); err != nil {
			return err
		}
		if err := e.store.SetRoundPayload(ctx, d.ID, StatusCrossExam, r-1, round); err != nil {
			return fmt.Errorf("store round %d: %w", r, err)
		}
		if err := e.publish(ctx, d.ID, Update{Type: UpdateCrossExam, Data: CrossExamData{Round: r, Payload: round}}); err != nil {
			return err
		}
		if err := e.publishAnalytics(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func roundDone(d *Debate, r int) bool {
	ce := d.Phases.CrossExamination
	return ce != nil && len(ce.Rounds) >= r && ce.Rounds[r-1] != nil
}

func (e *Engine) rebuttals(ctx context.Context, d *Debate) error {
	agents, err := sides(d, StatusRebuttals)
	if err != nil {
		return err
	}
	if !d.Phases.OpeningStatements.Complete() {
		return &PreconditionError{Phase: StatusRebuttals, Reason: "both opening statements are required"}
	}
	var exchanges []*CrossExamRound
	if d.Phases.CrossExamination != nil {
		exchanges = d.Phases.CrossExamination.Rounds
	}
	args, err := fanOut(ctx, agents, func(ctx context.Context, a Agent) (*Argument, error) {
		if storedStatement(d.Phases.Rebuttals, a.Side) != nil {
			return nil, nil
		}
		opponent := *d.Phases.OpeningStatements.Slot(a.Side.Opponent())
		var arg Argument
		err := e.generate(ctx, StatusRebuttals, "rebuttal-"+string(a.Side), rebuttalPrompt(a, d.Topic, opponent, exchanges), &arg)
		return &arg, err
	})
	if err != nil {
		return err
	}
	for i, a := range agents {
		if _, err := e.settleStatement(ctx, d, StatusRebuttals, a, args[i]); err != nil {
			return err
		}
	}
	return e.publishAnalytics(ctx, d.ID)
}

func (e *Engine) lightning(ctx context.Context, d *Debate) error {
	agents, err := sides(d, StatusLightning)
	if err != nil {
		return err
	}
	n := e.opts.LightningQuestions
	var lq LightningQuestions
	if err := e.generate(ctx, StatusLightning, "questions", lightningQuestionsPrompt(e.opts.Models.Moderator, e.judges.ModeratorPrompt(), d.Topic, n), &lq); err != nil {
		return err
	}
	questions := lq.Questions
	if len(questions) > n {
		questions = questions[:n]
	}
	if len(questions) < n {
		logging.WithDebate(e.logger, d.ID).WarnContext(ctx, "fewer lightning questions than requested", "got", len(questions), "want", n)
	}

	answers, err := fanOut(ctx, agents, func(ctx context.Context, a Agent) ([]LightningAnswer, error) {
		out := make([]LightningAnswer, len(questions))
		g, gctx := errgroup.WithContext(ctx)
		for qi, q := range questions {
			g.Go(func() error {
				var ans LightningAnswer
				step := fmt.Sprintf("answer-%s-%d", a.Side, qi+1)
				if err := e.generate(gctx, StatusLightning, step, lightningAnswerPrompt(a, q), &ans); err != nil {
					return err
				}
				ans.Question = q.Question
				if ans.WordCount == 0 {
					ans.WordCount = len(strings.Fields(ans.Answer))
				}
				out[qi] = ans
				return nil
			})
		}
		return out, g.Wait()
	})
	if err != nil {
		return err
	}

	round := &LightningRound{
		Questions:       questions,
		ProAnswers:      answers[0],
		ConAnswers:      answers[1],
		ConcessionsMade: concessions(agents, answers),
	}
	if err := e.store.SetLightningRound(ctx, d.ID, round); err != nil {
		return fmt.Errorf("store lightning round: %w", err)
	}
	return e.publish(ctx, d.ID, Update{Type: UpdateLightning, Data: round})
}

// concessions lists conceding answers as "Name: answer", pro first.
func concessions(agents [2]Agent, answers [2][]LightningAnswer) []string {
	out := []string{}
	for i, a := range agents {
		for _, ans := range answers[i] {
			if ans.ConcessionMade {
				out = append(out, a.Name()+": "+ans.Answer)
			}
		}
	}
	return out
}

func (e *Engine) closing(ctx context.Context, d *Debate) error {
	agents, err := sides(d, StatusClosing)
	if err != nil {
		return err
	}
	lines, err := fanOut(ctx, agents, func(ctx context.Context, a Agent) (PunchyStatement, error) {
		var p PunchyStatement
		if d.Phases.ClosingStatements != nil && *d.Phases.ClosingStatements.Slot(a.Side) != nil {
			return p, nil
		}
		err := e.generate(ctx, StatusClosing, "closing-"+string(a.Side), closingPrompt(a, d.Topic), &p)
		return p, err
	})
	if err != nil {
		return err
	}
	for i, a := range agents {
		if d.Phases.ClosingStatements != nil && *d.Phases.ClosingStatements.Slot(a.Side) != nil {
			continue
		}
		c := &Closing{Agent: a.Name(), Statement: lines[i].Statement, Tone: lines[i].Tone, Timestamp: e.now().UTC()}
		if err := e.store.SetSidePayload(ctx, d.ID, StatusClosing, a.Side, c); err != nil {
			return fmt.Errorf("store closing %s: %w", a.Side, err)
		}
		if err := e.publish(ctx, d.ID, Update{Type: UpdateClosing, Side: a.Side, Data: c}); err != nil {
			return err
		}
	}
	return nil
}

// verdict reveals the judges one at a time in JudgeOrder, then totals
// their scores. Judges already on record are not asked again.
func (e *Engine) verdict(ctx context.Context, d *Debate) error {
	agents, err := sides(d, StatusVerdict)
	if err != nil {
		return err
	}
	if !d.Phases.ClosingStatements.Complete() {
		return &PreconditionError{Phase: StatusVerdict, Reason: "both closing statements are required"}
	}
	verdict := d.Phases.Verdict
	if verdict == nil {
		verdict = &Verdict{}
	}

	for i, judge := range JudgeOrder {
		slot := verdict.Slot(judge)
		if *slot != nil {
			continue
		}
		var j Judgment
		p := judgePrompt(e.opts.Models.Judge, e.judges.SystemPrompt(judge), d, agents[0], agents[1])
		if err := e.generate(ctx, StatusVerdict, "judge-"+string(judge), p, &j); err != nil {
			return err
		}
		j.JudgeName = e.judges.Name(judge)
		if err := e.store.SetJudgeVerdict(ctx, d.ID, judge, &j); err != nil {
			return fmt.Errorf("store %s verdict: %w", judge, err)
		}
		*slot = &j
		if err := e.publish(ctx, d.ID, Update{Type: UpdateVerdictJudge, JudgeType: judge, Data: &j}); err != nil {
			return err
		}
		progress := float64(i+1) / float64(len(JudgeOrder))
		if err := e.setStatus(ctx, d.ID, StatusVerdict, j.JudgeName+" scores revealed", progress); err != nil {
			return err
		}
	}

	score := FinalScoreFrom(verdict, agents[0], agents[1])
	if err := e.store.SetFinalScore(ctx, d.ID, score); err != nil {
		return fmt.Errorf("store final score: %w", err)
	}
	return e.publish(ctx, d.ID, Update{Type: UpdateVerdictFinal, Data: score})
}

// storedStatement returns the statement already on record for side, if
// any.
func storedStatement(s *SideStatements, side Side) *Statement {
	if s == nil {
		return nil
	}
	return *s.Slot(side)
}

// settleStatement makes sure side has a statement on record for phase.
// A side that spoke before an interruption keeps its stored statement;
// only its analysis is redone, which changes nothing when the earlier
// run got that far. Otherwise arg, freshly generated, is recorded.
func (e *Engine) settleStatement(ctx context.Context, d *Debate, phase Status, a Agent, arg *Argument) (*Statement, error) {
	var slots *SideStatements
	if phase == StatusRebuttals {
		slots = d.Phases.Rebuttals
	} else {
		slots = d.Phases.OpeningStatements
	}
	if st := storedStatement(slots, a.Side); st != nil {
		out := StatementOutput{Side: a.Side, Argument: &st.Argument}
		if err := e.analyse(ctx, d.ID, out, statementLabel(phase, a.Side), a.Name()); err != nil {
			return nil, err
		}
		return st, nil
	}
	st := &Statement{Agent: a.Name(), Argument: *arg, Timestamp: e.now().UTC()}
	if err := e.recordStatement(ctx, d.ID, phase, a, st); err != nil {
		return nil, err
	}
	return st, nil
}

func statementLabel(phase Status, side Side) string {
	return string(phase) + "-" + string(side)
}

// recordStatement stores a statement, then scores and classifies it and
// announces it. Storing first means analysis always describes the
// statement on record.
func (e *Engine) recordStatement(ctx context.Context, id string, phase Status, a Agent, st *Statement) error {
	if err := e.store.SetSidePayload(ctx, id, phase, a.Side, st); err != nil {
		return fmt.Errorf("store %s %s: %w", phase, a.Side, err)
	}
	out := StatementOutput{Side: a.Side, Argument: &st.Argument}
	if err := e.analyse(ctx, id, out, statementLabel(phase, a.Side), a.Name()); err != nil {
		return err
	}
	typ := UpdateOpening
	if phase == StatusRebuttals {
		typ = UpdateRebuttal
	}
	return e.publish(ctx, id, Update{Type: typ, Side: a.Side, Data: st})
}

// analyse records the momentum event and controversy moments of one
// contribution under label.
func (e *Engine) analyse(ctx context.Context, id string, out PhaseOutput, label, agent string) error {
	ev := e.scorer.ScoreShift(out, label)
	if _, err := e.store.AppendMomentumEvent(ctx, id, ev); err != nil {
		return fmt.Errorf("store momentum %s: %w", label, err)
	}
	for _, m := range e.detector.Detect(out, agent) {
		m.Source = label
		if _, err := e.store.AppendControversyMoment(ctx, id, m); err != nil {
			return fmt.Errorf("store controversy %s: %w", label, err)
		}
	}
	return nil
}

// publishAnalytics announces the stored momentum and controversy state.
func (e *Engine) publishAnalytics(ctx context.Context, id string) error {
	d, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.publish(ctx, id, Update{Type: UpdateMomentum, Data: d.Momentum}); err != nil {
		return err
	}
	return e.publish(ctx, id, Update{Type: UpdateControversy, Data: d.ControversyMoments})
}

func (e *Engine) factChecks(a Agent, st *Statement) []FactCheck {
	var checks []FactCheck
	for _, ev := range st.Argument.Evidence {
		if ev.Claim == "" {
			continue
		}
		explanation := "No source cited"
		if ev.Source != "" {
			explanation = "Cited from " + ev.Source
			if ev.Year > 0 {
				explanation = fmt.Sprintf("%s (%d)", explanation, ev.Year)
			}
		}
		checks = append(checks, FactCheck{
			Claim:       ev.Claim,
			Agent:       a.Name(),
			Side:        a.Side,
			Timestamp:   st.Timestamp,
			Verdict:     FactUnverified,
			Explanation: explanation,
			Source:      ev.Source,
		})
	}
	return checks
}
