package debate_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/controversy"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/judges"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/momentum"
	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/models"
	"github.com/lorenzotomasdiez/debate-arena/internal/store"
)

var testRoster = models.Roster{Pro: "pro-model", Con: "con-model", Moderator: "mod-model", Judge: "judge-model"}

// fakeGen fills each output type with canned content. Hooks let a test
// block or fail a specific kind of call.
type fakeGen struct {
	mu    sync.Mutex
	calls map[string]int

	// block reports whether a call should wait for its context.
	block func(p debate.Prompt, out any) bool
	// fail returns a non-nil error to fail a call.
	fail func(p debate.Prompt, out any) error
	// variant is appended to generated argument text, so a regenerated
	// argument differs from the first one.
	variant string
}

func newFakeGen() *fakeGen { return &fakeGen{calls: make(map[string]int)} }

func (g *fakeGen) count(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[kind]
}

func (g *fakeGen) Generate(ctx context.Context, p debate.Prompt, out any) error {
	kind := fmt.Sprintf("%T", out)
	kind = kind[strings.LastIndex(kind, ".")+1:]
	g.mu.Lock()
	g.calls[kind]++
	g.mu.Unlock()

	if g.block != nil && g.block(p, out) {
		<-ctx.Done()
		return ctx.Err()
	}
	if g.fail != nil {
		if err := g.fail(p, out); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	side := "Pro"
	if p.Model == testRoster.Con {
		side = "Con"
	}
	switch v := out.(type) {
	case *debate.Analysis:
		*v = debate.Analysis{DebateType: "policy", Complexity: "medium", Positions: []debate.Position{
			{Role: "advocate", Stance: "AI should replace judges", Persona: "reformer", Side: debate.Pro},
			{Role: "skeptic", Stance: "AI should not replace judges", Persona: "judge", Side: debate.Con},
		}}
	case *debate.Persona:
		name := "Dana Skeptic"
		if strings.Contains(p.User, "Role: advocate") {
			name = "Ari Advocate"
		}
		*v = debate.Persona{Name: name, Background: "Veteran litigator."}
	case *debate.Argument:
		g.mu.Lock()
		variant := g.variant
		g.mu.Unlock()
		*v = debate.Argument{
			Opening:    debate.Hook{Text: side + " opening hook" + variant},
			MainPoints: []debate.ArgumentPoint{{Claim: side + " point one"}, {Claim: side + " point two"}, {Claim: side + " point three"}},
			Evidence:   []debate.Evidence{{Claim: side + " statistic" + variant, Source: "Court records", Year: 2024}},
			Conclusion: debate.Conclusion{Text: "Who decides?", RhetoricalDevice: debate.DeviceQuestion},
		}
	case *debate.CrossExamQuestions:
		*v = debate.CrossExamQuestions{Questions: []debate.CrossExamQuestion{{Question: "Yes or no?"}, {Question: "Why not?"}}}
	case *debate.CrossExamAnswers:
		*v = debate.CrossExamAnswers{Answers: []debate.CrossExamAnswer{
			{Answer: "Yes.", Strategy: debate.StrategyDirect},
			{Answer: "Ask the appeals court.", Strategy: debate.StrategyDeflection, Evasion: true},
		}}
	case *debate.CrossExamAnalysis:
		*v = debate.CrossExamAnalysis{DirectnessScore: 6, Winner: debate.WinnerQuestioner, KeyExchange: "the dodge"}
	case *debate.LightningQuestions:
		*v = debate.LightningQuestions{Questions: []debate.LightningQuestion{
			{Question: "Bias or error?"}, {Question: "Appeal to a machine?"}, {Question: "Extra question?"},
		}}
	case *debate.LightningAnswer:
		*v = debate.LightningAnswer{Answer: side + " answers fast", ConcessionMade: side == "Con"}
	case *debate.PunchyStatement:
		*v = debate.PunchyStatement{Statement: side + " has the last word.", Tone: "defiant"}
	case *debate.Judgment:
		*v = debate.Judgment{Scores: debate.SideScores{Pro: 8, Con: 6.5}, Commentary: debate.Commentary{Verdict: "Pro by a nose."}}
	default:
		return fmt.Errorf("fakeGen: unexpected output %T", out)
	}
	return nil
}

// recorder collects published updates.
type recorder struct {
	mu      sync.Mutex
	updates []debate.Update
	closed  map[string]bool
}

func newRecorder() *recorder { return &recorder{closed: make(map[string]bool)} }

func (r *recorder) Publish(_ context.Context, _ string, u debate.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

func (r *recorder) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed[id] = true
}

func (r *recorder) types() []debate.UpdateType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]debate.UpdateType, len(r.updates))
	for i, u := range r.updates {
		out[i] = u.Type
	}
	return out
}

func (r *recorder) count(t debate.UpdateType) int {
	n := 0
	for _, got := range r.types() {
		if got == t {
			n++
		}
	}
	return n
}

func (r *recorder) isClosed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed[id]
}

func (r *recorder) last() debate.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

type harness struct {
	engine *debate.Engine
	store  *store.Store
	pub    *recorder
	gen    *fakeGen
}

func newHarness(t *testing.T, opts debate.Options) *harness {
	t.Helper()
	st := store.New(store.NewMemoryRepository(), nil)
	t.Cleanup(st.Close)
	opts.Models = testRoster
	h := &harness{store: st, pub: newRecorder(), gen: newFakeGen()}
	h.engine = debate.NewEngine(st, h.pub, h.gen, momentum.NewTracker(), controversy.NewDetector(), judges.NewPanel(), opts, nil)
	return h
}

func TestRunCompletesDebate(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())

	d, err := h.engine.Run(context.Background(), "req-1", "Should AI replace judges?")
	require.NoError(t, err)

	assert.Equal(t, "debate-req-1", d.ID)
	assert.Equal(t, debate.StatusCompleted, d.Status)
	assert.Equal(t, 1.0, d.CurrentPhase.Progress)
	require.Len(t, d.Agents, 2)
	assert.Equal(t, "Ari Advocate", d.Agents[0].Name())
	assert.Equal(t, "pro-model", d.Agents[0].Model)
	assert.Equal(t, "Dana Skeptic", d.Agents[1].Name())
	assert.Contains(t, d.Agents[1].SystemPrompt, "AI should not replace judges")

	assert.True(t, d.Phases.OpeningStatements.Complete())
	assert.True(t, d.Phases.Rebuttals.Complete())
	assert.True(t, d.Phases.ClosingStatements.Complete())
	require.Len(t, d.Phases.CrossExamination.Rounds, 2)
	assert.Equal(t, debate.Pro, d.Phases.CrossExamination.Rounds[0].QuestionerSide)
	assert.Equal(t, debate.Con, d.Phases.CrossExamination.Rounds[1].QuestionerSide)
	assert.Equal(t, "Yes or no?", d.Phases.CrossExamination.Rounds[0].Answers[0].Question)

	require.NotNil(t, d.Phases.Verdict)
	for _, judge := range debate.JudgeOrder {
		j := *d.Phases.Verdict.Slot(judge)
		require.NotNil(t, j, judge)
		assert.NotEmpty(t, j.JudgeName)
	}
	require.NotNil(t, d.FinalScore)
	assert.Equal(t, debate.FinalScore{Pro: 24, Con: 19.5, Winner: "pro", WinnerName: "Ari Advocate", Margin: 4.5}, *d.FinalScore)

	// openings, two exchanges and rebuttals each leave one momentum event
	// per contribution
	assert.Len(t, d.Momentum.History, 6)
	assert.Len(t, d.FactChecks, 2)
	assert.Equal(t, debate.FactUnverified, d.FactChecks[0].Verdict)

	assert.True(t, h.pub.isClosed(d.ID))
	assert.Equal(t, debate.UpdateStatus, h.pub.types()[0])
	assert.Equal(t, 1, h.pub.count(debate.UpdateInit))
	assert.Equal(t, 2, h.pub.count(debate.UpdateOpening))
	assert.Equal(t, 2, h.pub.count(debate.UpdateCrossExam))
	assert.Equal(t, 2, h.pub.count(debate.UpdateRebuttal))
	assert.Equal(t, 1, h.pub.count(debate.UpdateLightning))
	assert.Equal(t, 2, h.pub.count(debate.UpdateClosing))
	assert.Equal(t, 3, h.pub.count(debate.UpdateVerdictJudge))
	assert.Equal(t, 1, h.pub.count(debate.UpdateVerdictFinal))

	final := h.pub.last()
	assert.Equal(t, debate.UpdateStatus, final.Type)
	assert.Equal(t, debate.StatusData{Phase: debate.StatusCompleted, Progress: 1}, final.Data)
}

func TestOpeningThenResume(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var phases []debate.Status
	h.engine.OnPhase = func(_ string, phase debate.Status) {
		phases = append(phases, phase)
		if phase == debate.StatusCrossExam {
			cancel()
		}
	}

	id, err := h.engine.Trigger(ctx, "req-2", "Should AI replace judges?")
	require.NoError(t, err)
	err = h.engine.Advance(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	d, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusCrossExam, d.Status)
	assert.Equal(t, 0.0, d.CurrentPhase.Progress)
	require.True(t, d.Phases.OpeningStatements.Complete())
	assert.Equal(t, "Ari Advocate", d.Phases.OpeningStatements.ProStatement.Agent)
	assert.Equal(t, "Dana Skeptic", d.Phases.OpeningStatements.ConStatement.Agent)
	assert.Nil(t, d.Phases.CrossExamination)
	assert.Empty(t, d.Failure)
	assert.False(t, h.pub.isClosed(id))

	require.NoError(t, h.engine.Advance(context.Background(), id))

	d, err = h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusCompleted, d.Status)
	assert.Equal(t, 4, h.gen.count("Argument"), "openings are not regenerated on resume")
	assert.Equal(t, []debate.Status{
		debate.StatusPreparing, debate.StatusOpening, debate.StatusCrossExam,
		debate.StatusCrossExam, debate.StatusRebuttals, debate.StatusLightning, debate.StatusClosing, debate.StatusVerdict,
	}, phases)
}

// cancelAfterProOpening cancels the run as soon as the pro opening is on
// record, before its analysis and before the con opening.
type cancelAfterProOpening struct {
	*store.Store
	cancel context.CancelFunc
}

func (s *cancelAfterProOpening) SetSidePayload(ctx context.Context, id string, phase debate.Status, side debate.Side, payload any) error {
	err := s.Store.SetSidePayload(ctx, id, phase, side, payload)
	if err == nil && phase == debate.StatusOpening && side == debate.Pro {
		s.cancel()
	}
	return err
}

func TestResumeBetweenSideWritesKeepsStoredStatement(t *testing.T) {
	st := store.New(store.NewMemoryRepository(), nil)
	t.Cleanup(st.Close)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := newFakeGen()
	pub := newRecorder()
	opts := debate.DefaultOptions()
	opts.Models = testRoster
	wrapped := &cancelAfterProOpening{Store: st, cancel: cancel}
	e := debate.NewEngine(wrapped, pub, gen, momentum.NewTracker(), controversy.NewDetector(), judges.NewPanel(), opts, nil)

	id, err := e.Trigger(ctx, "req-8", "Should AI replace judges?")
	require.NoError(t, err)
	require.ErrorIs(t, e.Advance(ctx, id), context.Canceled)

	d, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, debate.StatusOpening, d.Status)
	require.NotNil(t, d.Phases.OpeningStatements.ProStatement)
	require.Nil(t, d.Phases.OpeningStatements.ConStatement)
	stored := *d.Phases.OpeningStatements.ProStatement

	gen.variant = " (second take)"
	wrapped.cancel = func() {}
	require.NoError(t, e.Advance(context.Background(), id))

	d, err = st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusCompleted, d.Status)
	assert.Equal(t, stored, *d.Phases.OpeningStatements.ProStatement, "the pro opening on record is kept")
	assert.Equal(t, "Con opening hook (second take)", d.Phases.OpeningStatements.ConStatement.Argument.Opening.Text)
	assert.Equal(t, 5, gen.count("Argument"), "only the missing opening is regenerated")

	label := string(debate.StatusOpening) + "-pro"
	want := momentum.NewTracker().ScoreShift(debate.StatementOutput{Side: debate.Pro, Argument: &stored.Argument}, label)
	var events []debate.MomentumEvent
	for _, ev := range d.Momentum.History {
		if ev.Phase == label {
			events = append(events, ev)
		}
	}
	require.Len(t, events, 1)
	assert.Equal(t, want.Shift, events[0].Shift)

	detected := controversy.NewDetector().Detect(debate.StatementOutput{Side: debate.Pro, Argument: &stored.Argument}, stored.Agent)
	var moments []debate.ControversyMoment
	for _, m := range d.ControversyMoments {
		if m.Source == label {
			moments = append(moments, m)
		}
	}
	require.Len(t, moments, len(detected))
	for i := range detected {
		assert.Equal(t, detected[i].Excerpt, moments[i].Excerpt)
	}

	var claims []string
	for _, fc := range d.FactChecks {
		claims = append(claims, fc.Claim)
	}
	assert.ElementsMatch(t, []string{"Pro statistic", "Con statistic (second take)"}, claims)
}

func TestCrossExamRequiresBothOpenings(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())
	ctx := context.Background()
	const id = "debate-partial"

	require.NoError(t, h.store.Create(ctx, &debate.Debate{ID: id, Topic: "Should AI replace judges?"}))
	require.NoError(t, h.store.SetAgents(ctx, id, nil, []debate.Agent{
		{ID: "agent-1", Side: debate.Pro, Persona: debate.Persona{Name: "Ari"}},
		{ID: "agent-2", Side: debate.Con, Persona: debate.Persona{Name: "Dana"}},
	}))
	require.NoError(t, h.store.SetSidePayload(ctx, id, debate.StatusOpening, debate.Pro, &debate.Statement{Agent: "Ari"}))
	require.NoError(t, h.store.SetPhaseStatus(ctx, id, debate.StatusCrossExam, "", 0))

	err := h.engine.Advance(ctx, id)

	var pe *debate.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, debate.StatusCrossExam, pe.Phase)
	assert.Zero(t, h.gen.count("CrossExamQuestions"))
	assert.Zero(t, h.pub.count(debate.UpdateCrossExam))

	d, err := h.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusError, d.Status)
	assert.Contains(t, d.Failure, "both opening statements are required")
	assert.True(t, h.pub.isClosed(id))
}

func TestLightningFansOutAnswers(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())

	d, err := h.engine.Run(context.Background(), "req-3", "Should AI replace judges?")
	require.NoError(t, err)

	assert.Equal(t, 4, h.gen.count("LightningAnswer"))
	lr := d.Phases.LightningRound
	require.NotNil(t, lr)
	require.Len(t, lr.Questions, 2, "extra questions are dropped")
	require.Len(t, lr.ProAnswers, 2)
	require.Len(t, lr.ConAnswers, 2)
	assert.Equal(t, "Bias or error?", lr.ProAnswers[0].Question)
	assert.Equal(t, "Appeal to a machine?", lr.ConAnswers[1].Question)
	assert.Equal(t, 3, lr.ProAnswers[0].WordCount)
	assert.Equal(t, []string{"Dana Skeptic: Con answers fast", "Dana Skeptic: Con answers fast"}, lr.ConcessionsMade)
}

func TestPhaseTimeoutFailsDebate(t *testing.T) {
	opts := debate.DefaultOptions()
	opts.PhaseTimeouts = map[debate.Status]time.Duration{debate.StatusRebuttals: 20 * time.Millisecond}
	h := newHarness(t, opts)
	h.gen.block = func(p debate.Prompt, _ any) bool {
		return strings.Contains(p.User, "Deliver your rebuttal")
	}

	id, err := h.engine.Trigger(context.Background(), "req-4", "Should AI replace judges?")
	require.NoError(t, err)
	err = h.engine.Advance(context.Background(), id)

	var te *debate.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, debate.StatusRebuttals, te.Phase)
	assert.Equal(t, 20*time.Millisecond, te.After)

	d, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusError, d.Status)
	assert.NotEmpty(t, d.Failure)
	assert.Nil(t, d.Phases.Rebuttals)

	assert.Zero(t, h.pub.count(debate.UpdateRebuttal))
	assert.Zero(t, h.pub.count(debate.UpdateLightning))
	assert.Equal(t, debate.StatusData{Phase: debate.StatusRebuttals}, h.pub.last().Data)
	assert.True(t, h.pub.isClosed(id))

	err = h.engine.Advance(context.Background(), id)
	assert.ErrorIs(t, err, debate.ErrDebateClosed)
}

func TestGenerationFailureFailsDebate(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())
	boom := errors.New("model unavailable")
	h.gen.fail = func(_ debate.Prompt, out any) error {
		if _, ok := out.(*debate.PunchyStatement); ok {
			return boom
		}
		return nil
	}

	_, err := h.engine.Run(context.Background(), "req-5", "Should AI replace judges?")

	var ge *debate.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, debate.StatusClosing, ge.Phase)
	assert.ErrorIs(t, err, boom)

	d, err := h.store.Get(context.Background(), "debate-req-5")
	require.NoError(t, err)
	assert.Equal(t, debate.StatusError, d.Status)
	assert.Zero(t, h.pub.count(debate.UpdateClosing))
	assert.Zero(t, h.pub.count(debate.UpdateVerdictJudge))
}

func TestAnalysisWithoutTwoSidesFails(t *testing.T) {
	st := store.New(store.NewMemoryRepository(), nil)
	t.Cleanup(st.Close)
	gen := &oneSidedGen{fakeGen: newFakeGen()}
	opts := debate.DefaultOptions()
	opts.Models = testRoster
	pub := newRecorder()
	e := debate.NewEngine(st, pub, gen, momentum.NewTracker(), controversy.NewDetector(), judges.NewPanel(), opts, nil)

	_, err := e.Run(context.Background(), "req-6", "Is a hot dog a sandwich?")

	var pe *debate.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, debate.StatusPreparing, pe.Phase)
	assert.Zero(t, gen.count("Persona"))
	assert.Zero(t, pub.count(debate.UpdateInit))
}

// oneSidedGen returns an analysis with only a pro position.
type oneSidedGen struct{ *fakeGen }

func (g *oneSidedGen) Generate(ctx context.Context, p debate.Prompt, out any) error {
	if a, ok := out.(*debate.Analysis); ok {
		*a = debate.Analysis{Positions: []debate.Position{{Role: "only", Side: debate.Pro}}}
		return nil
	}
	return g.fakeGen.Generate(ctx, p, out)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestPhaseLogsCarryDebateID(t *testing.T) {
	st := store.New(store.NewMemoryRepository(), nil)
	t.Cleanup(st.Close)
	var out lockedBuffer
	opts := debate.DefaultOptions()
	opts.Models = testRoster
	e := debate.NewEngine(st, newRecorder(), newFakeGen(), momentum.NewTracker(), controversy.NewDetector(), judges.NewPanel(), opts, logging.New(&out, slog.LevelInfo))

	d, err := e.Run(context.Background(), "req-9", "Should AI replace judges?")
	require.NoError(t, err)

	started := 0
	for _, line := range bytes.Split(bytes.TrimSpace(out.buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, d.ID, entry["debate_id"], "%s", line)
		if entry["msg"] == "phase started" {
			started++
		}
	}
	assert.Equal(t, 7, started)
}

func TestTriggerIsDeterministic(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())
	ctx := context.Background()

	id, err := h.engine.Trigger(ctx, "abc", "Topic")
	require.NoError(t, err)
	assert.Equal(t, "debate-abc", id)
	assert.Equal(t, id, debate.DebateID("abc"))

	_, err = h.engine.Trigger(ctx, "abc", "Topic")
	assert.ErrorIs(t, err, debate.ErrDebateExists)

	_, err = h.engine.Trigger(ctx, "def", "")
	assert.Error(t, err)
}

func TestAdvanceCompletedIsNoop(t *testing.T) {
	h := newHarness(t, debate.DefaultOptions())
	ctx := context.Background()

	d, err := h.engine.Run(ctx, "req-7", "Should AI replace judges?")
	require.NoError(t, err)
	before := len(h.pub.types())

	require.NoError(t, h.engine.Advance(ctx, d.ID))
	assert.Len(t, h.pub.types(), before)

	assert.ErrorIs(t, h.engine.Advance(ctx, "debate-missing"), debate.ErrDebateNotFound)
}

func TestFinalScoreTie(t *testing.T) {
	j := &debate.Judgment{Scores: debate.SideScores{Pro: 7, Con: 7}}
	v := &debate.Verdict{LogicScore: j, EvidenceScore: j, RhetoricScore: j}
	fs := debate.FinalScoreFrom(v, debate.Agent{Side: debate.Pro}, debate.Agent{Side: debate.Con})

	assert.Equal(t, debate.Tied, fs.Winner)
	assert.Empty(t, fs.WinnerName)
	assert.Equal(t, 0.0, fs.Margin)
	assert.Equal(t, 21.0, fs.Pro)
}

func TestFinalScoreConWins(t *testing.T) {
	v := &debate.Verdict{
		LogicScore:    &debate.Judgment{Scores: debate.SideScores{Pro: 5, Con: 9}},
		EvidenceScore: &debate.Judgment{Scores: debate.SideScores{Pro: 6, Con: 7}},
		RhetoricScore: &debate.Judgment{Scores: debate.SideScores{Pro: 7.5, Con: 7}},
	}
	fs := debate.FinalScoreFrom(v, debate.Agent{Side: debate.Pro}, debate.Agent{Side: debate.Con, Persona: debate.Persona{Name: "Dana"}})

	assert.Equal(t, debate.FinalScore{Pro: 18.5, Con: 23, Winner: "con", WinnerName: "Dana", Margin: 4.5}, fs)
}
