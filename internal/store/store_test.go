package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

// tickingClock advances one second per call so UpdatedAt changes are
// observable.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(NewMemoryRepository(), nil)
	s.now = (&tickingClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}).Now
	t.Cleanup(s.Close)
	return s
}

func createDebate(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &debate.Debate{ID: id, Topic: "AI should replace judges"}))
}

func statement(agent string) *debate.Statement {
	return &debate.Statement{
		Agent:     agent,
		Argument:  debate.Argument{Opening: debate.Hook{Text: agent + " opens"}},
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateFillsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, debate.StatusPreparing, d.Status)
	assert.Equal(t, debate.Tied, d.Momentum.CurrentLeader)
	assert.Equal(t, debate.Stable, d.Momentum.Volatility)
	assert.NotNil(t, d.Momentum.History)
	assert.NotNil(t, d.ControversyMoments)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestCreateRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	createDebate(t, s, "debate-1")

	err := s.Create(context.Background(), &debate.Debate{ID: "debate-1"})
	assert.ErrorIs(t, err, debate.ErrDebateExists)
}

func TestUnknownDebate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, debate.ErrDebateNotFound)

	err = s.SetPhaseStatus(ctx, "missing", debate.StatusOpening, "", 0)
	assert.ErrorIs(t, err, debate.ErrDebateNotFound)
}

func TestSetSidePayloadIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	require.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusOpening, debate.Pro, statement("Ari")))
	first, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)

	require.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusOpening, debate.Pro, statement("Ari")))
	second, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)

	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "identical write must not stamp UpdatedAt")
	assert.Equal(t, first.Phases, second.Phases)
}

func TestSetSidePayloadKeepsSibling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	require.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusRebuttals, debate.Pro, statement("Ari")))
	require.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusRebuttals, debate.Con, statement("Dana")))

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	require.True(t, d.Phases.Rebuttals.Complete())
	assert.Equal(t, "Ari", d.Phases.Rebuttals.ProStatement.Agent)
	assert.Equal(t, "Dana", d.Phases.Rebuttals.ConStatement.Agent)
	assert.Nil(t, d.Phases.OpeningStatements)
}

func TestSetSidePayloadRejectsMismatchedPayload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	err := s.SetSidePayload(ctx, "debate-1", debate.StatusClosing, debate.Pro, statement("Ari"))
	assert.Error(t, err)

	err = s.SetSidePayload(ctx, "debate-1", debate.StatusOpening, debate.Pro, &debate.Closing{Statement: "done"})
	assert.Error(t, err)

	err = s.SetSidePayload(ctx, "debate-1", debate.StatusOpening, "moderator", statement("Ari"))
	assert.Error(t, err)
}

// TestConcurrentDisjointSideWrites races both sides of every two-slot
// phase and checks neither write is lost.
func TestConcurrentDisjointSideWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	var wg sync.WaitGroup
	for _, side := range debate.Sides {
		wg.Add(3)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusOpening, side, statement(string(side))))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusRebuttals, side, statement(string(side))))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.SetSidePayload(ctx, "debate-1", debate.StatusClosing, side, &debate.Closing{Agent: string(side), Statement: "end"}))
		}()
	}
	wg.Wait()

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.True(t, d.Phases.OpeningStatements.Complete())
	assert.True(t, d.Phases.Rebuttals.Complete())
	assert.True(t, d.Phases.ClosingStatements.Complete())
}

func TestSetPhaseStatusIsMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	require.NoError(t, s.SetPhaseStatus(ctx, "debate-1", debate.StatusCrossExam, "Round 1", 0.5))
	require.NoError(t, s.SetPhaseStatus(ctx, "debate-1", debate.StatusCrossExam, "Round 2", 1))

	err := s.SetPhaseStatus(ctx, "debate-1", debate.StatusOpening, "", 0)
	assert.ErrorIs(t, err, debate.ErrStatusRegression)

	err = s.SetPhaseStatus(ctx, "debate-1", debate.StatusRebuttals, "", 1.5)
	assert.Error(t, err)

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, debate.CurrentPhase{Type: debate.StatusCrossExam, SubLabel: "Round 2", Progress: 1}, d.CurrentPhase)
}

func TestTerminalDebateRejectsMutations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	require.NoError(t, s.SetPhaseStatus(ctx, "debate-1", debate.StatusCompleted, "", 1))

	err := s.SetSidePayload(ctx, "debate-1", debate.StatusOpening, debate.Pro, statement("Ari"))
	assert.ErrorIs(t, err, debate.ErrDebateClosed)
	err = s.Fail(ctx, "debate-1", "late failure")
	assert.ErrorIs(t, err, debate.ErrDebateClosed)

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, debate.StatusCompleted, d.Status)
	assert.Nil(t, d.Phases.OpeningStatements)
}

func TestFailRecordsCause(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")
	require.NoError(t, s.SetPhaseStatus(ctx, "debate-1", debate.StatusRebuttals, "", 0))

	require.NoError(t, s.Fail(ctx, "debate-1", "rebuttals timed out"))

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, debate.StatusError, d.Status)
	assert.Equal(t, "rebuttals timed out", d.Failure)
}

func TestSetRoundPayload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	round2 := &debate.CrossExamRound{Questioner: "Dana", Respondent: "Ari", QuestionerSide: debate.Con, RespondentSide: debate.Pro}
	require.NoError(t, s.SetRoundPayload(ctx, "debate-1", debate.StatusCrossExam, 1, round2))

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	require.Len(t, d.Phases.CrossExamination.Rounds, 2)
	assert.Nil(t, d.Phases.CrossExamination.Rounds[0])
	assert.Equal(t, "Dana", d.Phases.CrossExamination.Rounds[1].Questioner)

	assert.Error(t, s.SetRoundPayload(ctx, "debate-1", debate.StatusCrossExam, MaxCrossExamRounds, round2))
	assert.Error(t, s.SetRoundPayload(ctx, "debate-1", debate.StatusRebuttals, 0, round2))
}

func TestSetJudgeVerdictAndFinalScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	j := &debate.Judgment{JudgeName: "Professor Ada Lovelace", Scores: debate.SideScores{Pro: 7, Con: 6}}
	require.NoError(t, s.SetJudgeVerdict(ctx, "debate-1", debate.JudgeLogic, j))
	assert.Error(t, s.SetJudgeVerdict(ctx, "debate-1", "vibes", j))

	score := debate.FinalScore{Pro: 7, Con: 6, Winner: "pro", WinnerName: "Ari", Margin: 1}
	require.NoError(t, s.SetFinalScore(ctx, "debate-1", score))

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.Equal(t, j, d.Phases.Verdict.LogicScore)
	assert.Nil(t, d.Phases.Verdict.EvidenceScore)
	assert.Equal(t, &score, d.FinalScore)
}

func TestAppendMomentumEventDedupesByPhase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	state, err := s.AppendMomentumEvent(ctx, "debate-1", debate.MomentumEvent{Phase: "opening-statements-pro", Shift: 4.2})
	require.NoError(t, err)
	assert.Equal(t, 4.2, state.CurrentScore.Pro)

	state, err = s.AppendMomentumEvent(ctx, "debate-1", debate.MomentumEvent{Phase: "opening-statements-pro", Shift: 4.2})
	require.NoError(t, err)
	assert.Len(t, state.History, 1)
	assert.Equal(t, 4.2, state.CurrentScore.Pro)

	state, err = s.AppendMomentumEvent(ctx, "debate-1", debate.MomentumEvent{Phase: "opening-statements-con", Shift: -6})
	require.NoError(t, err)
	assert.Len(t, state.History, 2)
	assert.Equal(t, "con", state.CurrentLeader)
}

func TestAppendControversyMomentDedupes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	m := debate.ControversyMoment{Type: debate.Zinger, Side: debate.Pro, Excerpt: "Justice isn't a vibe.", Source: "rebuttals-pro"}
	moments, err := s.AppendControversyMoment(ctx, "debate-1", m)
	require.NoError(t, err)
	require.Len(t, moments, 1)

	moments, err = s.AppendControversyMoment(ctx, "debate-1", m)
	require.NoError(t, err)
	assert.Len(t, moments, 1)

	m.Type = debate.Attack
	moments, err = s.AppendControversyMoment(ctx, "debate-1", m)
	require.NoError(t, err)
	assert.Len(t, moments, 2)
}

func TestAppendFactChecksSkipsKnownClaims(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	checks := []debate.FactCheck{
		{Claim: "Bail algorithms cut detention 40%", Side: debate.Pro, Verdict: "unverified"},
		{Claim: "Bail algorithms cut detention 40%", Side: debate.Con, Verdict: "unverified"},
	}
	require.NoError(t, s.AppendFactChecks(ctx, "debate-1", checks))
	require.NoError(t, s.AppendFactChecks(ctx, "debate-1", checks[:1]))

	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	assert.Len(t, d.FactChecks, 2)
}

func TestSetAgentsRequiresBothSides(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createDebate(t, s, "debate-1")

	analysis := &debate.Analysis{DebateType: "policy", Positions: []debate.Position{{Role: "advocate"}, {Role: "skeptic"}}}
	err := s.SetAgents(ctx, "debate-1", analysis, []debate.Agent{{Side: debate.Pro}, {Side: debate.Pro}})
	assert.Error(t, err)

	require.NoError(t, s.SetAgents(ctx, "debate-1", analysis, []debate.Agent{{ID: "a", Side: debate.Pro}, {ID: "b", Side: debate.Con}}))
	d, err := s.Get(ctx, "debate-1")
	require.NoError(t, err)
	require.Len(t, d.Agents, 2)
	assert.Equal(t, analysis, d.Analysis)
}

func TestCancelledContextIsRejected(t *testing.T) {
	s := newTestStore(t)
	createDebate(t, s, "debate-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SetPhaseStatus(ctx, "debate-1", debate.StatusOpening, "", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	s := New(NewMemoryRepository(), nil)
	createDebate(t, s, "debate-1")
	s.Close()

	err := s.SetPhaseStatus(context.Background(), "debate-1", debate.StatusOpening, "", 0)
	assert.ErrorIs(t, err, ErrClosed)
}

// TestManyDebatesInParallel drives independent aggregates at once.
func TestManyDebatesInParallel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("debate-%d", i)
			assert.NoError(t, s.Create(ctx, &debate.Debate{ID: id}))
			for _, phase := range debate.Sequence {
				assert.NoError(t, s.SetPhaseStatus(ctx, id, phase, "", 0))
			}
			assert.NoError(t, s.SetPhaseStatus(ctx, id, debate.StatusCompleted, "", 1))
		}()
	}
	wg.Wait()

	for i := range 20 {
		d, err := s.Get(ctx, fmt.Sprintf("debate-%d", i))
		require.NoError(t, err)
		assert.Equal(t, debate.StatusCompleted, d.Status)
	}
}
