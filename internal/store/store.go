// Package store holds debate aggregates behind narrow, named mutations.
//
// Every mutation for a given debate id is funnelled through a single
// goroutine (the debate's actor), so writes to one aggregate are applied
// one at a time without callers coordinating. Documents are persisted
// through a Repository after each mutation that changes them.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/momentum"
)

// MaxCrossExamRounds bounds SetRoundPayload.
const MaxCrossExamRounds = 2

// ErrClosed is returned after Close.
var ErrClosed = errors.New("store: closed")

// Store implements debate.Store over a Repository.
type Store struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	actors map[string]*actor
	closed bool
	wg     sync.WaitGroup
}

var _ debate.Store = (*Store)(nil)

type actor struct {
	id      string
	inbox   chan request
	pending int // guarded by Store.mu
}

type request struct {
	ctx    context.Context
	create *debate.Debate
	apply  func(d *debate.Debate) error
	reply  chan error
}

// New creates a Store backed by repo.
func New(repo Repository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		actors: make(map[string]*actor),
	}
}

// Close stops all idle actors and waits for busy ones to drain.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	for id, a := range s.actors {
		if a.pending == 0 {
			close(a.inbox)
			delete(s.actors, id)
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Store) submit(ctx context.Context, id string, req request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	a, ok := s.actors[id]
	if !ok {
		a = &actor{id: id, inbox: make(chan request)}
		s.actors[id] = a
		s.wg.Add(1)
		go s.run(a)
	}
	a.pending++
	s.mu.Unlock()

	req.ctx = ctx
	req.reply = make(chan error, 1)
	select {
	case a.inbox <- req:
	case <-ctx.Done():
		s.release(a, false)
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) run(a *actor) {
	defer s.wg.Done()
	for req := range a.inbox {
		retire, err := s.handle(a.id, req)
		req.reply <- err
		if s.release(a, retire) {
			return
		}
	}
}

// release drops one pending request and reports whether the actor has
// been retired. Actors retire once their debate is terminal (or unknown)
// and nothing else is queued, or when the store is closing.
func (s *Store) release(a *actor, retire bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.pending--
	if a.pending > 0 || !(retire || s.closed) {
		return false
	}
	if s.actors[a.id] == a {
		delete(s.actors, a.id)
	}
	close(a.inbox)
	return true
}

func (s *Store) handle(id string, req request) (retire bool, err error) {
	ctx := req.ctx
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if req.create != nil {
		if _, err := s.repo.Load(ctx, id); err == nil {
			return false, fmt.Errorf("store: create %s: %w", id, debate.ErrDebateExists)
		} else if !errors.Is(err, ErrNotFound) {
			return false, fmt.Errorf("store: create %s: %w", id, err)
		}
		return req.create.Status.Terminal(), s.save(ctx, req.create)
	}

	d, err := s.load(ctx, id)
	if err != nil {
		return errors.Is(err, debate.ErrDebateNotFound), err
	}
	if d.Status.Terminal() {
		return true, fmt.Errorf("store: %s: %w", id, debate.ErrDebateClosed)
	}

	before, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("store: encode %s: %w", id, err)
	}
	if err := req.apply(d); err != nil {
		return false, err
	}
	after, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("store: encode %s: %w", id, err)
	}
	if bytes.Equal(before, after) {
		return false, nil
	}

	d.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, d); err != nil {
		return false, err
	}
	return d.Status.Terminal(), nil
}

func (s *Store) load(ctx context.Context, id string) (*debate.Debate, error) {
	doc, err := s.repo.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("store: %s: %w", id, debate.ErrDebateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	var d debate.Debate
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return &d, nil
}

func (s *Store) save(ctx context.Context, d *debate.Debate) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", d.ID, err)
	}
	if err := s.repo.Save(ctx, d.ID, doc); err != nil {
		return fmt.Errorf("store: save %s: %w", d.ID, err)
	}
	return nil
}

func (s *Store) mutate(ctx context.Context, id string, apply func(d *debate.Debate) error) error {
	return s.submit(ctx, id, request{apply: apply})
}

// Create stores a new debate. Missing collections and timestamps are
// filled in; the status defaults to preparing.
func (s *Store) Create(ctx context.Context, d *debate.Debate) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("store: debate id is required")
	}
	rec := *d
	if rec.Status == "" {
		rec.Status = debate.StatusPreparing
		rec.CurrentPhase = debate.CurrentPhase{Type: debate.StatusPreparing}
	}
	if rec.Agents == nil {
		rec.Agents = []debate.Agent{}
	}
	if rec.Momentum.History == nil {
		rec.Momentum = momentum.NewState()
	}
	if rec.ControversyMoments == nil {
		rec.ControversyMoments = []debate.ControversyMoment{}
	}
	now := s.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return s.submit(ctx, rec.ID, request{create: &rec})
}

// Get returns the current aggregate.
func (s *Store) Get(ctx context.Context, id string) (*debate.Debate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// SetAgents records the topic analysis and the two agents.
func (s *Store) SetAgents(ctx context.Context, id string, analysis *debate.Analysis, agents []debate.Agent) error {
	if len(agents) != 2 || !agents[0].Side.Valid() || agents[0].Side == agents[1].Side || !agents[1].Side.Valid() {
		return fmt.Errorf("store: %s: exactly one pro and one con agent required", id)
	}
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		d.Analysis = analysis
		d.Agents = append([]debate.Agent(nil), agents...)
		return nil
	})
}

// SetPhaseStatus moves the status cursor. Status never moves backwards.
func (s *Store) SetPhaseStatus(ctx context.Context, id string, phase debate.Status, subLabel string, progress float64) error {
	if !phase.Known() {
		return fmt.Errorf("store: %s: unknown phase %q", id, phase)
	}
	if progress < 0 || progress > 1 {
		return fmt.Errorf("store: %s: progress %v outside [0,1]", id, progress)
	}
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		if !d.Status.CanAdvanceTo(phase) {
			return fmt.Errorf("store: %s: %s -> %s: %w", id, d.Status, phase, debate.ErrStatusRegression)
		}
		d.Status = phase
		d.CurrentPhase = debate.CurrentPhase{Type: phase, SubLabel: subLabel, Progress: progress}
		return nil
	})
}

// SetSidePayload writes one side's slot of opening, rebuttal or closing
// without touching the sibling slot. Openings and rebuttals take a
// *debate.Statement; closings take a *debate.Closing.
func (s *Store) SetSidePayload(ctx context.Context, id string, phase debate.Status, side debate.Side, payload any) error {
	if !side.Valid() {
		return fmt.Errorf("store: %s: invalid side %q", id, side)
	}
	switch p := payload.(type) {
	case *debate.Statement:
		if p == nil || (phase != debate.StatusOpening && phase != debate.StatusRebuttals) {
			return fmt.Errorf("store: %s: statement payload not valid for %s", id, phase)
		}
		return s.mutate(ctx, id, func(d *debate.Debate) error {
			slots := &d.Phases.OpeningStatements
			if phase == debate.StatusRebuttals {
				slots = &d.Phases.Rebuttals
			}
			if *slots == nil {
				*slots = &debate.SideStatements{}
			}
			*(*slots).Slot(side) = p
			return nil
		})
	case *debate.Closing:
		if p == nil || phase != debate.StatusClosing {
			return fmt.Errorf("store: %s: closing payload not valid for %s", id, phase)
		}
		return s.mutate(ctx, id, func(d *debate.Debate) error {
			if d.Phases.ClosingStatements == nil {
				d.Phases.ClosingStatements = &debate.SideClosings{}
			}
			*d.Phases.ClosingStatements.Slot(side) = p
			return nil
		})
	}
	return fmt.Errorf("store: %s: unsupported payload %T for %s", id, payload, phase)
}

// SetRoundPayload writes one cross-examination round by zero-based index.
func (s *Store) SetRoundPayload(ctx context.Context, id string, phase debate.Status, roundIndex int, payload *debate.CrossExamRound) error {
	if phase != debate.StatusCrossExam {
		return fmt.Errorf("store: %s: rounds are only valid for %s, got %s", id, debate.StatusCrossExam, phase)
	}
	if roundIndex < 0 || roundIndex >= MaxCrossExamRounds {
		return fmt.Errorf("store: %s: round index %d out of range", id, roundIndex)
	}
	if payload == nil {
		return fmt.Errorf("store: %s: nil round payload", id)
	}
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		if d.Phases.CrossExamination == nil {
			d.Phases.CrossExamination = &debate.CrossExamination{}
		}
		rounds := d.Phases.CrossExamination.Rounds
		for len(rounds) <= roundIndex {
			rounds = append(rounds, nil)
		}
		rounds[roundIndex] = payload
		d.Phases.CrossExamination.Rounds = rounds
		return nil
	})
}

// SetLightningRound replaces the lightning round payload.
func (s *Store) SetLightningRound(ctx context.Context, id string, round *debate.LightningRound) error {
	if round == nil {
		return fmt.Errorf("store: %s: nil lightning round", id)
	}
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		d.Phases.LightningRound = round
		return nil
	})
}

// SetJudgeVerdict writes one judge's slot of the verdict.
func (s *Store) SetJudgeVerdict(ctx context.Context, id string, judge debate.JudgeType, judgment *debate.Judgment) error {
	if judgment == nil || (&debate.Verdict{}).Slot(judge) == nil {
		return fmt.Errorf("store: %s: invalid verdict for judge %q", id, judge)
	}
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		if d.Phases.Verdict == nil {
			d.Phases.Verdict = &debate.Verdict{}
		}
		*d.Phases.Verdict.Slot(judge) = judgment
		return nil
	})
}

// SetFinalScore records the final score. A second, different score
// replaces the first and is logged.
func (s *Store) SetFinalScore(ctx context.Context, id string, score debate.FinalScore) error {
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		if d.FinalScore != nil && *d.FinalScore != score {
			s.logger.Warn("final score replaced", "debate_id", id, "previous_winner", d.FinalScore.Winner, "winner", score.Winner)
		}
		d.FinalScore = &score
		return nil
	})
}

// AppendMomentumEvent appends ev and recomputes score, leader and
// volatility. An event whose phase label is already in the history is
// ignored, so replaying a phase cannot count it twice.
func (s *Store) AppendMomentumEvent(ctx context.Context, id string, ev debate.MomentumEvent) (debate.MomentumState, error) {
	var state debate.MomentumState
	err := s.mutate(ctx, id, func(d *debate.Debate) error {
		if d.Momentum.History == nil {
			d.Momentum = momentum.NewState()
		}
		if ev.Phase == "" || !momentum.Has(d.Momentum, ev.Phase) {
			d.Momentum = momentum.Record(d.Momentum, ev)
		}
		state = d.Momentum
		return nil
	})
	return state, err
}

// AppendControversyMoment appends m unless an identical moment from the
// same source is already recorded. It returns the full list.
func (s *Store) AppendControversyMoment(ctx context.Context, id string, m debate.ControversyMoment) ([]debate.ControversyMoment, error) {
	var moments []debate.ControversyMoment
	err := s.mutate(ctx, id, func(d *debate.Debate) error {
		dup := false
		for _, existing := range d.ControversyMoments {
			if existing.Source == m.Source && existing.Type == m.Type && existing.Side == m.Side && existing.Excerpt == m.Excerpt {
				dup = true
				break
			}
		}
		if !dup {
			d.ControversyMoments = append(d.ControversyMoments, m)
		}
		moments = append([]debate.ControversyMoment(nil), d.ControversyMoments...)
		return nil
	})
	return moments, err
}

// AppendFactChecks records fact-check entries, skipping claims already
// recorded for the same side.
func (s *Store) AppendFactChecks(ctx context.Context, id string, checks []debate.FactCheck) error {
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		for _, c := range checks {
			seen := false
			for _, existing := range d.FactChecks {
				if existing.Side == c.Side && existing.Claim == c.Claim {
					seen = true
					break
				}
			}
			if !seen {
				d.FactChecks = append(d.FactChecks, c)
			}
		}
		return nil
	})
}

// Fail moves the debate into the terminal error state.
func (s *Store) Fail(ctx context.Context, id string, cause string) error {
	return s.mutate(ctx, id, func(d *debate.Debate) error {
		d.Status = debate.StatusError
		d.CurrentPhase = debate.CurrentPhase{Type: debate.StatusError, SubLabel: d.CurrentPhase.SubLabel, Progress: d.CurrentPhase.Progress}
		d.Failure = cause
		return nil
	})
}
