package debate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/models"
)

const tracerName = "github.com/lorenzotomasdiez/debate-arena/internal/debate"

// Options tunes a debate run.
type Options struct {
	DefaultTimeout     time.Duration
	PhaseTimeouts      map[Status]time.Duration
	CrossExamRounds    int
	LightningQuestions int
	Models             models.Roster
}

// DefaultOptions returns the standard format: two cross-examination
// rounds and two lightning questions, five minutes per phase.
func DefaultOptions() Options {
	return Options{
		DefaultTimeout:     5 * time.Minute,
		CrossExamRounds:    2,
		LightningQuestions: 2,
	}
}

func (o Options) timeout(phase Status) time.Duration {
	if d, ok := o.PhaseTimeouts[phase]; ok && d > 0 {
		return d
	}
	if o.DefaultTimeout > 0 {
		return o.DefaultTimeout
	}
	return 5 * time.Minute
}

// Engine orchestrates two-sided debates through their phases.
type Engine struct {
	store    Store
	pub      Publisher
	gen      Generator
	scorer   MomentumScorer
	detector ControversyDetector
	judges   JudgePanel
	opts     Options
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	OnPhase  func(id string, phase Status)
}

// NewEngine creates a new debate engine.
func NewEngine(store Store, pub Publisher, gen Generator, scorer MomentumScorer, detector ControversyDetector, judges JudgePanel, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CrossExamRounds <= 0 {
		opts.CrossExamRounds = 2
	}
	if opts.LightningQuestions <= 0 {
		opts.LightningQuestions = 2
	}
	return &Engine{
		store:    store,
		pub:      pub,
		gen:      gen,
		scorer:   scorer,
		detector: detector,
		judges:   judges,
		opts:     opts,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// DebateID derives the debate id for a trigger request.
func DebateID(requestID string) string { return "debate-" + requestID }

// Trigger creates the debate record for requestID and returns its id.
// The same request id always maps to the same debate.
func (e *Engine) Trigger(ctx context.Context, requestID, topic string) (string, error) {
	if requestID == "" {
		return "", fmt.Errorf("debate: request id is required")
	}
	if topic == "" {
		return "", fmt.Errorf("debate: topic is required")
	}
	id := DebateID(requestID)
	if err := e.store.Create(ctx, &Debate{ID: id, Topic: topic}); err != nil {
		return "", fmt.Errorf("debate: create %s: %w", id, err)
	}
	logging.WithDebate(e.logger, id).InfoContext(ctx, "debate triggered", "topic", topic)
	return id, nil
}

// Run triggers a debate and drives it to completion.
func (e *Engine) Run(ctx context.Context, requestID, topic string) (*Debate, error) {
	id, err := e.Trigger(ctx, requestID, topic)
	if err != nil {
		return nil, err
	}
	if err := e.Advance(ctx, id); err != nil {
		return nil, err
	}
	return e.store.Get(ctx, id)
}

// Advance drives a debate from its stored status until it completes or
// fails. Calling it on a debate that stopped part way resumes at the
// first unfinished phase. A cancelled ctx leaves the status where it is
// so the debate can be resumed later; any other failure is terminal.
func (e *Engine) Advance(ctx context.Context, id string) error {
	d, err := e.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("debate: %w", err)
	}
	switch d.Status {
	case StatusCompleted:
		return nil
	case StatusError:
		return fmt.Errorf("debate %s: %w", id, ErrDebateClosed)
	}

	for !d.Status.Terminal() {
		if err := e.step(ctx, d); err != nil {
			return e.fail(ctx, id, err)
		}
		if d, err = e.store.Get(ctx, id); err != nil {
			return fmt.Errorf("debate: %w", err)
		}
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, id string, cause error) error {
	logger := logging.WithDebate(e.logger, id)
	if ctx.Err() != nil {
		logger.WarnContext(ctx, "debate interrupted", "error", cause)
		return fmt.Errorf("debate %s: %w", id, cause)
	}
	logger.ErrorContext(ctx, "debate failed", "error", cause)
	if err := e.store.Fail(ctx, id, cause.Error()); err != nil && !errors.Is(err, ErrDebateClosed) {
		logger.ErrorContext(ctx, "recording failure", "error", err)
	}
	e.pub.Close(id)
	return fmt.Errorf("debate %s: %w", id, cause)
}

// step runs the phase named by d.Status under its deadline and then
// moves the cursor forward.
func (e *Engine) step(ctx context.Context, d *Debate) error {
	phase := d.Status
	after := e.opts.timeout(phase)
	if e.OnPhase != nil {
		e.OnPhase(d.ID, phase)
	}

	pctx, cancel := context.WithTimeout(ctx, after)
	defer cancel()
	pctx, span := e.tracer.Start(pctx, "debate.phase", trace.WithAttributes(
		attribute.String("debate.id", d.ID),
		attribute.String("debate.phase", string(phase)),
	))
	defer span.End()

	logger := logging.WithDebate(e.logger, d.ID)
	start := e.now()
	logger.InfoContext(ctx, "phase started", "phase", phase)

	err := e.runPhase(pctx, d)
	if err == nil {
		err = e.advance(pctx, d.ID, phase.Next())
	}
	if err != nil {
		if ctx.Err() == nil && errors.Is(pctx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Phase: phase, After: after}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	logger.InfoContext(ctx, "phase finished", "phase", phase, "elapsed", e.now().Sub(start))
	return nil
}

func (e *Engine) runPhase(ctx context.Context, d *Debate) error {
	switch d.Status {
	case StatusPreparing:
		return e.prepare(ctx, d)
	case StatusOpening:
		return e.opening(ctx, d)
	case StatusCrossExam:
		return e.crossExamination(ctx, d)
	case StatusRebuttals:
		return e.rebuttals(ctx, d)
	case StatusLightning:
		return e.lightning(ctx, d)
	case StatusClosing:
		return e.closing(ctx, d)
	case StatusVerdict:
		return e.verdict(ctx, d)
	}
	return fmt.Errorf("debate: no phase runs in status %q", d.Status)
}

// advance moves the cursor to next and announces it. Completing a
// debate also closes its channel.
func (e *Engine) advance(ctx context.Context, id string, next Status) error {
	progress := 0.0
	if next == StatusCompleted {
		progress = 1
	}
	if err := e.setStatus(ctx, id, next, "", progress); err != nil {
		return err
	}
	if next == StatusCompleted {
		e.pub.Close(id)
	}
	return nil
}

func (e *Engine) setStatus(ctx context.Context, id string, phase Status, subLabel string, progress float64) error {
	if err := e.store.SetPhaseStatus(ctx, id, phase, subLabel, progress); err != nil {
		return fmt.Errorf("set status %s: %w", phase, err)
	}
	return e.publish(ctx, id, Update{Type: UpdateStatus, Data: StatusData{Phase: phase, SubLabel: subLabel, Progress: progress}})
}

func (e *Engine) publish(ctx context.Context, id string, u Update) error {
	if err := e.pub.Publish(ctx, id, u); err != nil {
		return fmt.Errorf("publish %s: %w", u.Type, err)
	}
	return nil
}

// generate wraps generation failures with the phase and step they
// belong to.
func (e *Engine) generate(ctx context.Context, phase Status, step string, p Prompt, out any) error {
	if err := e.gen.Generate(ctx, p, out); err != nil {
		return &GenerationError{Phase: phase, Step: step, Err: err}
	}
	return nil
}

// fanOut runs fn once per side concurrently and returns the results in
// pro, con order.
func fanOut[In, Out any](ctx context.Context, in [2]In, fn func(ctx context.Context, v In) (Out, error)) ([2]Out, error) {
	var results [2]Out
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range in {
		g.Go(func() error {
			res, err := fn(gctx, v)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// sides returns the pro and con agents of d.
func sides(d *Debate, phase Status) ([2]Agent, error) {
	pro, okPro := d.Agent(Pro)
	con, okCon := d.Agent(Con)
	if !okPro || !okCon {
		return [2]Agent{}, &PreconditionError{Phase: phase, Reason: "debate has no pro and con agents"}
	}
	return [2]Agent{pro, con}, nil
}

// resolvePositions picks the pro and con positions out of an analysis.
// Explicit sides win; without any, exactly two positions are read as
// pro then con.
func resolvePositions(a *Analysis) (pro, con Position, err error) {
	var pros, cons, unlabelled []Position
	for _, p := range a.Positions {
		switch p.Side {
		case Pro:
			pros = append(pros, p)
		case Con:
			cons = append(cons, p)
		default:
			unlabelled = append(unlabelled, p)
		}
	}
	if len(pros) == 0 && len(cons) == 0 {
		if len(unlabelled) != 2 {
			return pro, con, &PreconditionError{Phase: StatusPreparing, Reason: fmt.Sprintf("analysis produced %d unlabelled positions, want 2", len(unlabelled))}
		}
		pro, con = unlabelled[0], unlabelled[1]
		pro.Side, con.Side = Pro, Con
		return pro, con, nil
	}
	if len(pros) != 1 || len(cons) != 1 {
		return pro, con, &PreconditionError{Phase: StatusPreparing, Reason: fmt.Sprintf("analysis produced %d pro and %d con positions, want one of each", len(pros), len(cons))}
	}
	return pros[0], cons[0], nil
}

// FinalScoreFrom totals the three judgments.
func FinalScoreFrom(v *Verdict, pro, con Agent) FinalScore {
	var fs FinalScore
	for _, judge := range JudgeOrder {
		j := *v.Slot(judge)
		if j == nil {
			continue
		}
		fs.Pro += j.Scores.Pro
		fs.Con += j.Scores.Con
	}
	fs.Pro = round1(fs.Pro)
	fs.Con = round1(fs.Con)
	switch {
	case fs.Pro > fs.Con:
		fs.Winner, fs.WinnerName = string(Pro), pro.Name()
	case fs.Con > fs.Pro:
		fs.Winner, fs.WinnerName = string(Con), con.Name()
	default:
		fs.Winner = Tied
	}
	fs.Margin = round1(fs.Pro - fs.Con)
	if fs.Margin < 0 {
		fs.Margin = -fs.Margin
	}
	return fs
}

func round1(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v*10+0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}
