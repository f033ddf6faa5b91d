package sequence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nidhogg/animseq/internal/candidate"
	"github.com/nidhogg/animseq/internal/catalog"
	"github.com/nidhogg/animseq/internal/prompt"
	"github.com/nidhogg/animseq/internal/provider"
	"github.com/nidhogg/animseq/internal/role"
	"go.uber.org/zap"
)

var (
	ErrInvalidSeed = errors.New("seed action is not in the catalog")
	ErrNoCatalog   = errors.New("catalog is required")
	ErrNoGateway   = errors.New("gateway is required")
)

// Options configures a Simulator. Catalog and Gateway are required.
type Options struct {
	Catalog      *catalog.Catalog
	Gateway      provider.Generator
	Extractor    candidate.Extractor
	Prompter     Prompter
	Rand         *rand.Rand
	Pacer        Pacer
	MaxSteps     int
	Seed         catalog.ActionID
	QueryTimeout time.Duration
	Observers    []Observer
	Logger       *zap.Logger
}

// Simulator drives one character through a sequence of animations.
// Runs are strictly sequential; concurrent calls to Run wait their turn.
type Simulator struct {
	opts Options
	mu   sync.Mutex
}

// New validates opts and fills in defaults.
func New(opts Options) (*Simulator, error) {
	if opts.Catalog == nil {
		return nil, ErrNoCatalog
	}
	if opts.Gateway == nil {
		return nil, ErrNoGateway
	}
	if opts.Extractor == nil {
		opts.Extractor = candidate.CommaExtractor{}
	}
	if opts.Prompter == nil {
		opts.Prompter = prompt.NewBuilder(opts.Catalog)
	}
	if opts.Rand == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Rand = NewRand(seed)
	}
	if opts.Pacer == nil {
		opts.Pacer = NoDelay{}
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Seed == "" {
		opts.Seed = catalog.Idle
	}
	if !opts.Catalog.IsValid(opts.Seed) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, opts.Seed)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Simulator{opts: opts}, nil
}

// Catalog returns the catalog the simulator validates against.
func (s *Simulator) Catalog() *catalog.Catalog { return s.opts.Catalog }

// MaxSteps returns the step budget.
func (s *Simulator) MaxSteps() int { return s.opts.MaxSteps }

// run is the state of one in-progress simulation.
type run struct {
	sim    *Simulator
	ctx    context.Context
	result *Result
	logger *zap.Logger
}

// Run simulates one sequence for role r. A gateway failure or cancellation
// ends the run early; the returned Result then holds the partial history
// and the error is returned as well.
func (s *Simulator) Run(ctx context.Context, r role.Role) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &Result{
		RunID:     uuid.New().String(),
		Role:      r,
		History:   []catalog.ActionID{s.opts.Seed},
		StartedAt: time.Now(),
	}
	rn := &run{
		sim:    s,
		ctx:    ctx,
		result: res,
		logger: s.opts.Logger.With(zap.String("run", res.RunID), zap.String("role", string(r))),
	}

	rn.logger.Info("simulation started", zap.Int("max_steps", s.opts.MaxSteps))
	rn.emit(Event{Type: EventStarted})

	err := rn.loop()
	res.Duration = time.Since(res.StartedAt)
	res.Steps = len(res.History) - 1
	if err != nil {
		res.Error = err.Error()
	}

	rn.logger.Info("simulation stopped",
		zap.String("reason", string(res.Reason)),
		zap.Int("steps", res.Steps),
		zap.Duration("duration", res.Duration))
	rn.emit(Event{Type: EventStopped, Reason: res.Reason, Error: res.Error})
	return res, err
}

func (rn *run) loop() error {
	opts := rn.sim.opts
	res := rn.result

	for step := 0; step < opts.MaxSteps; step++ {
		if err := rn.ctx.Err(); err != nil {
			res.Reason = StopCanceled
			return err
		}

		if CheckTerminationByTrigger(res.History, opts.Catalog) {
			res.Reason = StopTriggerElapsed
			return nil
		}

		candidates, err := rn.propose()
		if err != nil {
			if rn.ctx.Err() != nil {
				res.Reason = StopCanceled
			} else {
				res.Reason = StopGatewayError
			}
			rn.logger.Error("model query failed", zap.Int("step", step+1), zap.Error(err))
			return fmt.Errorf("step %d: %w", step+1, err)
		}

		if len(candidates) == 0 {
			res.Reason = StopNoCandidates
			return nil
		}

		chosen := candidates[opts.Rand.Intn(len(candidates))]
		res.History = append(res.History, chosen)
		res.Records = append(res.Records, StepRecord{Step: step + 1, Candidates: candidates, Chosen: chosen})

		rn.logger.Debug("action chosen",
			zap.Int("step", step+1),
			zap.Int("candidates", len(candidates)),
			zap.String("chosen", string(chosen)))
		rn.emit(Event{Type: EventStep, Step: step + 1, Candidates: candidates, Chosen: chosen})

		if step+1 < opts.MaxSteps {
			if err := opts.Pacer.Wait(rn.ctx); err != nil {
				res.Reason = StopCanceled
				return err
			}
		}
	}

	res.Reason = StopBudgetExhausted
	return nil
}

// propose asks the model for the next actions and filters the reply.
func (rn *run) propose() ([]catalog.ActionID, error) {
	opts := rn.sim.opts
	q := opts.Prompter.Build(rn.result.Role, rn.result.History)

	ctx := rn.ctx
	if opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.QueryTimeout)
		defer cancel()
	}

	raw, err := opts.Gateway.Generate(ctx, q)
	if err != nil {
		return nil, err
	}
	return opts.Extractor.Extract(raw, opts.Catalog), nil
}

func (rn *run) emit(ev Event) {
	if len(rn.sim.opts.Observers) == 0 {
		return
	}
	ev.RunID = rn.result.RunID
	ev.Role = rn.result.Role
	ev.History = append([]catalog.ActionID(nil), rn.result.History...)
	ev.Timestamp = time.Now()

	// Observers still see the final event of a canceled run.
	ctx := context.WithoutCancel(rn.ctx)
	for _, o := range rn.sim.opts.Observers {
		if err := o.OnEvent(ctx, ev); err != nil {
			rn.logger.Warn("observer failed", zap.String("event", string(ev.Type)), zap.Error(err))
		}
	}
}
