// Package choreo drives the arm through a Hanoi plan: it expands relocations
// into waypoints, publishes them and waits a fixed settle time after each one.
//
// Timing is open loop. Every wait is a blind sleep sized by the motion
// category of the waypoint; the engine never learns whether the arm actually
// reached a target, and a motion that outlasts its delay goes unnoticed.
package choreo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

// Engine publishes relocations and owns the stack state.
type Engine struct {
	cfg      Config
	expander Expander
	pub      Publisher
	clock    Clock
	logger   *zap.Logger

	observers Observers

	mu      sync.RWMutex
	state   hanoi.State
	at      hanoi.Peg // peg the arm currently hovers over
	elapsed time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithState overrides the initial stack state (a full tower on the
// configured source peg by default).
func WithState(s hanoi.State) Option {
	return func(e *Engine) { e.state = s.Clone() }
}

// NewEngine creates an engine publishing to pub.
func NewEngine(cfg Config, pub Publisher, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if pub == nil {
		return nil, fmt.Errorf("no publisher: %w", ErrChannelUnavailable)
	}

	e := &Engine{
		cfg:      cfg,
		expander: NewExpander(cfg),
		pub:      pub,
		clock:    RealClock{},
		logger:   zap.NewNop(),
		state:    hanoi.NewState(hanoi.NumDisks, cfg.Source),
		at:       cfg.HomePeg,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start state: %w", err)
	}
	return e, nil
}

// AddObserver registers an observer after construction. It must not be
// called while the engine is running.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Config returns the rig constants.
func (e *Engine) Config() Config {
	return e.cfg
}

// Expander returns the engine's expander.
func (e *Engine) Expander() Expander {
	return e.expander
}

// State returns a snapshot of the stack state.
func (e *Engine) State() hanoi.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Elapsed returns the total time spent in settle delays.
func (e *Engine) Elapsed() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elapsed
}

// Preflight expands every move of plan against a copy of the current state
// and returns the state the plan would end in. Nothing is published.
func (e *Engine) Preflight(plan hanoi.Plan) (hanoi.State, error) {
	s := e.State()
	for i, m := range plan {
		if _, err := e.expander.Expand(s, m); err != nil {
			return s, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := s.Apply(m); err != nil {
			return s, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return s, nil
}

// Home publishes the startup pose.
func (e *Engine) Home(ctx context.Context) error {
	w := e.expander.Home()
	e.logger.Info("moving to home pose", zap.Stringer("peg", w.Peg))
	return e.emit(ctx, w, 0)
}

// Run executes every move of plan in full. The whole plan is checked before
// the first command goes out.
func (e *Engine) Run(ctx context.Context, plan hanoi.Plan) error {
	if _, err := e.Preflight(plan); err != nil {
		return fmt.Errorf("build plan: %w", err)
	}
	for _, m := range plan {
		if err := e.Relocate(ctx, m, FullSpan); err != nil {
			return err
		}
	}
	return nil
}

// Relocate publishes the waypoints of m that fall within span, then advances
// the stack state. The state is advanced optimistically: nothing confirms the
// disk actually moved.
func (e *Engine) Relocate(ctx context.Context, m hanoi.Move, span Span) error {
	if err := e.publish(ctx, e.State(), m, span); err != nil {
		return err
	}

	e.mu.Lock()
	err := e.state.Apply(m)
	s := e.state.Clone()
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.observers.Relocated(m, s)
	e.logger.Info("relocated", zap.Stringer("move", m), zap.Stringer("state", s))
	return nil
}

// Finish publishes the waypoints of m within span for a relocation whose
// state change was already applied by an earlier Relocate. m must be the last
// move applied.
func (e *Engine) Finish(ctx context.Context, m hanoi.Move, span Span) error {
	// rewind to the state m started from so the expansion sees the same stacks
	before := e.State()
	if err := before.Apply(hanoi.Move{Disk: m.Disk, From: m.To, To: m.From}); err != nil {
		return fmt.Errorf("finish %s: %w", m, err)
	}
	if err := e.publish(ctx, before, m, span); err != nil {
		return err
	}
	e.logger.Info("finished", zap.Stringer("move", m), zap.Stringer("first", span.First))
	return nil
}

// publish emits the waypoints of m within span, expanded against s.
func (e *Engine) publish(ctx context.Context, s hanoi.State, m hanoi.Move, span Span) error {
	waypoints, err := e.expander.Expand(s, m)
	if err != nil {
		return err
	}

	e.logger.Debug("relocate",
		zap.Stringer("move", m),
		zap.Stringer("first", span.First),
		zap.Stringer("last", span.Last))

	for _, w := range waypoints {
		if !span.Contains(w.Phase) {
			continue
		}
		travel := 0
		switch w.Phase {
		case PhaseApproach:
			travel = e.cfg.Travel(e.position(), w.Peg)
		case PhaseTransit:
			travel = e.cfg.Travel(m.From, m.To)
		}
		if err := e.emit(ctx, w, travel); err != nil {
			return fmt.Errorf("relocate %s: %w", m, err)
		}
	}
	return nil
}

func (e *Engine) position() hanoi.Peg {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.at
}

// emit publishes the pose, then the gripper width, then waits.
func (e *Engine) emit(ctx context.Context, w Waypoint, travel int) error {
	if err := e.pub.PublishTarget(ctx, TargetOf(w)); err != nil {
		return fmt.Errorf("publish target: %w", err)
	}
	if err := e.pub.PublishHand(ctx, HandPos{Width: w.Gripper}); err != nil {
		return fmt.Errorf("publish hand: %w", err)
	}

	delay := e.cfg.DelayFor(w.Phase, travel)

	e.mu.Lock()
	e.at = w.Peg
	e.elapsed += delay
	e.mu.Unlock()

	e.observers.Waypoint(w, delay)
	e.logger.Debug("waypoint", zap.Stringer("waypoint", w), zap.Duration("delay", delay))

	return e.clock.Sleep(ctx, delay)
}
