package choreo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

// EnableSignal reports whether the demonstration may keep cycling. It is
// owned by an external collaborator and polled between cycles only.
type EnableSignal interface {
	Enabled(ctx context.Context) (bool, error)
}

// Mode is the control loop state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeInitializing
	ModeCycling
	ModeStopped
)

func (m Mode) String() string {
	switch m {
	case ModeInitializing:
		return "initializing"
	case ModeCycling:
		return "cycling"
	case ModeStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Status is a snapshot of the control loop.
type Status struct {
	Mode      Mode
	Cycle     int
	Move      hanoi.Move
	Waypoint  Waypoint
	Delay     time.Duration
	State     hanoi.State
	Timestamp time.Time
	Error     error
}

// Controller is the control loop: it initializes the arm once, then solves
// the puzzle back and forth until the enable signal is cleared.
type Controller struct {
	engine  *Engine
	enabled EnableSignal
	clock   Clock
	logger  *zap.Logger

	mu       sync.RWMutex
	running  bool
	status   Status
	statusCh chan Status
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerClock replaces the clock used for the startup and
// inter-cycle pauses.
func WithControllerClock(c Clock) ControllerOption {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithControllerLogger sets the logger.
func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(ctl *Controller) { ctl.logger = l }
}

// NewController creates a control loop around engine.
func NewController(engine *Engine, enabled EnableSignal, opts ...ControllerOption) (*Controller, error) {
	if engine == nil {
		return nil, errors.New("no engine")
	}
	if enabled == nil {
		return nil, errors.New("no enable signal")
	}

	c := &Controller{
		engine:   engine,
		enabled:  enabled,
		clock:    engine.clock,
		logger:   engine.logger,
		statusCh: make(chan Status, 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	engine.AddObserver(c)
	return c, nil
}

// Statuses returns a channel that receives status updates. Stale updates are
// dropped when the reader falls behind.
func (c *Controller) Statuses() <-chan Status {
	return c.statusCh
}

// Status returns the latest status.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Config returns the rig constants.
func (c *Controller) Config() Config {
	return c.engine.Config()
}

// NextPlan returns the solve that moves the tower from wherever it rests in s
// to the other end peg.
func (c *Controller) NextPlan(s hanoi.State) (hanoi.Plan, error) {
	cfg := c.engine.Config()
	tower, ok := s.Tower()
	if !ok {
		return nil, fmt.Errorf("no complete tower in %s", s)
	}

	var to hanoi.Peg
	switch tower {
	case cfg.Source:
		to = cfg.Destination
	case cfg.Destination:
		to = cfg.Source
	default:
		return nil, fmt.Errorf("tower rests on peg %s, expected %s or %s", tower, cfg.Source, cfg.Destination)
	}
	via, ok := hanoi.Spare(tower, to)
	if !ok {
		return nil, fmt.Errorf("no spare peg between %s and %s", tower, to)
	}
	return hanoi.Solve(s.Total(), tower, to, via), nil
}

// Run executes the control loop until the enable signal is cleared, ctx is
// done, or a command cannot be published. The enable signal is only polled
// between complete solves.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("already running")
	}
	c.running = true
	c.mu.Unlock()

	err := c.run(ctx)
	c.shutdown(err)
	return err
}

func (c *Controller) run(ctx context.Context) error {
	cfg := c.engine.Config()
	c.setMode(ModeInitializing, 0)

	plan, err := c.NextPlan(c.engine.State())
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}
	end, err := c.engine.Preflight(plan)
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}

	c.logger.Info("waiting for actuator channels", zap.Duration("delay", cfg.StartupDelay.Std()))
	if err := c.clock.Sleep(ctx, cfg.StartupDelay.Std()); err != nil {
		return err
	}
	if err := c.engine.Home(ctx); err != nil {
		return err
	}

	// the first relocation doubles as setup: the disk starts on the full tower
	c.logger.Info("setup relocation", zap.Stringer("move", plan[0]))
	if err := c.engine.Relocate(ctx, plan[0], FullSpan); err != nil {
		return err
	}

	rest := plan[1:]
	var held *hanoi.Move
	for cycle := 1; ; cycle++ {
		ok, err := c.enabled.Enabled(ctx)
		if err != nil {
			return fmt.Errorf("read enable signal: %w", err)
		}
		if !ok {
			c.logger.Info("controller disabled", zap.Int("cycle", cycle), zap.Bool("disk_held", held != nil))
			if held != nil {
				// put the held disk down before stopping
				return c.engine.Finish(ctx, *held, Span{First: PhaseRelease, Last: PhaseRetreat})
			}
			return nil
		}
		c.setMode(ModeCycling, cycle)

		next, err := c.NextPlan(end)
		if err != nil {
			return fmt.Errorf("build plan: %w", err)
		}
		nextEnd, err := next.Validate(end)
		if err != nil {
			return fmt.Errorf("build plan: %w", err)
		}

		hold := cfg.HoldBetweenCycles && len(rest) > 0 && handoff(rest[len(rest)-1], next[0])
		for i, m := range rest {
			span := FullSpan
			if i == 0 && held != nil {
				span.First = PhaseLift
			}
			if i == len(rest)-1 && hold {
				span.Last = PhaseLower
			}
			if err := c.engine.Relocate(ctx, m, span); err != nil {
				return err
			}
		}
		held = nil
		if hold {
			held = &rest[len(rest)-1]
		}

		c.engine.observers.CycleDone(cycle)
		c.logger.Info("cycle complete", zap.Int("cycle", cycle), zap.Stringer("state", c.engine.State()))

		if err := c.clock.Sleep(ctx, cfg.InterCycleDelay.Std()); err != nil {
			return err
		}

		rest, end = next, nextEnd
	}
}

// handoff reports whether next picks up the disk last just put down.
func handoff(last, next hanoi.Move) bool {
	return last.Disk == next.Disk && last.To == next.From
}

func (c *Controller) setMode(m Mode, cycle int) {
	c.mu.Lock()
	c.status.Mode = m
	c.status.Cycle = cycle
	c.status.State = c.engine.State()
	c.status.Timestamp = time.Now()
	s := c.status
	c.mu.Unlock()
	c.sendStatus(s)
}

func (c *Controller) shutdown(err error) {
	c.mu.Lock()
	c.running = false
	c.status.Mode = ModeStopped
	c.status.Error = err
	c.status.Timestamp = time.Now()
	s := c.status
	c.mu.Unlock()
	c.sendStatus(s)

	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("controller stopped", zap.Error(err))
		return
	}
	c.logger.Info("controller stopped")
}

func (c *Controller) sendStatus(s Status) {
	select {
	case c.statusCh <- s:
	default:
		// Drop old status if channel full, replace with new
		select {
		case <-c.statusCh:
		default:
		}
		select {
		case c.statusCh <- s:
		default:
		}
	}
}

// Waypoint implements Observer.
func (c *Controller) Waypoint(w Waypoint, delay time.Duration) {
	c.mu.Lock()
	c.status.Waypoint = w
	c.status.Delay = delay
	c.status.Timestamp = time.Now()
	s := c.status
	c.mu.Unlock()
	c.sendStatus(s)
}

// Relocated implements Observer.
func (c *Controller) Relocated(m hanoi.Move, st hanoi.State) {
	c.mu.Lock()
	c.status.Move = m
	c.status.State = st
	c.status.Timestamp = time.Now()
	s := c.status
	c.mu.Unlock()
	c.sendStatus(s)
}

// CycleDone implements Observer.
func (c *Controller) CycleDone(int) {}
