package choreo

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock records every delay instead of sleeping.
type fakeClock struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.slept = append(f.slept, d)
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeClock) total() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum time.Duration
	for _, d := range f.slept {
		sum += d
	}
	return sum
}

func (f *fakeClock) reset() {
	f.mu.Lock()
	f.slept = nil
	f.mu.Unlock()
}

// command is one message on either actuator channel.
type command struct {
	Target *Target
	Hand   *HandPos
}

// recordingPublisher keeps every command in order. After failAfter commands
// (when positive) it starts returning err.
type recordingPublisher struct {
	mu        sync.Mutex
	commands  []command
	failAfter int
	err       error
}

func (r *recordingPublisher) PublishTarget(_ context.Context, t Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing() {
		return r.err
	}
	r.commands = append(r.commands, command{Target: &t})
	return nil
}

func (r *recordingPublisher) PublishHand(_ context.Context, h HandPos) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing() {
		return r.err
	}
	r.commands = append(r.commands, command{Hand: &h})
	return nil
}

func (r *recordingPublisher) failing() bool {
	return r.err != nil && len(r.commands) >= r.failAfter
}

func (r *recordingPublisher) targets() []Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Target
	for _, c := range r.commands {
		if c.Target != nil {
			out = append(out, *c.Target)
		}
	}
	return out
}

func (r *recordingPublisher) hands() []HandPos {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []HandPos
	for _, c := range r.commands {
		if c.Hand != nil {
			out = append(out, *c.Hand)
		}
	}
	return out
}

// testConfig is the reference rig with the documented delay table.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RotationDelay = Duration(9 * time.Second)
	cfg.LiftDelay = Duration(5 * time.Second)
	cfg.GripDelay = Duration(10 * time.Second)
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *recordingPublisher, *fakeClock) {
	t.Helper()
	pub := &recordingPublisher{}
	clock := &fakeClock{}
	e, err := NewEngine(cfg, pub, append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, pub, clock
}
