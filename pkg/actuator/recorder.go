// Package actuator provides the publishers the choreography engine writes
// commands to.
package actuator

import (
	"context"
	"sync"

	"github.com/gwillem/hanoiarm/pkg/choreo"
)

// Command is one recorded message. Exactly one of Target and Hand is set.
type Command struct {
	Target *choreo.Target `json:"target,omitempty"`
	Hand   *choreo.HandPos `json:"hand,omitempty"`
}

// Recorder keeps every published command in memory. It backs dry runs and
// tests.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// PublishTarget implements choreo.Publisher.
func (r *Recorder) PublishTarget(ctx context.Context, t choreo.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.commands = append(r.commands, Command{Target: &t})
	r.mu.Unlock()
	return nil
}

// PublishHand implements choreo.Publisher.
func (r *Recorder) PublishHand(ctx context.Context, h choreo.HandPos) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.commands = append(r.commands, Command{Hand: &h})
	r.mu.Unlock()
	return nil
}

// Commands returns a copy of everything published so far, in order.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Targets returns the pose commands in order.
func (r *Recorder) Targets() []choreo.Target {
	var out []choreo.Target
	for _, c := range r.Commands() {
		if c.Target != nil {
			out = append(out, *c.Target)
		}
	}
	return out
}

// Hands returns the gripper commands in order.
func (r *Recorder) Hands() []choreo.HandPos {
	var out []choreo.HandPos
	for _, c := range r.Commands() {
		if c.Hand != nil {
			out = append(out, *c.Hand)
		}
	}
	return out
}
