package choreo

import (
	"context"
	"errors"
)

// ErrChannelUnavailable is returned by publishers that cannot accept a
// command, for example before the transport is connected.
var ErrChannelUnavailable = errors.New("actuator channel unavailable")

// Target is a command on the target-pose channel.
type Target struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// HandPos is a command on the gripper channel.
type HandPos struct {
	Width float64 `json:"width"`
}

// Publisher is the outbound actuator interface. Commands are fire-and-forget;
// nothing is read back.
type Publisher interface {
	PublishTarget(ctx context.Context, t Target) error
	PublishHand(ctx context.Context, h HandPos) error
}

// TargetOf returns the pose part of a waypoint.
func TargetOf(w Waypoint) Target {
	return Target{
		X:     w.Position.X,
		Y:     w.Position.Y,
		Z:     w.Position.Z,
		Roll:  w.Roll,
		Pitch: w.Pitch,
	}
}
