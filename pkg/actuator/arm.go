package actuator

import (
	"context"
	"fmt"

	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/robot"
)

// JointDriver moves servos to joint angles. *robot.Arm implements it.
type JointDriver interface {
	ReadJoints(ctx context.Context) (map[robot.MotorName]float64, error)
	WriteJoints(ctx context.Context, angles map[robot.MotorName]float64) error
}

// Arm publishes commands straight to an arm on the servo bus. Poses go
// through inverse kinematics; gripper widths map to a gripper angle.
type Arm struct {
	driver   JointDriver
	geometry robot.Geometry
}

// NewArm wraps driver. It reads the joints once so an unplugged bus fails at
// startup rather than on the first command.
func NewArm(ctx context.Context, driver JointDriver, geometry robot.Geometry) (*Arm, error) {
	if _, err := driver.ReadJoints(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", choreo.ErrChannelUnavailable, err)
	}
	return &Arm{
		driver:   driver,
		geometry: geometry,
	}, nil
}

// PublishTarget implements choreo.Publisher.
func (a *Arm) PublishTarget(ctx context.Context, t choreo.Target) error {
	joints, err := a.geometry.Inverse(robot.Pose{
		X:     t.X,
		Y:     t.Y,
		Z:     t.Z,
		Roll:  t.Roll,
		Pitch: t.Pitch,
	})
	if err != nil {
		return err
	}
	if err := a.driver.WriteJoints(ctx, a.geometry.MotorAngles(joints)); err != nil {
		return fmt.Errorf("%w: %v", choreo.ErrChannelUnavailable, err)
	}
	return nil
}

// PublishHand implements choreo.Publisher.
func (a *Arm) PublishHand(ctx context.Context, h choreo.HandPos) error {
	angles := map[robot.MotorName]float64{
		robot.Gripper: a.geometry.GripperAngle(h.Width),
	}
	if err := a.driver.WriteJoints(ctx, angles); err != nil {
		return fmt.Errorf("%w: %v", choreo.ErrChannelUnavailable, err)
	}
	return nil
}
