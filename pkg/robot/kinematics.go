package robot

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnreachable is returned for poses outside the arm's workspace.
var ErrUnreachable = errors.New("pose out of reach")

// Geometry describes the arm linkage. Lengths are in meters, offsets in
// radians: a joint offset is the kinematic angle the servo reports as zero.
type Geometry struct {
	ShoulderHeight float64 `json:"shoulder_height" yaml:"shoulder_height"`
	UpperArm       float64 `json:"upper_arm" yaml:"upper_arm"`
	Forearm        float64 `json:"forearm" yaml:"forearm"`
	Tool           float64 `json:"tool" yaml:"tool"`

	PanOffset      float64 `json:"pan_offset" yaml:"pan_offset"`
	ShoulderOffset float64 `json:"shoulder_offset" yaml:"shoulder_offset"`
	ElbowOffset    float64 `json:"elbow_offset" yaml:"elbow_offset"`
	WristOffset    float64 `json:"wrist_offset" yaml:"wrist_offset"`

	// GripperMaxWidth maps to GripperSpan radians of gripper travel.
	GripperMaxWidth float64 `json:"gripper_max_width" yaml:"gripper_max_width"`
	GripperSpan     float64 `json:"gripper_span" yaml:"gripper_span"`
}

// DefaultGeometry returns a linkage that reaches every peg of the default
// rig with the gripper pointing down.
func DefaultGeometry() Geometry {
	return Geometry{
		ShoulderHeight:  0.100,
		UpperArm:        0.250,
		Forearm:         0.250,
		Tool:            0.100,
		PanOffset:       math.Pi / 4,
		ShoulderOffset:  math.Pi / 2,
		ElbowOffset:     math.Pi / 2,
		GripperMaxWidth: 0.070,
		GripperSpan:     1.5,
	}
}

// Joints are kinematic joint angles in radians. Shoulder is the upper arm
// elevation above horizontal, Elbow the downward bend of the forearm relative
// to the upper arm, WristFlex the tool angle relative to the forearm.
type Joints struct {
	Pan       float64
	Shoulder  float64
	Elbow     float64
	WristFlex float64
	WristRoll float64
}

// Pose is an end-effector pose. Pitch is the tool angle below horizontal.
type Pose struct {
	X, Y, Z     float64
	Roll, Pitch float64
}

// Inverse solves joint angles for p with the elbow above the wrist.
func (g Geometry) Inverse(p Pose) (Joints, error) {
	r := math.Hypot(p.X, p.Y)
	pan := 0.0
	if r > 1e-9 {
		pan = math.Atan2(p.Y, p.X)
	}

	wr := r - g.Tool*math.Cos(p.Pitch)
	wz := p.Z + g.Tool*math.Sin(p.Pitch) - g.ShoulderHeight

	l1, l2 := g.UpperArm, g.Forearm
	d := (wr*wr + wz*wz - l1*l1 - l2*l2) / (2 * l1 * l2)
	if d > 1 || d < -1 || math.IsNaN(d) {
		return Joints{}, fmt.Errorf("%w: (%.3f, %.3f, %.3f)", ErrUnreachable, p.X, p.Y, p.Z)
	}

	elbow := math.Acos(d)
	shoulder := math.Atan2(wz, wr) + math.Atan2(l2*math.Sin(elbow), l1+l2*math.Cos(elbow))
	forearm := shoulder - elbow

	return Joints{
		Pan:       pan,
		Shoulder:  shoulder,
		Elbow:     elbow,
		WristFlex: -p.Pitch - forearm,
		WristRoll: p.Roll,
	}, nil
}

// Forward returns the pose reached by j.
func (g Geometry) Forward(j Joints) Pose {
	forearm := j.Shoulder - j.Elbow
	tool := forearm + j.WristFlex

	r := g.UpperArm*math.Cos(j.Shoulder) + g.Forearm*math.Cos(forearm) + g.Tool*math.Cos(tool)
	z := g.ShoulderHeight + g.UpperArm*math.Sin(j.Shoulder) + g.Forearm*math.Sin(forearm) + g.Tool*math.Sin(tool)

	return Pose{
		X:     r * math.Cos(j.Pan),
		Y:     r * math.Sin(j.Pan),
		Z:     z,
		Roll:  j.WristRoll,
		Pitch: -tool,
	}
}

// MotorAngles converts kinematic joints to servo angles around each
// calibrated center.
func (g Geometry) MotorAngles(j Joints) map[MotorName]float64 {
	return map[MotorName]float64{
		ShoulderPan:  j.Pan - g.PanOffset,
		ShoulderLift: j.Shoulder - g.ShoulderOffset,
		ElbowFlex:    j.Elbow - g.ElbowOffset,
		WristFlex:    j.WristFlex - g.WristOffset,
		WristRoll:    j.WristRoll,
	}
}

// GripperAngle maps a jaw opening in meters to a gripper servo angle.
func (g Geometry) GripperAngle(width float64) float64 {
	if g.GripperMaxWidth <= 0 {
		return 0
	}
	frac := max(0, min(1, width/g.GripperMaxWidth))
	return frac * g.GripperSpan
}

// JointsOf is the inverse of MotorAngles.
func (g Geometry) JointsOf(angles map[MotorName]float64) Joints {
	return Joints{
		Pan:       angles[ShoulderPan] + g.PanOffset,
		Shoulder:  angles[ShoulderLift] + g.ShoulderOffset,
		Elbow:     angles[ElbowFlex] + g.ElbowOffset,
		WristFlex: angles[WristFlex] + g.WristOffset,
		WristRoll: angles[WristRoll],
	}
}
