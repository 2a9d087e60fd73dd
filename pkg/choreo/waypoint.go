package choreo

import (
	"fmt"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

// Phase names the role of a waypoint within a relocation.
type Phase int

// Phases of a relocation, in emission order. PhaseHome is only used for the
// startup pose.
const (
	PhaseApproach Phase = iota
	PhaseDescend
	PhaseGrasp
	PhaseLift
	PhaseTransit
	PhaseLower
	PhaseRelease
	PhaseRetreat
	PhaseHome
)

var phaseNames = [...]string{"approach", "descend", "grasp", "lift", "transit", "lower", "release", "retreat", "home"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Category groups phases that share a settle delay.
type Category int

const (
	CategoryVertical Category = iota
	CategoryRotation
	CategoryGrip
)

func (c Category) String() string {
	switch c {
	case CategoryRotation:
		return "rotation"
	case CategoryGrip:
		return "grip"
	default:
		return "vertical"
	}
}

// Category returns the motion category of the phase.
func (p Phase) Category() Category {
	switch p {
	case PhaseApproach, PhaseTransit:
		return CategoryRotation
	case PhaseGrasp, PhaseRelease:
		return CategoryGrip
	default:
		return CategoryVertical
	}
}

// Span is an inclusive range of phases to emit from a relocation.
type Span struct {
	First Phase
	Last  Phase
}

// FullSpan covers all eight phases of a relocation.
var FullSpan = Span{First: PhaseApproach, Last: PhaseRetreat}

// Contains reports whether p falls within the span.
func (s Span) Contains(p Phase) bool {
	return p >= s.First && p <= s.Last
}

// Position is an end-effector location in meters.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Waypoint is a single end-effector target. It is a value type; copies never
// share state.
type Waypoint struct {
	Position Position  `json:"position"`
	Roll     float64   `json:"roll"`
	Pitch    float64   `json:"pitch"`
	Gripper  float64   `json:"gripper"`
	Phase    Phase     `json:"phase"`
	Peg      hanoi.Peg `json:"peg"`
}

func (w Waypoint) String() string {
	return fmt.Sprintf("%s@%s (%.3f, %.3f, %.3f) grip %.3f",
		w.Phase, w.Peg, w.Position.X, w.Position.Y, w.Position.Z, w.Gripper)
}
