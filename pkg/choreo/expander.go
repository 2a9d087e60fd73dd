package choreo

import (
	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

// Expander turns a relocation into its eight end-effector waypoints.
type Expander struct {
	cfg Config
}

// NewExpander creates an expander for the given rig constants.
func NewExpander(cfg Config) Expander {
	return Expander{cfg: cfg}
}

// Expand returns the waypoints for m applied to s: approach, descend, grasp,
// lift, transit, lower, release, retreat. An illegal move returns an
// InvalidOperationError and no waypoints. s is not modified.
func (x Expander) Expand(s hanoi.State, m hanoi.Move) ([]Waypoint, error) {
	if err := s.Check(m); err != nil {
		return nil, err
	}
	if int(m.Disk) < 0 || int(m.Disk) >= len(x.cfg.GripWidths) {
		return nil, &hanoi.InvalidOperationError{Move: m, Reason: "no grip width for disk"}
	}

	var (
		grip  = x.cfg.GripWidths[m.Disk]
		open  = x.cfg.OpenWidth
		safe  = x.cfg.ApproachHeight
		pick  = x.StackHeight(s, m.From, s.Height(m.From)-1) + x.cfg.PickClearance
		place = x.StackHeight(s, m.To, s.Height(m.To)) + x.cfg.PlaceClearance
	)

	return []Waypoint{
		x.at(m.From, safe, open, PhaseApproach),
		x.at(m.From, pick, open, PhaseDescend),
		x.at(m.From, pick, grip, PhaseGrasp),
		x.at(m.From, safe, grip, PhaseLift),
		x.at(m.To, safe, grip, PhaseTransit),
		x.at(m.To, place, grip, PhaseLower),
		x.at(m.To, place, open, PhaseRelease),
		x.at(m.To, safe, open, PhaseRetreat),
	}, nil
}

// Home returns the startup pose: above the home peg with the gripper open.
func (x Expander) Home() Waypoint {
	return x.at(x.cfg.HomePeg, x.cfg.ApproachHeight, x.cfg.OpenWidth, PhaseHome)
}

// StackHeight returns the top surface height of the bottom count disks on p.
// An empty peg rests at the floor height.
func (x Expander) StackHeight(s hanoi.State, p hanoi.Peg, count int) float64 {
	h := x.cfg.FloorHeight
	for i, d := range s.Disks(p) {
		if i >= count {
			break
		}
		if int(d) >= 0 && int(d) < len(x.cfg.RestingOffsets) {
			h += x.cfg.RestingOffsets[d]
		}
	}
	return max(h, x.cfg.FloorHeight)
}

func (x Expander) at(p hanoi.Peg, z, gripper float64, phase Phase) Waypoint {
	xy := x.cfg.PegCoordinates[p]
	return Waypoint{
		Position: Position{X: xy.X, Y: xy.Y, Z: z},
		Roll:     x.cfg.Roll,
		Pitch:    x.cfg.Pitch,
		Gripper:  gripper,
		Phase:    phase,
		Peg:      p,
	}
}
