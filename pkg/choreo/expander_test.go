package choreo

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

func TestExpand_PhaseOrder(t *testing.T) {
	x := NewExpander(DefaultConfig())
	wps, err := x.Expand(hanoi.NewState(3, hanoi.PegA), hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegC})
	require.NoError(t, err)
	require.Len(t, wps, 8)

	want := []Phase{
		PhaseApproach, PhaseDescend, PhaseGrasp, PhaseLift,
		PhaseTransit, PhaseLower, PhaseRelease, PhaseRetreat,
	}
	for i, w := range wps {
		assert.Equal(t, want[i], w.Phase, "waypoint %d", i)
	}
}

func TestExpand_FirstMoveMatchesRig(t *testing.T) {
	cfg := DefaultConfig()
	x := NewExpander(cfg)
	wps, err := x.Expand(hanoi.NewState(3, hanoi.PegA), hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegC})
	require.NoError(t, err)

	a := Position{X: 0, Y: 0.336}
	c := Position{X: 0.336, Y: 0}
	tests := []struct {
		x, y, z float64
		grip    float64
	}{
		{a.X, a.Y, 0.200, 0.065},
		{a.X, a.Y, 0.075, 0.065}, // on top of disks 0 and 1
		{a.X, a.Y, 0.075, 0.018},
		{a.X, a.Y, 0.200, 0.018},
		{c.X, c.Y, 0.200, 0.018},
		{c.X, c.Y, 0.010, 0.018}, // empty peg
		{c.X, c.Y, 0.010, 0.065},
		{c.X, c.Y, 0.200, 0.065},
	}

	for i, tt := range tests {
		w := wps[i]
		assert.InDelta(t, tt.x, w.Position.X, 1e-9, "waypoint %d x", i)
		assert.InDelta(t, tt.y, w.Position.Y, 1e-9, "waypoint %d y", i)
		assert.InDelta(t, tt.z, w.Position.Z, 1e-9, "waypoint %d z", i)
		assert.InDelta(t, tt.grip, w.Gripper, 1e-9, "waypoint %d grip", i)
		assert.InDelta(t, math.Pi/2, w.Pitch, 1e-9)
		assert.Zero(t, w.Roll)
	}
}

func TestExpand_PlaceOnStack(t *testing.T) {
	x := NewExpander(DefaultConfig())
	s := hanoi.StateOf([]hanoi.Disk{0}, []hanoi.Disk{1}, []hanoi.Disk{2})

	// disk 2 onto disk 1: lower to disk 1 thickness + place clearance
	wps, err := x.Expand(s, hanoi.Move{Disk: 2, From: hanoi.PegC, To: hanoi.PegB})
	require.NoError(t, err)
	assert.InDelta(t, 0.005, wps[1].Position.Z, 1e-9)
	assert.InDelta(t, 0.040, wps[5].Position.Z, 1e-9)
}

func TestExpand_GripApertures(t *testing.T) {
	cfg := DefaultConfig()
	x := NewExpander(cfg)
	s := hanoi.NewState(3, hanoi.PegA)

	for _, m := range hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB) {
		wps, err := x.Expand(s, m)
		require.NoError(t, err)

		for _, w := range wps {
			switch w.Phase {
			case PhaseGrasp, PhaseLift, PhaseTransit, PhaseLower:
				assert.Equal(t, cfg.GripWidths[m.Disk], w.Gripper, "%s %s", m, w.Phase)
				assert.Less(t, w.Gripper, cfg.OpenWidth)
			case PhaseRelease, PhaseApproach, PhaseDescend, PhaseRetreat:
				assert.GreaterOrEqual(t, w.Gripper, cfg.OpenWidth, "%s %s", m, w.Phase)
			}
			assert.GreaterOrEqual(t, w.Position.Z, cfg.FloorHeight)
			assert.LessOrEqual(t, w.Position.Z, cfg.ApproachHeight)
		}
		require.NoError(t, s.Apply(m))
	}
}

func TestExpand_Deterministic(t *testing.T) {
	x := NewExpander(DefaultConfig())
	s := hanoi.StateOf([]hanoi.Disk{0}, []hanoi.Disk{1, 2}, nil)
	m := hanoi.Move{Disk: 2, From: hanoi.PegB, To: hanoi.PegA}

	first, err := x.Expand(s, m)
	require.NoError(t, err)
	second, err := x.Expand(s, m)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expand not deterministic (-first +second):\n%s", diff)
	}
	assert.Equal(t, []hanoi.Disk{1, 2}, s.Disks(hanoi.PegB), "Expand must not modify state")
}

func TestExpand_InvalidOperation(t *testing.T) {
	x := NewExpander(DefaultConfig())

	tests := []struct {
		name  string
		state hanoi.State
		move  hanoi.Move
	}{
		{"empty source", hanoi.NewState(3, hanoi.PegA), hanoi.Move{Disk: 2, From: hanoi.PegB, To: hanoi.PegC}},
		{"larger onto smaller", hanoi.StateOf([]hanoi.Disk{0, 1}, []hanoi.Disk{2}, nil), hanoi.Move{Disk: 1, From: hanoi.PegA, To: hanoi.PegB}},
		{"buried disk", hanoi.NewState(3, hanoi.PegA), hanoi.Move{Disk: 0, From: hanoi.PegA, To: hanoi.PegB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wps, err := x.Expand(tt.state, tt.move)
			assert.ErrorIs(t, err, hanoi.ErrInvalidOperation)
			assert.Empty(t, wps)
		})
	}
}

func TestExpand_NoGripWidthForExtraDisk(t *testing.T) {
	x := NewExpander(DefaultConfig())
	s := hanoi.NewState(4, hanoi.PegA)

	wps, err := x.Expand(s, hanoi.Move{Disk: 3, From: hanoi.PegA, To: hanoi.PegB})
	assert.ErrorIs(t, err, hanoi.ErrInvalidOperation)
	assert.Nil(t, wps)
}

func TestStackHeight_FloorClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FloorHeight = 0.002
	x := NewExpander(cfg)
	s := hanoi.NewState(3, hanoi.PegA)

	assert.InDelta(t, 0.002, x.StackHeight(s, hanoi.PegB, 0), 1e-9)
	assert.InDelta(t, 0.002, x.StackHeight(s, hanoi.PegA, -1), 1e-9)
	assert.InDelta(t, 0.092, x.StackHeight(s, hanoi.PegA, 3), 1e-9)
}

func TestHome(t *testing.T) {
	w := NewExpander(DefaultConfig()).Home()
	assert.Equal(t, PhaseHome, w.Phase)
	assert.Equal(t, hanoi.PegC, w.Peg)
	assert.InDelta(t, 0.336, w.Position.X, 1e-9)
	assert.InDelta(t, 0.200, w.Position.Z, 1e-9)
	assert.InDelta(t, 0.065, w.Gripper, 1e-9)
}
