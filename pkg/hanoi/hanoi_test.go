package hanoi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rigSequence is the order of relocations the physical demonstration performs
// for one round trip: the tower goes A->C, then back C->A.
var rigSequence = []Move{
	{2, PegA, PegC}, {1, PegA, PegB}, {2, PegC, PegB}, {0, PegA, PegC},
	{2, PegB, PegA}, {1, PegB, PegC}, {2, PegA, PegC},
	{2, PegC, PegA}, {1, PegC, PegB}, {2, PegA, PegB}, {0, PegC, PegA},
	{2, PegB, PegC}, {1, PegB, PegA}, {2, PegC, PegA},
}

func TestSolve_ThreeDisks(t *testing.T) {
	start := NewState(3, PegA)
	plan := Solve(3, PegA, PegC, PegB)

	require.Len(t, plan, 7)

	end, err := plan.Validate(start)
	require.NoError(t, err)
	assert.Equal(t, []Disk{0, 1, 2}, end.Disks(PegC))
	assert.Empty(t, end.Disks(PegA))
	assert.Empty(t, end.Disks(PegB))

	moved := make(map[Disk]bool)
	for _, m := range plan {
		moved[m.Disk] = true
	}
	assert.Len(t, moved, 3)
}

func TestSolve_MatchesRigSequence(t *testing.T) {
	there := Solve(3, PegA, PegC, PegB)
	back := Solve(3, PegC, PegA, PegB)

	got := append(append(Plan{}, there...), back...)
	assert.Equal(t, Plan(rigSequence), got)
}

func TestSolve_AllStartsAndTargets(t *testing.T) {
	for _, from := range AllPegs() {
		for _, to := range AllPegs() {
			if from == to {
				continue
			}
			via, ok := Spare(from, to)
			require.True(t, ok)
			plan := Solve(NumDisks, from, to, via)
			end, err := plan.Validate(NewState(NumDisks, from))
			require.NoError(t, err, "%s->%s", from, to)
			assert.Equal(t, []Disk{0, 1, 2}, end.Disks(to), "%s->%s", from, to)
			assert.Len(t, plan, 7)
		}
	}
}

func TestSolve_OrderingInvariantHoldsAfterEveryMove(t *testing.T) {
	s := NewState(3, PegA)
	for _, m := range Solve(3, PegA, PegC, PegB) {
		require.NoError(t, s.Apply(m))
		require.NoError(t, s.Validate(), "after %s", m)
		assert.Equal(t, 3, s.Total())
	}
}

func TestSolve_Sizes(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 1, 2: 3, 4: 15} {
		assert.Len(t, Solve(n, PegA, PegC, PegB), want, "n=%d", n)
	}
}

func TestState_Check(t *testing.T) {
	tests := []struct {
		name  string
		state State
		move  Move
		ok    bool
	}{
		{"legal onto empty", NewState(3, PegA), Move{2, PegA, PegB}, true},
		{"legal onto larger", StateOf([]Disk{0, 1}, []Disk{2}, nil), Move{2, PegB, PegA}, true},
		{"empty source", NewState(3, PegA), Move{2, PegB, PegC}, false},
		{"not on top", NewState(3, PegA), Move{0, PegA, PegC}, false},
		{"onto smaller", StateOf([]Disk{0}, []Disk{2}, []Disk{1}), Move{0, PegA, PegB}, false},
		{"same peg", NewState(3, PegA), Move{2, PegA, PegA}, false},
		{"unknown peg", NewState(3, PegA), Move{2, PegA, Peg(7)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Check(tt.move)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOperation))
			var opErr *InvalidOperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, tt.move, opErr.Move)
		})
	}
}

func TestState_ApplyLeavesStateOnError(t *testing.T) {
	s := NewState(3, PegA)
	before := s.Clone()

	err := s.Apply(Move{1, PegA, PegB})
	require.ErrorIs(t, err, ErrInvalidOperation)
	assert.True(t, s.Equal(before))
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := NewState(3, PegA)
	c := s.Clone()
	require.NoError(t, c.Apply(Move{2, PegA, PegB}))

	assert.Equal(t, 3, s.Height(PegA))
	assert.Equal(t, 2, c.Height(PegA))
}

func TestState_Tower(t *testing.T) {
	p, ok := NewState(3, PegC).Tower()
	assert.True(t, ok)
	assert.Equal(t, PegC, p)

	_, ok = StateOf([]Disk{0}, []Disk{1, 2}, nil).Tower()
	assert.False(t, ok)
}

func TestState_Validate(t *testing.T) {
	assert.NoError(t, NewState(3, PegB).Validate())
	assert.Error(t, StateOf([]Disk{1, 0}, []Disk{2}, nil).Validate())
	assert.Error(t, StateOf([]Disk{0, 1}, []Disk{1}, nil).Validate())
	assert.Error(t, StateOf([]Disk{0}, []Disk{2}, nil).Validate())
}

func TestPlan_ValidateReportsStep(t *testing.T) {
	plan := Plan{{2, PegA, PegC}, {1, PegA, PegC}}
	_, err := plan.Validate(NewState(3, PegA))
	require.ErrorIs(t, err, ErrInvalidOperation)
	assert.Contains(t, err.Error(), "step 2")
}

func TestParsePeg(t *testing.T) {
	for in, want := range map[string]Peg{"A": PegA, "b": PegB, " c ": PegC} {
		got, err := ParsePeg(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePeg("D")
	assert.Error(t, err)

	var p Peg
	require.NoError(t, p.UnmarshalText([]byte("C")))
	assert.Equal(t, PegC, p)
	assert.Equal(t, "C", p.String())
}

func TestSpare(t *testing.T) {
	for _, tc := range []struct {
		a, b Peg
		want Peg
		ok   bool
	}{
		{PegA, PegC, PegB, true},
		{PegC, PegB, PegA, true},
		{PegB, PegA, PegC, true},
		{PegA, PegA, 0, false},
		{PegB, PegB, 0, false},
		{PegA, Peg(NumPegs), 0, false},
	} {
		got, ok := Spare(tc.a, tc.b)
		assert.Equal(t, tc.ok, ok, "%s %s", tc.a, tc.b)
		assert.Equal(t, tc.want, got, "%s %s", tc.a, tc.b)
	}
}
