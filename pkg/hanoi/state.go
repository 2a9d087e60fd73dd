package hanoi

import (
	"fmt"
	"slices"
	"strings"
)

// State holds the disks resting on each peg, bottom to top.
type State struct {
	pegs [NumPegs][]Disk
}

// NewState returns a tower of n disks on peg p, largest at the bottom.
func NewState(n int, p Peg) State {
	var s State
	if !p.Valid() {
		return s
	}
	for d := 0; d < n; d++ {
		s.pegs[p] = append(s.pegs[p], Disk(d))
	}
	return s
}

// StateOf builds a state from explicit stacks. It does not check ordering;
// use Validate for that.
func StateOf(a, b, c []Disk) State {
	var s State
	s.pegs[PegA] = slices.Clone(a)
	s.pegs[PegB] = slices.Clone(b)
	s.pegs[PegC] = slices.Clone(c)
	return s
}

// Disks returns a copy of the stack on p, bottom to top.
func (s State) Disks(p Peg) []Disk {
	if !p.Valid() {
		return nil
	}
	return slices.Clone(s.pegs[p])
}

// Height returns the number of disks resting on p.
func (s State) Height(p Peg) int {
	if !p.Valid() {
		return 0
	}
	return len(s.pegs[p])
}

// Top returns the top disk on p.
func (s State) Top(p Peg) (Disk, bool) {
	if s.Height(p) == 0 {
		return 0, false
	}
	stack := s.pegs[p]
	return stack[len(stack)-1], true
}

// Total returns the number of disks on all pegs.
func (s State) Total() int {
	n := 0
	for _, stack := range s.pegs {
		n += len(stack)
	}
	return n
}

// Tower returns the peg holding every disk, if there is one.
func (s State) Tower() (Peg, bool) {
	total := s.Total()
	for _, p := range AllPegs() {
		if total > 0 && len(s.pegs[p]) == total {
			return p, true
		}
	}
	return 0, false
}

// Clone returns an independent copy.
func (s State) Clone() State {
	var c State
	for i, stack := range s.pegs {
		c.pegs[i] = slices.Clone(stack)
	}
	return c
}

// Equal reports whether both states hold the same stacks.
func (s State) Equal(o State) bool {
	for i := range s.pegs {
		if !slices.Equal(s.pegs[i], o.pegs[i]) {
			return false
		}
	}
	return true
}

// Validate checks that every disk appears exactly once and that ids strictly
// increase bottom to top on every peg.
func (s State) Validate() error {
	seen := make(map[Disk]bool)
	for _, p := range AllPegs() {
		for i, d := range s.pegs[p] {
			if seen[d] {
				return fmt.Errorf("disk %d appears twice", d)
			}
			seen[d] = true
			if i > 0 && s.pegs[p][i-1] >= d {
				return fmt.Errorf("peg %s: disk %d rests on disk %d", p, d, s.pegs[p][i-1])
			}
		}
	}
	for d := 0; d < len(seen); d++ {
		if !seen[Disk(d)] {
			return fmt.Errorf("disk %d missing", d)
		}
	}
	return nil
}

// Check reports whether m can be applied to s without breaking the puzzle
// rules. A nil result means Apply will succeed.
func (s State) Check(m Move) error {
	if !m.From.Valid() || !m.To.Valid() {
		return invalid(m, "unknown peg")
	}
	if m.From == m.To {
		return invalid(m, "source and destination are the same peg")
	}
	top, ok := s.Top(m.From)
	if !ok {
		return invalid(m, "source peg %s is empty", m.From)
	}
	if top != m.Disk {
		return invalid(m, "disk %d is on top of peg %s", top, m.From)
	}
	if under, ok := s.Top(m.To); ok && under > m.Disk {
		return invalid(m, "disk %d would rest on smaller disk %d", m.Disk, under)
	}
	return nil
}

// Apply pops the moved disk from its source peg and pushes it onto the
// destination. s is left unchanged on error.
func (s *State) Apply(m Move) error {
	if err := s.Check(m); err != nil {
		return err
	}
	from := s.pegs[m.From]
	s.pegs[m.From] = slices.Clone(from[:len(from)-1])
	s.pegs[m.To] = append(slices.Clone(s.pegs[m.To]), m.Disk)
	return nil
}

func (s State) String() string {
	parts := make([]string, 0, NumPegs)
	for _, p := range AllPegs() {
		disks := make([]string, len(s.pegs[p]))
		for i, d := range s.pegs[p] {
			disks[i] = fmt.Sprint(int(d))
		}
		parts = append(parts, fmt.Sprintf("%s:[%s]", p, strings.Join(disks, " ")))
	}
	return strings.Join(parts, " ")
}
