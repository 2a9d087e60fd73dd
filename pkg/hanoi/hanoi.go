// Package hanoi models the Towers-of-Hanoi puzzle the arm solves: pegs, disks,
// the stack state and the plan of relocations.
package hanoi

import (
	"fmt"
	"strings"
)

// Peg identifies one of the three fixed stacking locations.
type Peg int

// Pegs in arc order around the arm base.
const (
	PegA Peg = iota
	PegB
	PegC
)

// NumPegs is the number of pegs on the rig.
const NumPegs = 3

// AllPegs returns all pegs in arc order.
func AllPegs() []Peg {
	return []Peg{PegA, PegB, PegC}
}

// Valid reports whether p names a peg on the rig.
func (p Peg) Valid() bool {
	return p >= PegA && p <= PegC
}

func (p Peg) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Peg(%d)", int(p))
	}
	return string(rune('A' + int(p)))
}

// ParsePeg parses a peg name ("A", "b", ...).
func ParsePeg(s string) (Peg, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'C' {
		return Peg(s[0] - 'A'), nil
	}
	return 0, fmt.Errorf("unknown peg %q", s)
}

// MarshalText encodes the peg as its letter.
func (p Peg) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown peg %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a peg letter.
func (p *Peg) UnmarshalText(text []byte) error {
	parsed, err := ParsePeg(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Disk identifies a puzzle piece. Disk 0 is the largest and starts at the
// bottom of the tower; higher ids are smaller.
type Disk int

// NumDisks is the number of disks on the rig.
const NumDisks = 3

// Move relocates a single disk from one peg to another.
type Move struct {
	Disk Disk `json:"disk"`
	From Peg  `json:"from"`
	To   Peg  `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("disk %d %s->%s", m.Disk, m.From, m.To)
}
