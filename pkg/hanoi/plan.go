package hanoi

import "fmt"

// Plan is an ordered list of relocations.
type Plan []Move

// Solve returns the minimal plan moving an n-disk tower from one peg to
// another using the third as spare. The plan has 2^n - 1 moves.
func Solve(n int, from, to, via Peg) Plan {
	plan := make(Plan, 0, (1<<max(n, 0))-1)
	var rec func(k int, from, to, via Peg)
	rec = func(k int, from, to, via Peg) {
		if k <= 0 {
			return
		}
		rec(k-1, from, via, to)
		// disk ids count from the bottom, so the k-th smallest of n is n-k
		plan = append(plan, Move{Disk: Disk(n - k), From: from, To: to})
		rec(k-1, via, to, from)
	}
	rec(n, from, to, via)
	return plan
}

// Spare returns the peg that is neither a nor b. It reports false when a and
// b are the same peg or either is out of range.
func Spare(a, b Peg) (Peg, bool) {
	if a == b || !a.Valid() || !b.Valid() {
		return 0, false
	}
	return Peg(NumPegs - int(a) - int(b)), true
}

// Validate replays the plan against start and returns the final state. The
// first illegal move aborts the replay with an InvalidOperationError.
func (p Plan) Validate(start State) (State, error) {
	s := start.Clone()
	for i, m := range p {
		if err := s.Apply(m); err != nil {
			return start, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return s, nil
}
