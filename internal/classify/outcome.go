// Package classify matches normalized calls against indexed truth variants
// and assigns each side a terminal outcome.
package classify

// Outcome is the classification of a truth variant or a call.
//
// Truth variants end Correct, Missing or Collision. Calls end Correct,
// False or Collision. Unmatched only exists while classification runs.
type Outcome int

const (
	Unmatched Outcome = iota
	Correct
	Missing
	False
	Collision
)

func (o Outcome) String() string {
	switch o {
	case Unmatched:
		return "unmatched"
	case Correct:
		return "correct"
	case Missing:
		return "missing"
	case False:
		return "false"
	case Collision:
		return "collision"
	}
	return "invalid"
}

// Counts tallies outcomes on both sides.
type Counts struct {
	TruthCorrect   int
	Missing        int
	TruthCollision int
	CallCorrect    int
	False          int
	CallCollision  int
}

// Truths returns the number of classified truth variants.
func (c Counts) Truths() int {
	return c.TruthCorrect + c.Missing + c.TruthCollision
}

// Calls returns the number of classified (accepted) calls.
func (c Counts) Calls() int {
	return c.CallCorrect + c.False + c.CallCollision
}
