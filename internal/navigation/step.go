package navigation

import (
	"fmt"
	"math"
)

// StepConstraint identifies who imposed a bound on the next integration step.
type StepConstraint int

const (
	// ConstraintAccuracy is the integrator's own error-control bound.
	ConstraintAccuracy StepConstraint = iota
	// ConstraintNavigator is the bound proposed by navigation targets.
	ConstraintNavigator
	// ConstraintAborter is a bound imposed by an external abort condition.
	ConstraintAborter
	// ConstraintUser is the caller-configured maximum step.
	ConstraintUser

	numConstraints
)

func (c StepConstraint) String() string {
	switch c {
	case ConstraintAccuracy:
		return "accuracy"
	case ConstraintNavigator:
		return "navigator"
	case ConstraintAborter:
		return "aborter"
	case ConstraintUser:
		return "user"
	}
	return "unknown"
}

// ConstrainedStep is the integrator-owned upper bound on the next step
// length. Each constraint kind holds its own value; the effective step is the
// tightest of them. Values are magnitudes; the navigation direction applies
// the sign when the trajectory is advanced.
type ConstrainedStep struct {
	values [numConstraints]float64
}

// NewConstrainedStep creates a step holder with the user bound set and all
// other constraints released.
func NewConstrainedStep(user float64) *ConstrainedStep {
	s := &ConstrainedStep{}
	for i := range s.values {
		s.values[i] = math.Inf(1)
	}
	s.values[ConstraintUser] = math.Abs(user)
	return s
}

// Set overwrites the bound for the given constraint kind.
func (s *ConstrainedStep) Set(value float64, kind StepConstraint) {
	s.values[kind] = math.Abs(value)
}

// Update tightens the bound for the given constraint kind; a looser value is
// ignored.
func (s *ConstrainedStep) Update(value float64, kind StepConstraint) {
	v := math.Abs(value)
	if v < s.values[kind] {
		s.values[kind] = v
	}
}

// Release removes the bound for the given constraint kind.
func (s *ConstrainedStep) Release(kind StepConstraint) {
	s.values[kind] = math.Inf(1)
}

// Value returns the effective step length: the tightest bound present.
func (s *ConstrainedStep) Value() float64 {
	min := s.values[0]
	for _, v := range s.values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Constraint returns the current bound for one constraint kind.
func (s *ConstrainedStep) Constraint(kind StepConstraint) float64 {
	return s.values[kind]
}

func (s *ConstrainedStep) String() string {
	return fmt.Sprintf("step(acc=%g nav=%g abort=%g user=%g)",
		s.values[ConstraintAccuracy], s.values[ConstraintNavigator],
		s.values[ConstraintAborter], s.values[ConstraintUser])
}
