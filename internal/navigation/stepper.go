package navigation

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/geometry"
)

// Direction is the traversal sense along the trajectory.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Stepper is the state the navigator reads from, and proposes step bounds to,
// the external integrator. The navigator never moves the trajectory; it only
// inspects position and direction and tightens the step-size bound.
type Stepper interface {
	// Position returns the current trajectory position.
	Position() r3.Vec

	// Direction returns the unit tangent of the trajectory.
	Direction() r3.Vec

	// NavDirection returns the active traversal sense.
	NavDirection() Direction

	// PathAccumulated returns the signed path length integrated so far.
	PathAccumulated() float64

	// StepSize returns the mutable step-size bound holder.
	StepSize() *ConstrainedStep

	// Corrector returns the optional trajectory-curvature correction for
	// intersection queries, or nil for straight-line stepping.
	Corrector() geometry.Corrector
}

// LineStepper is a straight-line integrator: each Advance moves the
// trajectory by the current effective step bound along the (direction-signed)
// tangent. It is the integration model used by the simulation driver and the
// package tests.
type LineStepper struct {
	Pos    r3.Vec
	Dir    r3.Vec
	NavDir Direction
	Path   float64
	Step   *ConstrainedStep
}

// NewLineStepper creates a straight-line stepper with a user step bound.
func NewLineStepper(pos, dir r3.Vec, navDir Direction, maxStep float64) *LineStepper {
	return &LineStepper{
		Pos:    pos,
		Dir:    r3.Unit(dir),
		NavDir: navDir,
		Step:   NewConstrainedStep(maxStep),
	}
}

func (s *LineStepper) Position() r3.Vec              { return s.Pos }
func (s *LineStepper) Direction() r3.Vec             { return s.Dir }
func (s *LineStepper) NavDirection() Direction       { return s.NavDir }
func (s *LineStepper) PathAccumulated() float64      { return s.Path }
func (s *LineStepper) StepSize() *ConstrainedStep    { return s.Step }
func (s *LineStepper) Corrector() geometry.Corrector { return nil }

// Advance moves the trajectory by the effective step bound and returns the
// step length taken.
func (s *LineStepper) Advance() float64 {
	step := s.Step.Value()
	sign := float64(s.NavDir)
	s.Pos = geometry.PointAt(s.Pos, r3.Scale(sign, s.Dir), step)
	s.Path += sign * step
	return step
}
