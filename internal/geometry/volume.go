package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoundarySurface is a surface through which a volume connects to a
// neighbour. Attached is the volume on the other side; nil means the
// trajectory leaves the modeled geometry there. The underlying Surface is
// shared between the two adjacent volumes' boundary sets.
type BoundarySurface struct {
	Surface  Surface
	Attached *Volume
}

// Volume is a cylindrical shell of the detector owning an ordered sequence of
// layers and a fixed set of boundary surfaces. Volumes do not overlap.
type Volume struct {
	name string

	RMin  float64
	RMax  float64
	HalfZ float64

	// Layers are ordered inside-out along increasing radius.
	Layers []*Layer

	// Boundaries is the fixed set of surfaces to neighbouring volumes.
	Boundaries []BoundarySurface
}

// NewVolume creates a volume with cylindrical shell bounds.
func NewVolume(name string, rMin, rMax, halfZ float64) *Volume {
	return &Volume{name: name, RMin: rMin, RMax: rMax, HalfZ: halfZ}
}

func (v *Volume) Name() string { return v.name }

// Contains reports whether pos lies inside the volume bounds. Positions on
// the boundary count as inside so a trajectory sitting on a boundary surface
// still resolves to a volume.
func (v *Volume) Contains(pos r3.Vec) bool {
	if math.Abs(pos.Z) > v.HalfZ {
		return false
	}
	r := Perp(pos)
	return r >= v.RMin && r <= v.RMax
}
