package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CylinderSurface is a cylinder of a given radius concentric with the z axis,
// bounded to |z| <= HalfZ. It is the workhorse surface of barrel detectors:
// beam pipes, layer approach envelopes and volume boundaries are all cylinders.
type CylinderSurface struct {
	name      string
	Radius    float64
	HalfZ     float64
	sensitive bool
	material  bool
}

// NewCylinderSurface creates a passive cylinder surface.
func NewCylinderSurface(name string, radius, halfZ float64) *CylinderSurface {
	return &CylinderSurface{name: name, Radius: radius, HalfZ: halfZ}
}

// NewMaterialCylinderSurface creates a cylinder surface carrying material.
func NewMaterialCylinderSurface(name string, radius, halfZ float64) *CylinderSurface {
	return &CylinderSurface{name: name, Radius: radius, HalfZ: halfZ, material: true}
}

func (c *CylinderSurface) Name() string      { return c.name }
func (c *CylinderSurface) Center() r3.Vec    { return r3.Vec{} }
func (c *CylinderSurface) Sensitive() bool   { return c.sensitive }
func (c *CylinderSurface) HasMaterial() bool { return c.material }

// Intersect solves (px + t*dx)^2 + (py + t*dy)^2 = R^2 and returns the
// nearest forward solution inside the z bounds.
func (c *CylinderSurface) Intersect(pos, dir r3.Vec, corr Corrector) Intersection {
	pos, dir = applyCorrector(pos, dir, corr)

	a := dir.X*dir.X + dir.Y*dir.Y
	if a < 1e-18 {
		// Trajectory parallel to the cylinder axis.
		return Intersection{}
	}
	b := 2 * (pos.X*dir.X + pos.Y*dir.Y)
	cc := pos.X*pos.X + pos.Y*pos.Y - c.Radius*c.Radius

	disc := b*b - 4*a*cc
	if disc < 0 {
		return Intersection{}
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)

	for _, t := range [2]float64{t1, t2} {
		if t < minForwardPath {
			continue
		}
		hit := PointAt(pos, dir, t)
		if math.Abs(hit.Z) > c.HalfZ {
			continue
		}
		return Intersection{Valid: true, PathLength: t, Position: hit}
	}
	return Intersection{}
}

func (c *CylinderSurface) IsOnSurface(pos r3.Vec, tol float64) bool {
	return math.Abs(Perp(pos)-c.Radius) <= tol && math.Abs(pos.Z) <= c.HalfZ+tol
}
