package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DiscSurface is a planar ring at a fixed z, bounded radially to
// [RMin, RMax]. Volumes are closed off in z by disc boundaries.
type DiscSurface struct {
	name      string
	Z         float64
	RMin      float64
	RMax      float64
	sensitive bool
	material  bool
}

// NewDiscSurface creates a passive disc surface at z.
func NewDiscSurface(name string, z, rMin, rMax float64) *DiscSurface {
	return &DiscSurface{name: name, Z: z, RMin: rMin, RMax: rMax}
}

func (d *DiscSurface) Name() string      { return d.name }
func (d *DiscSurface) Center() r3.Vec    { return r3.Vec{Z: d.Z} }
func (d *DiscSurface) Sensitive() bool   { return d.sensitive }
func (d *DiscSurface) HasMaterial() bool { return d.material }

func (d *DiscSurface) Intersect(pos, dir r3.Vec, corr Corrector) Intersection {
	pos, dir = applyCorrector(pos, dir, corr)

	if math.Abs(dir.Z) < 1e-18 {
		return Intersection{}
	}
	t := (d.Z - pos.Z) / dir.Z
	if t < minForwardPath {
		return Intersection{}
	}
	hit := PointAt(pos, dir, t)
	r := Perp(hit)
	if r < d.RMin || r > d.RMax {
		return Intersection{}
	}
	return Intersection{Valid: true, PathLength: t, Position: hit}
}

func (d *DiscSurface) IsOnSurface(pos r3.Vec, tol float64) bool {
	if math.Abs(pos.Z-d.Z) > tol {
		return false
	}
	r := Perp(pos)
	return r >= d.RMin-tol && r <= d.RMax+tol
}
