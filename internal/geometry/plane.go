package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PlaneSurface is a bounded rectangular plane, used for sensitive detection
// modules. The local frame is spanned by the unit axes U and V; Normal is
// U x V. Bounds are |u| <= HalfU, |v| <= HalfV around the center.
type PlaneSurface struct {
	name      string
	center    r3.Vec
	Normal    r3.Vec
	U         r3.Vec
	V         r3.Vec
	HalfU     float64
	HalfV     float64
	sensitive bool
	material  bool
}

// NewSensitiveModule creates a sensitive, material-bearing rectangular module.
// normal and uAxis should be unit vectors; the v axis is derived from them.
func NewSensitiveModule(name string, center, normal, uAxis r3.Vec, halfU, halfV float64) *PlaneSurface {
	n := r3.Unit(normal)
	u := r3.Unit(uAxis)
	return &PlaneSurface{
		name:      name,
		center:    center,
		Normal:    n,
		U:         u,
		V:         r3.Cross(n, u),
		HalfU:     halfU,
		HalfV:     halfV,
		sensitive: true,
		material:  true,
	}
}

func (p *PlaneSurface) Name() string      { return p.name }
func (p *PlaneSurface) Center() r3.Vec    { return p.center }
func (p *PlaneSurface) Sensitive() bool   { return p.sensitive }
func (p *PlaneSurface) HasMaterial() bool { return p.material }

func (p *PlaneSurface) Intersect(pos, dir r3.Vec, corr Corrector) Intersection {
	pos, dir = applyCorrector(pos, dir, corr)

	denom := r3.Dot(dir, p.Normal)
	if math.Abs(denom) < 1e-18 {
		return Intersection{}
	}
	t := r3.Dot(r3.Sub(p.center, pos), p.Normal) / denom
	if t < minForwardPath {
		return Intersection{}
	}
	hit := PointAt(pos, dir, t)
	if !p.insideBounds(hit, 0) {
		return Intersection{}
	}
	return Intersection{Valid: true, PathLength: t, Position: hit}
}

func (p *PlaneSurface) IsOnSurface(pos r3.Vec, tol float64) bool {
	if math.Abs(r3.Dot(r3.Sub(pos, p.center), p.Normal)) > tol {
		return false
	}
	return p.insideBounds(pos, tol)
}

func (p *PlaneSurface) insideBounds(pos r3.Vec, tol float64) bool {
	local := r3.Sub(pos, p.center)
	u := r3.Dot(local, p.U)
	v := r3.Dot(local, p.V)
	return math.Abs(u) <= p.HalfU+tol && math.Abs(v) <= p.HalfV+tol
}
