package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// TrackingGeometry is the fully constructed, immutable detector model. It
// outlives every navigation; nothing ever creates or destroys its nodes after
// construction, so cross-references between volumes, layers and surfaces are
// plain borrowed pointers.
type TrackingGeometry struct {
	name string

	// Volumes are ordered inside-out; they do not overlap except on shared
	// boundary surfaces.
	Volumes []*Volume
}

// NewTrackingGeometry assembles a geometry from its volumes, validating the
// surface binning of every layer that carries one.
func NewTrackingGeometry(name string, volumes []*Volume) (*TrackingGeometry, error) {
	for _, v := range volumes {
		for _, l := range v.Layers {
			if l.Array == nil {
				continue
			}
			if err := l.Array.CheckBinning(l.Sensitives); err != nil {
				return nil, fmt.Errorf("volume %s, layer %s: %w", v.Name(), l.Name(), err)
			}
		}
	}
	return &TrackingGeometry{name: name, Volumes: volumes}, nil
}

func (g *TrackingGeometry) Name() string { return g.name }

// FindVolume returns the volume containing pos, or nil when pos is outside
// the modeled geometry. On a shared boundary the innermost volume wins.
func (g *TrackingGeometry) FindVolume(pos r3.Vec) *Volume {
	for _, v := range g.Volumes {
		if v.Contains(pos) {
			return v
		}
	}
	return nil
}
