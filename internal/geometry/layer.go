package geometry

import "fmt"

// Layer groups the surfaces of one detection station inside a volume: an
// ordered set of sensitive module surfaces, the approach surfaces that
// envelope them, and a representing surface used to target the layer as a
// whole from elsewhere in the volume.
type Layer struct {
	name string

	// Representing is intersected when the layer itself is a navigation
	// candidate; reaching it means the trajectory has entered the layer.
	Representing Surface

	// Approaches are the envelope surfaces of the layer (the representing
	// surface is conventionally the first of them).
	Approaches []Surface

	// Sensitives are the module surfaces, in insertion order.
	Sensitives []Surface

	// Array is the optional binned lookup grid over Sensitives.
	Array *SurfaceArray
}

// NewLayer creates a layer with a representing surface and no modules.
func NewLayer(name string, representing Surface) *Layer {
	return &Layer{
		name:         name,
		Representing: representing,
		Approaches:   []Surface{representing},
	}
}

func (l *Layer) Name() string { return l.name }

// Surfaces returns the layer surfaces matching the enabled categories, module
// surfaces first, preserving insertion order within each group. A surface
// enabled by no category is excluded entirely.
func (l *Layer) Surfaces(sensitive, material, passive bool) []Surface {
	var out []Surface
	for _, s := range l.Sensitives {
		if surfaceEnabled(s, sensitive, material, passive) {
			out = append(out, s)
		}
	}
	for _, s := range l.Approaches {
		if surfaceEnabled(s, sensitive, material, passive) {
			out = append(out, s)
		}
	}
	return out
}

// Eligible reports whether the layer offers at least one surface in the
// enabled categories.
func (l *Layer) Eligible(sensitive, material, passive bool) bool {
	return len(l.Surfaces(sensitive, material, passive)) > 0
}

func surfaceEnabled(s Surface, sensitive, material, passive bool) bool {
	switch {
	case s.Sensitive():
		return sensitive
	case s.HasMaterial():
		return material
	default:
		return passive
	}
}

// AssociateSurfaces attaches the sensitive surfaces to the layer and builds
// the binned lookup grid, verifying every surface is reachable through it.
// Called once at geometry assembly; an error here is a construction defect.
func (l *Layer) AssociateSurfaces(surfaces []Surface, phiBins, zBins int, halfZ float64) error {
	l.Sensitives = append(l.Sensitives[:0], surfaces...)
	l.Array = NewSurfaceArray(surfaces, phiBins, zBins, halfZ)
	if err := l.Array.CheckBinning(surfaces); err != nil {
		return fmt.Errorf("layer %s: %w", l.name, err)
	}
	return nil
}
