package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CylindricalConfig describes the reference barrel detector: a beam-pipe
// volume with one passive material cylinder, surrounded by a barrel volume of
// sensitive layers built from phi rings of rectangular modules.
type CylindricalConfig struct {
	HalfZ          float64   // detector half-length in z
	BeamPipeRadius float64   // radius of the material beam pipe cylinder
	BeamPipeRMax   float64   // outer radius of the beam-pipe volume
	BarrelRMax     float64   // outer radius of the barrel volume
	LayerRadii     []float64 // module radii of the barrel layers, inside-out
	ModulesPerLayer []int    // phi ring occupancy per layer
	ApproachOffset float64   // radial offset of the layer approach cylinders
	ModuleHalfZ    float64   // module half-length in z
	ModuleOverlap  float64   // phi overlap factor for module half-width
}

// DefaultCylindricalConfig returns the reference detector dimensions (mm).
func DefaultCylindricalConfig() CylindricalConfig {
	return CylindricalConfig{
		HalfZ:           400,
		BeamPipeRadius:  19,
		BeamPipeRMax:    27,
		BarrelRMax:      200,
		LayerRadii:      []float64{32, 72, 116, 172},
		ModulesPerLayer: []int{8, 16, 24, 32},
		ApproachOffset:  3,
		ModuleHalfZ:     390,
		ModuleOverlap:   1.1,
	}
}

// BuildCylindricalDetector assembles the reference detector. Every barrel
// layer is associated to a binned surface array, so a malformed module
// arrangement fails here rather than during navigation.
func BuildCylindricalDetector(cfg CylindricalConfig) (*TrackingGeometry, error) {
	if len(cfg.LayerRadii) != len(cfg.ModulesPerLayer) {
		return nil, fmt.Errorf("layer radii (%d) and module counts (%d) must match",
			len(cfg.LayerRadii), len(cfg.ModulesPerLayer))
	}

	// Beam-pipe volume: a single passive material cylinder.
	beamPipe := NewVolume("beam_pipe_volume", 0, cfg.BeamPipeRMax, cfg.HalfZ)
	pipeSurf := NewMaterialCylinderSurface("beam_pipe", cfg.BeamPipeRadius, cfg.HalfZ)
	beamPipe.Layers = []*Layer{NewLayer("beam_pipe_layer", pipeSurf)}

	// Barrel volume with the sensitive layers.
	barrel := NewVolume("barrel_volume", cfg.BeamPipeRMax, cfg.BarrelRMax, cfg.HalfZ)
	for i, radius := range cfg.LayerRadii {
		layer, err := buildBarrelLayer(cfg, i, radius, cfg.ModulesPerLayer[i])
		if err != nil {
			return nil, err
		}
		barrel.Layers = append(barrel.Layers, layer)
	}

	// Boundary surfaces. The cylinder between the two volumes is shared.
	shared := NewCylinderSurface("boundary_r27", cfg.BeamPipeRMax, cfg.HalfZ)
	outer := NewCylinderSurface("boundary_outer", cfg.BarrelRMax, cfg.HalfZ)
	beamPipe.Boundaries = []BoundarySurface{
		{Surface: shared, Attached: barrel},
		{Surface: NewDiscSurface("beam_pipe_disc_neg", -cfg.HalfZ, 0, cfg.BeamPipeRMax)},
		{Surface: NewDiscSurface("beam_pipe_disc_pos", cfg.HalfZ, 0, cfg.BeamPipeRMax)},
	}
	barrel.Boundaries = []BoundarySurface{
		{Surface: shared, Attached: beamPipe},
		{Surface: outer},
		{Surface: NewDiscSurface("barrel_disc_neg", -cfg.HalfZ, cfg.BeamPipeRMax, cfg.BarrelRMax)},
		{Surface: NewDiscSurface("barrel_disc_pos", cfg.HalfZ, cfg.BeamPipeRMax, cfg.BarrelRMax)},
	}

	return NewTrackingGeometry("cylindrical", []*Volume{beamPipe, barrel})
}

// buildBarrelLayer creates one barrel layer: a phi ring of tangent modules
// between two approach cylinders.
func buildBarrelLayer(cfg CylindricalConfig, idx int, radius float64, modules int) (*Layer, error) {
	if modules < 2 {
		return nil, fmt.Errorf("layer %d: need at least 2 modules, got %d", idx, modules)
	}

	inner := NewCylinderSurface(fmt.Sprintf("layer%d_approach_inner", idx),
		radius-cfg.ApproachOffset, cfg.HalfZ)
	outer := NewCylinderSurface(fmt.Sprintf("layer%d_approach_outer", idx),
		radius+cfg.ApproachOffset, cfg.HalfZ)

	layer := NewLayer(fmt.Sprintf("barrel_layer%d", idx), inner)
	layer.Approaches = append(layer.Approaches, outer)

	halfU := cfg.ModuleOverlap * radius * math.Tan(math.Pi/float64(modules))
	surfaces := make([]Surface, 0, modules)
	for m := 0; m < modules; m++ {
		phi := 2 * math.Pi * float64(m) / float64(modules)
		normal := r3.Vec{X: math.Cos(phi), Y: math.Sin(phi)}
		center := r3.Scale(radius, normal)
		uAxis := r3.Vec{X: -math.Sin(phi), Y: math.Cos(phi)}
		surfaces = append(surfaces, NewSensitiveModule(
			fmt.Sprintf("layer%d_mod%d", idx, m),
			center, normal, uAxis, halfU, cfg.ModuleHalfZ))
	}
	if err := layer.AssociateSurfaces(surfaces, modules, 1, cfg.HalfZ); err != nil {
		return nil, err
	}
	return layer, nil
}
