package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/tracknav/internal/navigation"
	"github.com/banshee-data/tracknav/internal/units"
)

// DefaultConfigPath is the path to the canonical navigation defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/nav.defaults.json"

// Defaults for fields omitted from the JSON file.
const (
	defaultMaxSteps  = 1000
	defaultStepCapMM = 50.0
)

// NavConfig represents the tunable navigation parameters. All fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// methods provide fallback defaults for unset fields.
type NavConfig struct {
	// Candidate resolution flags
	ResolveSensitive *bool `json:"resolve_sensitive,omitempty"`
	ResolveMaterial  *bool `json:"resolve_material,omitempty"`
	ResolvePassive   *bool `json:"resolve_passive,omitempty"`

	// On-surface tolerance in millimeters
	OnSurfaceToleranceMM *float64 `json:"on_surface_tolerance_mm,omitempty"`

	// Propagation loop params
	MaxSteps  *int     `json:"max_steps,omitempty"`
	StepCapMM *float64 `json:"step_cap_mm,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyNavConfig returns a NavConfig with all fields set to nil.
// Use LoadNavConfig to load actual values from a file.
func EmptyNavConfig() *NavConfig {
	return &NavConfig{}
}

// LoadNavConfig loads a NavConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadNavConfig(path string) (*NavConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyNavConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *NavConfig) Validate() error {
	if c.OnSurfaceToleranceMM != nil {
		if *c.OnSurfaceToleranceMM <= 0 {
			return fmt.Errorf("on_surface_tolerance_mm must be positive, got %f", *c.OnSurfaceToleranceMM)
		}
	}
	if c.MaxSteps != nil {
		if *c.MaxSteps <= 0 {
			return fmt.Errorf("max_steps must be positive, got %d", *c.MaxSteps)
		}
	}
	if c.StepCapMM != nil {
		if *c.StepCapMM <= 0 {
			return fmt.Errorf("step_cap_mm must be positive, got %f", *c.StepCapMM)
		}
	}
	return nil
}

// GetResolveSensitive returns the resolve_sensitive value or the default.
func (c *NavConfig) GetResolveSensitive() bool {
	if c.ResolveSensitive != nil {
		return *c.ResolveSensitive
	}
	return true
}

// GetResolveMaterial returns the resolve_material value or the default.
func (c *NavConfig) GetResolveMaterial() bool {
	if c.ResolveMaterial != nil {
		return *c.ResolveMaterial
	}
	return true
}

// GetResolvePassive returns the resolve_passive value or the default.
func (c *NavConfig) GetResolvePassive() bool {
	if c.ResolvePassive != nil {
		return *c.ResolvePassive
	}
	return false
}

// GetOnSurfaceTolerance returns the on-surface tolerance in millimeters
// or the default.
func (c *NavConfig) GetOnSurfaceTolerance() float64 {
	if c.OnSurfaceToleranceMM != nil {
		return *c.OnSurfaceToleranceMM
	}
	return units.OnSurfaceTolerance
}

// GetMaxSteps returns the max_steps value or the default.
func (c *NavConfig) GetMaxSteps() int {
	if c.MaxSteps != nil {
		return *c.MaxSteps
	}
	return defaultMaxSteps
}

// GetStepCap returns the step_cap_mm value or the default.
func (c *NavConfig) GetStepCap() float64 {
	if c.StepCapMM != nil {
		return *c.StepCapMM
	}
	return defaultStepCapMM
}

// Apply copies the resolution flags and tolerance onto a Navigator.
func (c *NavConfig) Apply(nav *navigation.Navigator) {
	nav.ResolveSensitive = c.GetResolveSensitive()
	nav.ResolveMaterial = c.GetResolveMaterial()
	nav.ResolvePassive = c.GetResolvePassive()
	nav.Tolerance = c.GetOnSurfaceTolerance()
}
