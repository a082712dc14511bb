package main

import (
	"github.com/pthm-cable/murmur/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the flocking distances, plus the speed limit when
// withSpeed is set.
func NewParamVector(withSpeed bool) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "separation", Path: "flock.separation_distance", Min: 0, Max: 100, Default: 20},
			{Name: "alignment", Path: "flock.alignment_distance", Min: 0, Max: 100, Default: 30},
			{Name: "cohesion", Path: "flock.cohesion_distance", Min: 0, Max: 100, Default: 20},
		},
	}
	if withSpeed {
		pv.Specs = append(pv.Specs, ParamSpec{Name: "speed_limit", Path: "flock.speed_limit", Min: 1, Max: 20, Default: 5})
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg and refreshes the derived
// zone radius.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "separation":
			cfg.Flock.SeparationDistance = clamped[i]
		case "alignment":
			cfg.Flock.AlignmentDistance = clamped[i]
		case "cohesion":
			cfg.Flock.CohesionDistance = clamped[i]
		case "speed_limit":
			cfg.Flock.SpeedLimit = clamped[i]
		}
	}
	cfg.ComputeDerived()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "separation":
			out[i] = cfg.Flock.SeparationDistance
		case "alignment":
			out[i] = cfg.Flock.AlignmentDistance
		case "cohesion":
			out[i] = cfg.Flock.CohesionDistance
		case "speed_limit":
			out[i] = cfg.Flock.SpeedLimit
		}
	}
	return out
}
