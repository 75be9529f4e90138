// Package regionconfig holds the per-region, per-validation-window model
// configuration the contract exposes as operator-tunable knobs (§6).
// Adapted from the teacher's pkg/profile environment-tier settings:
// the same immutable-record-with-defaults shape, repurposed from
// cluster-sizing percentiles to forecast-model hyperparameters.
package regionconfig

import (
	"dengue-forecast/pkg/odecore"
	"dengue-forecast/pkg/sarimax"
)

// ValidationWindow names one of the three retrospective evaluation windows.
type ValidationWindow string

const (
	T1 ValidationWindow = "T1"
	T2 ValidationWindow = "T2"
	T3 ValidationWindow = "T3"
)

// SarimaxOverride is a representative per-window SARIMAX order override,
// since some regions need a richer seasonal order than the window default.
type SarimaxOverride struct {
	Region string
	Window ValidationWindow
	Order  sarimax.Order
}

// ModelConfig bundles every configurable knob for one region/window run.
type ModelConfig struct {
	Region          string
	Window          ValidationWindow
	ForecastHorizon int
	// SarimaxHorizon is the full forecast length SARIMAX runs from the
	// EW25 origin before the 52-week EW41..EW40 season is sliced out of
	// it (§4.7: horizon 67, burn-in weeks 1..15, reported weeks 16..67).
	SarimaxHorizon int
	// ArpSimHorizon is the full Monte-Carlo simulation length from the
	// EW25 origin (§4.8: 79 weeks), of which the same 15-week burn-in
	// plus the 52-week EW41..EW40 season is cropped out for reporting.
	ArpSimHorizon  int
	NRealCalibrate int
	NRealForecast  int
	ClimateMode    odecore.ClimateMode
	Lags           int
	SarimaxOrder   sarimax.Order
	ArOrder        int
	Seed           int64
	Misfit         string // "mse" or "mean_variance"
}

// DefaultConfig returns the contract's baseline configuration for a
// region/window pair, before any representative override is applied.
func DefaultConfig(region string, window ValidationWindow, seed int64) ModelConfig {
	return ModelConfig{
		Region:          region,
		Window:          window,
		ForecastHorizon: 52,
		SarimaxHorizon:  67,
		ArpSimHorizon:   79,
		NRealCalibrate:  32,
		NRealForecast:   1024,
		ClimateMode:     odecore.ModeTemperaturePrecip,
		Lags:            4,
		SarimaxOrder:    sarimax.Order{P: 2, D: 1, Q: 1, SeasonalPeriod: 52},
		ArOrder:         92,
		Seed:            seed,
		Misfit:          "mse",
	}
}

// Resolver holds a table of representative per-region/window overrides
// and resolves the effective ModelConfig for a run, the same
// table-then-fallback-to-default resolution the teacher's profile
// package uses for environment-tier settings.
type Resolver struct {
	overrides map[string]SarimaxOverride
}

// NewResolver builds a Resolver from a representative override table.
func NewResolver(overrides []SarimaxOverride) *Resolver {
	m := make(map[string]SarimaxOverride, len(overrides))
	for _, o := range overrides {
		m[o.Region+"/"+string(o.Window)] = o
	}
	return &Resolver{overrides: m}
}

// Resolve returns the effective ModelConfig for region/window, applying
// any matching SARIMAX order override on top of the baseline default.
func (r *Resolver) Resolve(region string, window ValidationWindow, seed int64) ModelConfig {
	cfg := DefaultConfig(region, window, seed)
	if o, ok := r.overrides[region+"/"+string(window)]; ok {
		cfg.SarimaxOrder = o.Order
	}
	return cfg
}
