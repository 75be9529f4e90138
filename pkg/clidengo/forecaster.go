// Package clidengo implements the CLiDENGO climate-modulated beta-logistic
// Monte-Carlo forecaster: an ensemble of stochastic realizations of the
// odecore beta-logistic ODE, each driven by its own parameter draw and its
// own synthetic climate trajectory, reduced to weekly incidence quantiles.
package clidengo

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"dengue-forecast/pkg/odecore"
	"dengue-forecast/pkg/suitability"
	"dengue-forecast/pkg/workerpool"
)

// ParamRanges bounds the box-constrained parameter draws, sampled
// uniformly; with Lo == Hi a parameter is fixed at a single point (each
// calibration candidate, and the calibrated forecast replay).
type ParamRanges struct {
	R0    [2]float64
	K     [2]float64
	Q     [2]float64
	Alpha [2]float64
	P     [2]float64
}

// Config controls one ensemble run.
type Config struct {
	NReal    int
	NWeeks   int // forecast horizon length in weeks
	Mode     odecore.ClimateMode
	TempBand [2]float64
	PrecipBand [2]float64
	HumidBand  [2]float64
	ODE      odecore.Config
}

// Realization is one simulated incidence trajectory and the parameter
// draw that produced it.
type Realization struct {
	Params  odecore.GrowthParams
	NewCases []float64
}

// splitmix64 decorrelates the process-wide seed across realization index j
// so every Monte-Carlo stream is reproducible yet independent.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func streamRand(seed int64, j int) *rand.Rand {
	s := uint64(seed) ^ splitmix64(uint64(j))
	return rand.New(rand.NewSource(int64(s)))
}

// drawParams samples one growth-parameter set uniformly within ranges.
func drawParams(ranges ParamRanges, rnd *rand.Rand) odecore.GrowthParams {
	unif := func(b [2]float64) float64 {
		d := distuv.Uniform{Min: b[0], Max: b[1], Src: rnd}
		return d.Rand()
	}
	return odecore.GrowthParams{
		R0:    unif(ranges.R0),
		K:     unif(ranges.K),
		Q:     unif(ranges.Q),
		Alpha: unif(ranges.Alpha),
		P:     unif(ranges.P),
	}
}

// resampleC0 draws an initial state by resampling uniformly (with
// replacement) from an empirical pool of recent observed case counts.
func resampleC0(pool []float64, rnd *rand.Rand) float64 {
	if len(pool) == 0 {
		return 0
	}
	idx := rnd.Intn(len(pool))
	return pool[idx]
}

// lagShift circularly rotates a climate series by lag weeks so a
// realization's synthetic trajectory can represent a phase-shifted
// analogue season rather than only the literal synthetic draw.
func lagShift(series []float64, lag int) []float64 {
	n := len(series)
	if n == 0 {
		return series
	}
	lag = ((lag % n) + n) % n
	out := make([]float64, n)
	for i := range out {
		out[i] = series[(i+lag)%n]
	}
	return out
}

// Input bundles the per-realization climate trajectories (one row per
// realization, supplied by the caller) and the empirical C0 pool.
type Input struct {
	Temp     [][]float64 // [realization][week]
	Precip   [][]float64
	Humidity [][]float64
	C0Pool   []float64
	LagMax   int
}

// Run executes an NReal-member Monte Carlo ensemble, distributing
// realizations across a worker pool, and returns each realization's
// simulated new-case trajectory of length NWeeks.
func Run(ctx context.Context, cfg Config, ranges ParamRanges, in Input, seed int64, workers int) ([]Realization, error) {
	tempFn := suitability.Default(cfg.TempBand[0], cfg.TempBand[1])
	precipFn := suitability.Default(cfg.PrecipBand[0], cfg.PrecipBand[1])
	humidFn := suitability.Default(cfg.HumidBand[0], cfg.HumidBand[1])
	tempMax := tempFn.NormalizedMax(200)
	precipMax := precipFn.NormalizedMax(200)
	humidMax := humidFn.NormalizedMax(200)

	results := make([]Realization, cfg.NReal)
	pool := workerpool.New(workerpool.Config{Workers: workers})

	err := pool.Run(ctx, cfg.NReal, func(ctx context.Context, j int) error {
		rnd := streamRand(seed, j)
		params := drawParams(ranges, rnd)
		c0 := resampleC0(in.C0Pool, rnd)

		lag := 0
		if in.LagMax > 0 {
			lag = rnd.Intn(in.LagMax + 1)
		}

		var temp, precip, humid []float64
		if j < len(in.Temp) {
			temp = lagShift(in.Temp[j], lag)
		}
		if j < len(in.Precip) {
			precip = lagShift(in.Precip[j], lag)
		}
		if j < len(in.Humidity) {
			humid = lagShift(in.Humidity[j], lag)
		}

		builder := odecore.RHSBuilder{
			Params: params,
			Climate: odecore.ClimateTrajectories{
				Temp: temp, Precip: precip, Humidity: humid,
			},
			Mode:     cfg.Mode,
			TempFn:   func(x float64) float64 { return tempFn.Eval(x) / safeDiv(tempMax) },
			PrecipFn: func(x float64) float64 { return precipFn.Eval(x) / safeDiv(precipMax) },
			HumidFn:  func(x float64) float64 { return humidFn.Eval(x) / safeDiv(humidMax) },
		}

		outTimes := make([]float64, cfg.NWeeks)
		for w := range outTimes {
			outTimes[w] = float64(w)
		}
		state, err := odecore.Integrate(builder.RHS(), 0, c0, float64(cfg.NWeeks-1), outTimes, cfg.ODE)
		if err != nil {
			return err
		}

		newCases := make([]float64, cfg.NWeeks)
		prev := c0
		for w, s := range state {
			d := s - prev
			if d < 0 {
				d = 0
			}
			newCases[w] = d
			prev = s
		}

		results[j] = Realization{Params: params, NewCases: newCases}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func safeDiv(x float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return 1
	}
	return x
}
