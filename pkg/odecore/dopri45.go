// Package odecore implements an adaptive Dormand-Prince RK45 integrator
// for the single-state beta-logistic growth model, plus the per-step
// climate-modulated growth-rate construction it is driven by (§4.4).
//
// No IVP solver exists anywhere in the reference corpus, so this stepper
// is hand-written rather than pulled from a dependency; it follows the
// classical Dormand-Prince (1980) tableau, the same embedded-pair design
// used by every production RK45 implementation.
package odecore

import (
	"fmt"
	"math"
	"sync"
)

// RHS evaluates dC/dt at time t given state c.
type RHS func(t, c float64) float64

// Config controls the adaptive step controller.
type Config struct {
	AbsTol   float64
	RelTol   float64
	InitStep float64
	MaxStep  float64
	MinStep  float64
	SafetyFactor float64
}

// DefaultConfig returns conservative tolerances suited to a weekly-scale
// epidemic state variable.
func DefaultConfig() Config {
	return Config{
		AbsTol:       1e-6,
		RelTol:       1e-6,
		InitStep:     0.1,
		MaxStep:      1.0,
		MinStep:      1e-8,
		SafetyFactor: 0.9,
	}
}

// IntegrationFailure reports that the adaptive stepper could not satisfy
// its tolerances without the step size collapsing below MinStep.
type IntegrationFailure struct {
	T    float64
	Step float64
}

func (e *IntegrationFailure) Error() string {
	return fmt.Sprintf("odecore: step size collapsed below minimum at t=%v (h=%v)", e.T, e.Step)
}

// Dormand-Prince RK45 Butcher tableau.
var (
	dpA = [6][6]float64{
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	// 5th order solution weights (= last row of dpA, stage 7 coefficient 0).
	dpB5 = [7]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	// 4th order solution weights, for error estimation.
	dpB4 = [7]float64{
		5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640,
		-92097.0 / 339200, 187.0 / 2100, 1.0 / 40,
	}
)

var scratchPool = sync.Pool{
	New: func() interface{} {
		buf := make([]float64, 7)
		return &buf
	},
}

// Integrate advances the scalar state c0 from t0 to tEnd under rhs using
// adaptive Dormand-Prince RK45 steps (error estimated from the embedded
// 4th/5th-order solution pair), sampling the
// solution at the caller-requested output times (must be sorted,
// ascending, within [t0, tEnd]). Each call borrows its stage scratch
// buffer from a sync.Pool so concurrent Monte-Carlo realizations never
// share mutable state.
func Integrate(rhs RHS, t0, c0, tEnd float64, outputTimes []float64, cfg Config) ([]float64, error) {
	kPtr := scratchPool.Get().(*[]float64)
	k := *kPtr
	defer scratchPool.Put(kPtr)

	out := make([]float64, len(outputTimes))
	outIdx := 0

	t, c := t0, c0
	h := cfg.InitStep
	if h <= 0 {
		h = (tEnd - t0) / 100
	}

	for outIdx < len(outputTimes) && outputTimes[outIdx] <= t+1e-12 {
		out[outIdx] = c
		outIdx++
	}

	for t < tEnd-1e-12 {
		if t+h > tEnd {
			h = tEnd - t
		}
		// Land exactly on the next requested output time.
		if outIdx < len(outputTimes) && t+h > outputTimes[outIdx] {
			h = outputTimes[outIdx] - t
		}

		k[0] = rhs(t, c)
		for stage := 1; stage < 7; stage++ {
			ci := t + dpC[stage]*h
			yi := c
			for j := 0; j < stage; j++ {
				yi += h * dpA[stage-1][j] * k[j]
			}
			k[stage] = rhs(ci, yi)
		}

		var y5, y4 float64
		for s := 0; s < 7; s++ {
			y5 += dpB5[s] * k[s]
			y4 += dpB4[s] * k[s]
		}
		y5 = c + h*y5
		y4 = c + h*y4

		errEst := math.Abs(y5 - y4)
		scale := cfg.AbsTol + cfg.RelTol*math.Max(math.Abs(c), math.Abs(y5))

		if errEst <= scale || h <= cfg.MinStep*1.0001 {
			t += h
			c = y5
			for outIdx < len(outputTimes) && outputTimes[outIdx] <= t+1e-9 {
				out[outIdx] = c
				outIdx++
			}
			factor := cfg.SafetyFactor * math.Pow(scale/math.Max(errEst, 1e-300), 0.2)
			factor = math.Min(5, math.Max(0.2, factor))
			h *= factor
		} else {
			factor := cfg.SafetyFactor * math.Pow(scale/errEst, 0.25)
			factor = math.Max(0.1, factor)
			h *= factor
		}

		if h < cfg.MinStep {
			if errEst > scale {
				return nil, &IntegrationFailure{T: t, Step: h}
			}
			h = cfg.MinStep
		}
		if h > cfg.MaxStep {
			h = cfg.MaxStep
		}
	}

	for outIdx < len(outputTimes) {
		out[outIdx] = c
		outIdx++
	}
	return out, nil
}
