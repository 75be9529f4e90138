// Package calibrate fits a model's free parameters to an observed season
// by derivative-free minimization of a misfit objective, using a small
// Monte-Carlo ensemble for the search and a much larger one for the final
// forecast replay (§4.6).
package calibrate

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Bounds are inclusive box constraints on each parameter, in the same
// order the SimFunc expects its input vector.
type Bounds struct {
	Lo, Hi []float64
}

// boxPenalty adds a smooth quadratic penalty for any coordinate outside
// its bound, the same normalize-then-penalize idea the teacher's Pareto
// optimizer uses to keep unconstrained search methods inside a feasible
// region, generalized from multi-objective normalization to a single
// scalar penalty term.
func boxPenalty(x []float64, b Bounds) float64 {
	penalty := 0.0
	for i, v := range x {
		if v < b.Lo[i] {
			d := b.Lo[i] - v
			penalty += 1e6 * d * d
		} else if v > b.Hi[i] {
			d := v - b.Hi[i]
			penalty += 1e6 * d * d
		}
	}
	return penalty
}

// SimFunc runs nReal realizations at the given parameter vector and
// returns the per-week ensemble mean and variance.
type SimFunc func(params []float64, nReal int, seed int64) (mean, variance []float64, err error)

// MisfitFunc scores a simulated ensemble against the observed series.
type MisfitFunc func(observed, simMean, simVariance []float64) float64

// MSEMisfit is the plain mean squared error between observed counts and
// the ensemble mean trajectory.
func MSEMisfit(observed, simMean, simVariance []float64) float64 {
	sum := 0.0
	for i := range observed {
		d := observed[i] - simMean[i]
		sum += d * d
	}
	return sum / float64(len(observed))
}

// MeanVarianceMisfit penalizes both the mean trajectory's deviation from
// observed and the ensemble's failure to place the observation within its
// own spread, which rewards ensembles whose predictive uncertainty is
// neither too narrow nor too wide.
func MeanVarianceMisfit(observed, simMean, simVariance []float64) float64 {
	sum := 0.0
	for i := range observed {
		d := observed[i] - simMean[i]
		v := simVariance[i]
		if v < 1e-6 {
			v = 1e-6
		}
		sum += d*d/v + math.Log(v)
	}
	return sum / float64(len(observed))
}

// Config controls one calibration run.
type Config struct {
	NRealSearch int // ensemble size used while the optimizer searches
	MaxIter     int
}

// DefaultConfig matches the contract's small-ensemble calibration size.
func DefaultConfig() Config {
	return Config{NRealSearch: 32, MaxIter: 500}
}

// Result is a completed calibration.
type Result struct {
	Params []float64
	Value  float64
	Status string
}

// Run minimizes misfit(observed, sim(params)) over Bounds using
// derivative-free Nelder-Mead, starting from initial. If the first
// optimization does not converge, it retries exactly once from an
// initial guess perturbed toward the bounds' midpoint, the same
// single-retry-from-a-nudged-state idiom the teacher's circuit breaker
// uses before giving up and reporting failure.
func Run(bounds Bounds, sim SimFunc, misfit MisfitFunc, observed []float64, initial []float64, seed int64, cfg Config) (Result, error) {
	objective := func(x []float64) float64 {
		penalty := boxPenalty(x, bounds)
		mean, variance, err := sim(x, cfg.NRealSearch, seed)
		if err != nil {
			return math.Inf(1)
		}
		return misfit(observed, mean, variance) + penalty
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{MajorIterations: cfg.MaxIter}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err == nil && !result.Status.Early() {
		return Result{Params: result.X, Value: result.F, Status: result.Status.String()}, nil
	}

	perturbed := make([]float64, len(initial))
	for i := range perturbed {
		mid := (bounds.Lo[i] + bounds.Hi[i]) / 2
		perturbed[i] = (initial[i] + mid) / 2
	}
	retry, retryErr := optimize.Minimize(problem, perturbed, settings, &optimize.NelderMead{})
	if retryErr != nil {
		if err != nil {
			return Result{}, err
		}
		return Result{}, retryErr
	}
	return Result{Params: retry.X, Value: retry.F, Status: retry.Status.String()}, nil
}
