package arp

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"dengue-forecast/pkg/workerpool"
)

// splitmix64 decorrelates the process seed across simulation streams, the
// same splitting scheme used elsewhere in the module's Monte Carlo code.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// DefaultNReal is the contract's ARp simulation ensemble size.
const DefaultNReal = 10000

// Simulate runs nReal independent AR(order) recursions of length horizon,
// starting from the model's fitted tail state, each driven by its own
// Gaussian excitation stream, and returns the cases-scale (2^x) trajectory
// matrix as [realization][week].
func (m *Model) Simulate(ctx context.Context, horizon, nReal int, seed int64, workers int) ([][]float64, error) {
	if nReal <= 0 {
		nReal = DefaultNReal
	}
	out := make([][]float64, nReal)
	pool := workerpool.New(workerpool.Config{Workers: workers})

	err := pool.Run(ctx, nReal, func(ctx context.Context, j int) error {
		s := uint64(seed) ^ splitmix64(uint64(j))
		rnd := rand.New(rand.NewSource(int64(s)))

		history := append([]float64(nil), m.lastValues...)
		traj := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			pred := 0.0
			for i, c := range m.coeffs {
				pred += c * history[len(history)-1-i]
			}
			innovation := rnd.NormFloat64() * m.sigma
			next := pred + innovation
			history = append(history, next)
			traj[h] = math.Exp2(next)
		}
		out[j] = traj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WeekQuantiles is one week's quantile band of an [realization][week]
// trajectory matrix.
type WeekQuantiles struct {
	Lower95, Lower90, Lower80, Lower50 float64
	Median                             float64
	Upper50, Upper80, Upper90, Upper95 float64
}

// QuantilesPerWeek computes the nine contract quantiles at each forecast
// week across the realization ensemble.
func QuantilesPerWeek(trajectories [][]float64) []WeekQuantiles {
	if len(trajectories) == 0 {
		return nil
	}
	horizon := len(trajectories[0])
	out := make([]WeekQuantiles, horizon)

	column := make([]float64, len(trajectories))
	for w := 0; w < horizon; w++ {
		for r, traj := range trajectories {
			column[r] = traj[w]
		}
		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)

		out[w] = WeekQuantiles{
			Lower95: stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Lower90: stat.Quantile(0.05, stat.Empirical, sorted, nil),
			Lower80: stat.Quantile(0.10, stat.Empirical, sorted, nil),
			Lower50: stat.Quantile(0.25, stat.Empirical, sorted, nil),
			Median:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
			Upper50: stat.Quantile(0.75, stat.Empirical, sorted, nil),
			Upper80: stat.Quantile(0.90, stat.Empirical, sorted, nil),
			Upper90: stat.Quantile(0.95, stat.Empirical, sorted, nil),
			Upper95: stat.Quantile(0.975, stat.Empirical, sorted, nil),
		}
	}
	return out
}

// SmoothQuantiles applies the SSA smoother independently to each of the
// nine per-week quantile trajectories (§4.8 post-processing step, ahead
// of the EW41..EW40 crop).
func SmoothQuantiles(weeks []WeekQuantiles, windowLen, rank int) []WeekQuantiles {
	n := len(weeks)
	if n == 0 {
		return weeks
	}
	extract := func(get func(WeekQuantiles) float64) []float64 {
		out := make([]float64, n)
		for i, w := range weeks {
			out[i] = get(w)
		}
		return out
	}
	lower95 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Lower95 }), windowLen, rank)
	lower90 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Lower90 }), windowLen, rank)
	lower80 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Lower80 }), windowLen, rank)
	lower50 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Lower50 }), windowLen, rank)
	median := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Median }), windowLen, rank)
	upper50 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Upper50 }), windowLen, rank)
	upper80 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Upper80 }), windowLen, rank)
	upper90 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Upper90 }), windowLen, rank)
	upper95 := SSASmooth(extract(func(w WeekQuantiles) float64 { return w.Upper95 }), windowLen, rank)

	out := make([]WeekQuantiles, n)
	for i := range out {
		out[i] = WeekQuantiles{
			Lower95: lower95[i], Lower90: lower90[i], Lower80: lower80[i], Lower50: lower50[i],
			Median:  median[i],
			Upper50: upper50[i], Upper80: upper80[i], Upper90: upper90[i], Upper95: upper95[i],
		}
	}
	return out
}
