package calibrate

import (
	"math"
	"testing"
)

// quadraticSim treats params as the mean directly, ignoring nReal/seed, so
// the objective reduces to a plain convex quadratic the optimizer should
// solve easily.
func quadraticSim(target []float64) SimFunc {
	return func(params []float64, nReal int, seed int64) (mean, variance []float64, err error) {
		mean = make([]float64, len(target))
		variance = make([]float64, len(target))
		for i := range target {
			mean[i] = params[0]
			variance[i] = 1
		}
		return mean, variance, nil
	}
}

func TestRunRecoversKnownOptimum(t *testing.T) {
	observed := []float64{5, 5, 5, 5}
	bounds := Bounds{Lo: []float64{0}, Hi: []float64{10}}
	result, err := Run(bounds, quadraticSim(observed), MSEMisfit, observed, []float64{1}, 1, Config{NRealSearch: 4, MaxIter: 200})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if math.Abs(result.Params[0]-5) > 0.1 {
		t.Errorf("recovered param = %v, want close to 5", result.Params[0])
	}
}

func TestBoxPenaltyPushesSearchInward(t *testing.T) {
	observed := []float64{20, 20, 20}
	bounds := Bounds{Lo: []float64{0}, Hi: []float64{10}}
	sim := func(params []float64, nReal int, seed int64) (mean, variance []float64, err error) {
		mean = []float64{params[0], params[0], params[0]}
		variance = []float64{1, 1, 1}
		return mean, variance, nil
	}
	result, err := Run(bounds, sim, MSEMisfit, observed, []float64{5}, 1, Config{NRealSearch: 4, MaxIter: 300})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Params[0] > 10.5 {
		t.Errorf("recovered param = %v, want near the upper bound 10 despite the unreachable target 20", result.Params[0])
	}
}

func TestMeanVarianceMisfitPenalizesOverconfidence(t *testing.T) {
	observed := []float64{10}
	wide := MeanVarianceMisfit(observed, []float64{10}, []float64{100})
	narrow := MeanVarianceMisfit(observed, []float64{10}, []float64{0.01})
	if narrow < wide {
		t.Errorf("an overconfident (narrow-variance) exact match should not score better than a wide one: narrow=%v wide=%v", narrow, wide)
	}
}
