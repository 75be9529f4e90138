package clidengo

import (
	"context"
	"math"
	"testing"

	"dengue-forecast/pkg/odecore"
)

func flatEnsemble(weeks, nReal int, v float64) [][]float64 {
	out := make([][]float64, nReal)
	for i := range out {
		row := make([]float64, weeks)
		for w := range row {
			row[w] = v
		}
		out[i] = row
	}
	return out
}

func TestRunDeterministicGivenSeed(t *testing.T) {
	cfg := Config{
		NReal: 8, NWeeks: 20, Mode: odecore.ModeTemperature,
		TempBand: [2]float64{10, 35}, ODE: odecore.DefaultConfig(),
	}
	ranges := ParamRanges{
		R0: [2]float64{0.2, 0.4}, K: [2]float64{500, 1500},
		Q: [2]float64{0.9, 1.1}, Alpha: [2]float64{0.9, 1.1}, P: [2]float64{0.9, 1.1},
	}
	in := Input{
		Temp:   flatEnsemble(20, 8, 25),
		C0Pool: []float64{10, 20, 30},
		LagMax: 0,
	}

	r1, err := Run(context.Background(), cfg, ranges, in, 42, 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r2, err := Run(context.Background(), cfg, ranges, in, 42, 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for j := range r1 {
		for w := range r1[j].NewCases {
			if r1[j].NewCases[w] != r2[j].NewCases[w] {
				t.Fatalf("non-deterministic output at realization %d week %d: %v vs %v", j, w, r1[j].NewCases[w], r2[j].NewCases[w])
			}
		}
	}
}

func TestRunProducesNonNegativeCases(t *testing.T) {
	cfg := Config{
		NReal: 16, NWeeks: 52, Mode: odecore.ModeTemperaturePrecip,
		TempBand: [2]float64{10, 35}, PrecipBand: [2]float64{0, 400}, ODE: odecore.DefaultConfig(),
	}
	ranges := ParamRanges{
		R0: [2]float64{0.1, 0.5}, K: [2]float64{100, 5000},
		Q: [2]float64{0.8, 1.2}, Alpha: [2]float64{0.8, 1.2}, P: [2]float64{0.8, 1.2},
	}
	in := Input{
		Temp:   flatEnsemble(52, 16, 27),
		Precip: flatEnsemble(52, 16, 120),
		C0Pool: []float64{5, 15, 25, 40},
		LagMax: 4,
	}
	results, err := Run(context.Background(), cfg, ranges, in, 7, 4)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 16 {
		t.Fatalf("len(results) = %d, want 16", len(results))
	}
	for _, r := range results {
		for w, v := range r.NewCases {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("NewCases[%d] = %v, want finite non-negative", w, v)
			}
		}
	}
}

func TestLagShiftIsCircular(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5}
	shifted := lagShift(s, 2)
	want := []float64{3, 4, 5, 1, 2}
	for i := range want {
		if shifted[i] != want[i] {
			t.Fatalf("lagShift(2)[%d] = %v, want %v", i, shifted[i], want[i])
		}
	}
}
