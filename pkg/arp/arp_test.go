package arp

import (
	"context"
	"math"
	"testing"
)

func syntheticLogSeries(n int) []float64 {
	cases := make([]float64, n)
	for i := range cases {
		phase := float64(i%52) / 52
		cases[i] = 30 + 20*math.Sin(2*math.Pi*phase) + 5
	}
	return cases
}

func TestFitRejectsShortSeries(t *testing.T) {
	_, err := Fit("SP", []float64{1, 2, 3}, 92)
	if err == nil {
		t.Fatal("expected InsufficientData error")
	}
}

func TestFitRejectsNonPositiveCases(t *testing.T) {
	cases := syntheticLogSeries(300)
	cases[10] = 0
	_, err := Fit("SP", cases, 92)
	if err == nil {
		t.Fatal("expected InvalidInput error")
	}
}

func TestFitAndSimulateProducesFiniteTrajectories(t *testing.T) {
	cases := syntheticLogSeries(400)
	model, err := Fit("SP", cases, 20)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	trajectories, err := model.Simulate(context.Background(), 52, 200, 11, 4)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(trajectories) != 200 {
		t.Fatalf("len(trajectories) = %d, want 200", len(trajectories))
	}
	for _, traj := range trajectories {
		if len(traj) != 52 {
			t.Fatalf("len(traj) = %d, want 52", len(traj))
		}
		for _, v := range traj {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("trajectory value %v not finite non-negative", v)
			}
		}
	}

	quantiles := QuantilesPerWeek(trajectories)
	if len(quantiles) != 52 {
		t.Fatalf("len(quantiles) = %d, want 52", len(quantiles))
	}
	for i, q := range quantiles {
		if !(q.Lower95 <= q.Lower90 && q.Lower90 <= q.Lower80 && q.Lower80 <= q.Lower50 &&
			q.Lower50 <= q.Median && q.Median <= q.Upper50 && q.Upper50 <= q.Upper80 &&
			q.Upper80 <= q.Upper90 && q.Upper90 <= q.Upper95) {
			t.Fatalf("week %d quantiles not ordered: %+v", i, q)
		}
	}
}

func TestSSASmoothPreservesLength(t *testing.T) {
	series := syntheticLogSeries(104)
	smoothed := SSASmooth(series, 20, 3)
	if len(smoothed) != len(series) {
		t.Fatalf("len(smoothed) = %d, want %d", len(smoothed), len(series))
	}
}

func TestSmoothQuantilesPreservesLengthAndOrdering(t *testing.T) {
	weeks := make([]WeekQuantiles, 79)
	for i := range weeks {
		base := float64(i % 20)
		weeks[i] = WeekQuantiles{
			Lower95: base, Lower90: base + 1, Lower80: base + 2, Lower50: base + 3,
			Median:  base + 4,
			Upper50: base + 5, Upper80: base + 6, Upper90: base + 7, Upper95: base + 8,
		}
	}
	smoothed := SmoothQuantiles(weeks, 20, 5)
	if len(smoothed) != len(weeks) {
		t.Fatalf("len(smoothed) = %d, want %d", len(smoothed), len(weeks))
	}
}

func TestCropSelectsWindow(t *testing.T) {
	weeks := make([]WeekQuantiles, 100)
	for i := range weeks {
		weeks[i].Median = float64(i)
	}
	cropped := Crop(weeks, 10, 52)
	if len(cropped) != 52 {
		t.Fatalf("len(cropped) = %d, want 52", len(cropped))
	}
	if cropped[0].Median != 10 {
		t.Errorf("cropped[0].Median = %v, want 10", cropped[0].Median)
	}
}
