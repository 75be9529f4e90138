package suitability

import (
	"math"
	"testing"
)

func TestBriereVanishesAtBounds(t *testing.T) {
	b := Default(10, 35)
	if v := b.Eval(10); math.Abs(v) > 1e-6 {
		t.Errorf("B(Xmin) = %v, want ~0", v)
	}
	if v := b.Eval(35); math.Abs(v) > 1e-6 {
		t.Errorf("B(Xmax) = %v, want ~0", v)
	}
}

func TestBriereHasInteriorMaximum(t *testing.T) {
	b := Default(10, 35)
	const samples = 200
	maxVal, maxIdx := -1.0, -1
	step := (b.Xmax - b.Xmin) / float64(samples-1)
	for i := 0; i < samples; i++ {
		x := b.Xmin + float64(i)*step
		v := b.Eval(x)
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	if maxIdx == 0 || maxIdx == samples-1 {
		t.Errorf("maximum at boundary index %d, want interior", maxIdx)
	}
}

func TestBriereIsContinuous(t *testing.T) {
	b := Default(10, 35)
	max := b.NormalizedMax(1000)
	prev := b.Eval(b.Xmin) / max
	step := (b.Xmax - b.Xmin) / 1000
	for x := b.Xmin + step; x <= b.Xmax; x += step {
		cur := b.Eval(x) / max
		if math.Abs(cur-prev) > 0.05 {
			t.Fatalf("discontinuity near x=%v: %v -> %v", x, prev, cur)
		}
		prev = cur
	}
}

func TestBriereNonNegative(t *testing.T) {
	b := Default(15, 33)
	for _, x := range []float64{0, 5, 14, 15, 20, 33, 34, 50} {
		if b.Eval(x) < 0 {
			t.Errorf("B(%v) = %v, want >= 0", x, b.Eval(x))
		}
	}
}

func TestNormalizedMaxScalesToOne(t *testing.T) {
	b := Default(10, 35)
	max := b.NormalizedMax(500)
	if max <= 0 {
		t.Fatalf("NormalizedMax = %v, want > 0", max)
	}

	for _, x := range []float64{15, 20, 22, 25} {
		normalized := b.Eval(x) / max
		if normalized > 1.0+1e-9 {
			t.Errorf("normalized B(%v) = %v, want <= 1", x, normalized)
		}
	}
}
