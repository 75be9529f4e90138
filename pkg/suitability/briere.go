// Package suitability implements the generalized Briere function used to
// map a climate value to a growth-suitability weight. Eval is not
// normalized; dividing it by NormalizedMax rescales it into [0, 1].
package suitability

import "math"

// Briere is a smooth, bounded generalized Briere response function:
//
//	B(x) = A * ( x * softplusBeta(x - Xmin) * softplusBeta(Xmax - x)^(1/M) )^Delta
//
// with a numerically stable softplus. Constraints: Xmax > Xmin, A >= 0,
// M >= 1, Delta in [0,1], Beta > 0.
type Briere struct {
	Xmin, Xmax float64
	A          float64
	M          float64
	Delta      float64
	Beta       float64
}

// Default returns the canonical parameterization (M=2, Delta=1, Beta=50)
// for the given interval, with A=1 (callers normalize per-realization
// output by its own maximum, per §4.3).
func Default(xmin, xmax float64) Briere {
	return Briere{Xmin: xmin, Xmax: xmax, A: 1, M: 2, Delta: 1, Beta: 50}
}

// softplusBeta evaluates (1/beta)*log(1+exp(beta*t)) in the numerically
// stable form (1/beta)*(log1p(exp(-|beta*t|)) + max(beta*t, 0)).
func softplusBeta(t, beta float64) float64 {
	bt := beta * t
	return (math.Log1p(math.Exp(-math.Abs(bt))) + math.Max(bt, 0)) / beta
}

// Eval evaluates B(x). Values outside [Xmin, Xmax] smoothly decay toward
// zero rather than being clamped, consistent with the softplus formulation.
func (b Briere) Eval(x float64) float64 {
	left := softplusBeta(x-b.Xmin, b.Beta)
	right := softplusBeta(b.Xmax-x, b.Beta)

	inner := x * left * math.Pow(right, 1/b.M)
	if inner <= 0 {
		return 0
	}
	return b.A * math.Pow(inner, b.Delta)
}

// NormalizedMax samples Eval densely over [Xmin, Xmax] and returns the
// maximum found, the divisor callers use to rescale a realization's
// suitability curve into [0, 1] (§4.3).
func (b Briere) NormalizedMax(samples int) float64 {
	if samples < 2 {
		samples = 2
	}
	max := 0.0
	step := (b.Xmax - b.Xmin) / float64(samples-1)
	for i := 0; i < samples; i++ {
		v := b.Eval(b.Xmin + float64(i)*step)
		if v > max {
			max = v
		}
	}
	return max
}
