// Package arp implements the ARp high-order autoregressive forecaster: an
// AR(92) model fit on log2(weekly cases), simulated forward by Monte Carlo
// with Gaussian excitation, and smoothed by singular spectrum analysis
// (§4.8). The coefficient estimation reuses the Yule-Walker covariance
// method grounded on the corpus's only ARIMA implementation, generalized
// here to a 92nd-order Toeplitz solve via gonum rather than that file's
// hand-written 1st/2nd-order special cases.
package arp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"dengue-forecast/pkg/ferrors"
)

// DefaultOrder is the contract's AR order.
const DefaultOrder = 92

// Model is a fitted AR(p) model over log2(cases).
type Model struct {
	order      int
	coeffs     []float64
	sigma      float64
	lastValues []float64 // last `order` log2(cases) values, most recent last
}

// Fit estimates an AR(order) model on the log2-transformed case series via
// the Yule-Walker equations.
func Fit(region string, cases []float64, order int) (*Model, error) {
	if order <= 0 {
		order = DefaultOrder
	}
	if len(cases) < order+8 {
		return nil, ferrors.New(region, "arp.Fit", ferrors.InsufficientData, nil)
	}

	series := make([]float64, len(cases))
	for i, c := range cases {
		if c <= 0 || math.IsNaN(c) {
			return nil, ferrors.New(region, "arp.Fit", ferrors.InvalidInput, nil)
		}
		series[i] = math.Log2(c)
	}

	coeffs, err := yuleWalker(series, order)
	if err != nil {
		return nil, ferrors.New(region, "arp.Fit", ferrors.ModelFit, err)
	}

	sigma := excitationSigma(series, coeffs)

	lastValues := append([]float64(nil), series[len(series)-order:]...)
	return &Model{order: order, coeffs: coeffs, sigma: sigma, lastValues: lastValues}, nil
}

func yuleWalker(series []float64, p int) ([]float64, error) {
	gamma := autocovariance(series, p)
	if gamma[0] == 0 {
		return make([]float64, p), nil
	}
	toeplitz := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			toeplitz.SetSym(i, j, gamma[absInt(i-j)])
		}
	}
	rhs := mat.NewVecDense(p, gamma[1:p+1])

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(toeplitz, rhs); err != nil {
		return nil, err
	}
	out := make([]float64, p)
	for i := range out {
		out[i] = coeffs.AtVec(i)
	}
	return out, nil
}

func autocovariance(series []float64, maxLag int) []float64 {
	n := len(series)
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	gamma := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for t := 0; t < n-lag; t++ {
			sum += (series[t] - mean) * (series[t+lag] - mean)
		}
		gamma[lag] = sum / float64(n)
	}
	return gamma
}

// excitationSigma estimates the AR(p) innovation standard deviation as the
// plain standard deviation of the in-sample one-step residuals, restricted
// to the most recent whole 52-week blocks (all residuals when fewer than 52
// are available).
func excitationSigma(series []float64, coeffs []float64) float64 {
	p := len(coeffs)
	if len(series) <= p {
		return 0
	}
	residuals := make([]float64, 0, len(series)-p)
	for t := p; t < len(series); t++ {
		pred := 0.0
		for i, c := range coeffs {
			pred += c * series[t-1-i]
		}
		residuals = append(residuals, series[t]-pred)
	}

	winLen := 52
	usable := (len(residuals) / winLen) * winLen
	if usable < winLen {
		return stdDev(residuals)
	}
	return stdDev(residuals[len(residuals)-usable:])
}

func stdDev(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range xs {
		mean += v
	}
	mean /= float64(n)
	sumSq := 0.0
	for _, v := range xs {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
