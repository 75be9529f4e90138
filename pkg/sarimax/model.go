// Package sarimax fits a regression on exogenous climate regressors plus an
// AR(P) model of its residuals to log-transformed weekly case counts and
// produces a quantile forecast (§4.7). Of the configured Order only P is
// used: no differencing, moving-average or seasonal terms are fitted. The
// autoregressive coefficient estimation
// follows the Yule-Walker covariance method, the same method the only
// ARIMA implementation in the reference corpus uses, generalized here
// from its hand-rolled 1st/2nd-order special cases to a general-order
// Toeplitz solve.
package sarimax

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"dengue-forecast/pkg/ferrors"
)

// Order holds the non-seasonal and seasonal ARIMA orders. Fit reads only
// P; the other fields are carried but not used.
type Order struct {
	P, D, Q                   int
	SeasonalP, SeasonalD, SeasonalQ int
	SeasonalPeriod            int
}

// Exogenous bundles the regressors used in both fitting and forecasting:
// weekly mean temperature and a 52-week rolling precipitation mean.
type Exogenous struct {
	TempMed        []float64
	RollingPrecip  []float64
}

// FitInput is the training data for one region/window.
type FitInput struct {
	Cases []float64 // raw weekly case counts, pre log(cases+100) transform
	Exog  Exogenous
	Order Order
}

// Model is a fitted SARIMAX model ready to forecast.
type Model struct {
	order      Order
	intercept  float64
	betaExog   []float64 // OLS coefficients on [temp_med, rolling_precip]
	arCoeffs   []float64
	residSigma float64
	lastValues []float64 // last P OLS residuals on the log scale, most recent last
	region     string
}

const logOffset = 100.0

func logTransform(cases []float64) []float64 {
	out := make([]float64, len(cases))
	for i, c := range cases {
		out[i] = math.Log(c + logOffset)
	}
	return out
}

// backTransform inverts log(cases+100), clipping at zero.
func backTransform(y float64) float64 {
	v := math.Exp(y) - logOffset
	if v < 0 {
		return 0
	}
	return v
}

// Fit estimates the exogenous regression and residual AR coefficients by
// ordinary least squares followed by a Yule-Walker fit of the residuals.
func Fit(region string, in FitInput) (*Model, error) {
	n := len(in.Cases)
	if n < in.Order.P+in.Order.D+5 {
		return nil, ferrors.New(region, "sarimax.Fit", ferrors.InsufficientData, nil)
	}
	y := logTransform(in.Cases)

	design := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, valueOr(in.Exog.TempMed, i))
		design.Set(i, 2, valueOr(in.Exog.RollingPrecip, i))
	}
	yVec := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var xty mat.VecDense
	xty.MulVec(design.T(), yVec)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, ferrors.New(region, "sarimax.Fit", ferrors.ModelFit, err)
	}

	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		fitted := beta.AtVec(0) + beta.AtVec(1)*design.At(i, 1) + beta.AtVec(2)*design.At(i, 2)
		residuals[i] = y[i] - fitted
	}

	arCoeffs, err := yuleWalker(residuals, in.Order.P)
	if err != nil {
		return nil, ferrors.New(region, "sarimax.Fit", ferrors.ModelFit, err)
	}

	sigma := residualStdDev(residuals, arCoeffs)

	lastP := in.Order.P
	if lastP > len(residuals) {
		lastP = len(residuals)
	}
	lastValues := append([]float64(nil), residuals[len(residuals)-lastP:]...)

	return &Model{
		order:      in.Order,
		intercept:  beta.AtVec(0),
		betaExog:   []float64{beta.AtVec(1), beta.AtVec(2)},
		arCoeffs:   arCoeffs,
		residSigma: sigma,
		lastValues: lastValues,
		region:     region,
	}, nil
}

func valueOr(series []float64, i int) float64 {
	if i < len(series) {
		return series[i]
	}
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// yuleWalker solves the Yule-Walker normal equations for an AR(p) model
// via the Toeplitz autocovariance matrix, using a general linear solve
// rather than the hand-written 1st/2nd-order special cases, since gonum
// supplies a general solver the original grounding file lacked.
func yuleWalker(series []float64, p int) ([]float64, error) {
	if p == 0 {
		return nil, nil
	}
	gamma := autocovariance(series, p)
	if gamma[0] == 0 {
		return make([]float64, p), nil
	}

	toeplitz := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			toeplitz.SetSym(i, j, gamma[abs(i-j)])
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

func residualStdDev(residuals []float64, ar []float64) float64 {
	p := len(ar)
	if len(residuals) <= p {
		return 0
	}
	sumSq := 0.0
	count := 0
	for t := p; t < len(residuals); t++ {
		pred := 0.0
		for i, c := range ar {
			pred += c * residuals[t-1-i]
		}
		e := residuals[t] - pred
		sumSq += e * e
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(count))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
