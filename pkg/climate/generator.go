// Package climate synthesizes ensembles of future weekly climate
// trajectories whose seasonal skeleton matches a training baseline and
// whose residual autocovariance matches the training residuals (§4.2).
package climate

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// NonFiniteError reports a NaN or Inf encountered where the algorithm
// requires a finite value (e.g. a non-positive input to the log transform).
type NonFiniteError struct {
	Stage string
	Index int
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("climate: non-finite value at stage %q index %d", e.Stage, e.Index)
}

// CholeskyFailedError reports that the regularized autocovariance matrix
// still failed to factor after the second regularization attempt.
type CholeskyFailedError struct {
	Attempts int
}

func (e *CholeskyFailedError) Error() string {
	return fmt.Sprintf("climate: cholesky factorization failed after %d regularization attempts", e.Attempts)
}

// Config parameterizes the synthetic climate generator.
type Config struct {
	WinLen int // season length, 52
	Stride int // >= 1
	NSamp  int // length of each synthetic trajectory
	NReal  int // number of realizations (ensemble columns)
}

// Generator produces synthetic weekly climate trajectories per §4.2.
type Generator struct {
	cfg Config
}

// New constructs a Generator with the given configuration.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate runs the five-step contract algorithm and returns an nSamp x
// nReal matrix of synthetic climate values.
func (g *Generator) Generate(raw, baseline []float64, rnd *rand.Rand) (*mat.Dense, error) {
	n := len(raw)
	if n == 0 || n != len(baseline) || n%g.cfg.WinLen != 0 {
		return nil, &ShapeError{N: n, WinLen: g.cfg.WinLen}
	}

	skeleton, err := SeasonalSkeleton(baseline, g.cfg.WinLen)
	if err != nil {
		return nil, err
	}

	logRaw := make([]float64, n)
	logBaseline := make([]float64, n)
	for i := 0; i < n; i++ {
		if raw[i] <= 0 || math.IsNaN(raw[i]) || math.IsInf(raw[i], 0) {
			return nil, &NonFiniteError{Stage: "log(raw)", Index: i}
		}
		if baseline[i] <= 0 || math.IsNaN(baseline[i]) || math.IsInf(baseline[i], 0) {
			return nil, &NonFiniteError{Stage: "log(baseline)", Index: i}
		}
		logRaw[i] = math.Log(raw[i])
		logBaseline[i] = math.Log(baseline[i])
	}

	logSkeleton := make([]float64, g.cfg.WinLen)
	for i, s := range skeleton {
		if s <= 0 {
			return nil, &NonFiniteError{Stage: "log(skeleton)", Index: i}
		}
		logSkeleton[i] = math.Log(s)
	}

	// Residual extraction: R = LX - LXbar, centered.
	residual := make([]float64, n)
	for i := range residual {
		residual[i] = logRaw[i] - logBaseline[i]
	}
	mu := mean(residual)
	centered := make([]float64, n)
	for i, r := range residual {
		centered[i] = r - mu
	}

	synthResidual, err := g.synthesizeResiduals(centered, rnd)
	if err != nil {
		return nil, err
	}

	// Reconstruction: LX_syn = LS + mu + R_syn, tiled against the
	// seasonal skeleton at the matching within-season phase.
	out := mat.NewDense(g.cfg.NSamp, g.cfg.NReal, nil)
	for i := 0; i < g.cfg.NSamp; i++ {
		ls := logSkeleton[i%g.cfg.WinLen]
		for j := 0; j < g.cfg.NReal; j++ {
			lxSyn := ls + mu + synthResidual.At(i, j)
			out.Set(i, j, math.Exp(lxSyn))
		}
	}
	return out, nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
