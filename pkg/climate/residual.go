package climate

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// autocovariance returns gamma(0..maxLag), the sample autocovariance of a
// centered series at lags 0, 1, ..., maxLag.
func autocovariance(centered []float64, maxLag int) []float64 {
	n := len(centered)
	gamma := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for t := 0; t < n-lag; t++ {
			sum += centered[t] * centered[t+lag]
		}
		gamma[lag] = sum / float64(n)
	}
	return gamma
}

// gershgorinLowerBound returns min_i (Sigma[i,i] - sum_{j!=i} |Sigma[i,j]|),
// a lower bound on Sigma's smallest eigenvalue by the Gershgorin circle
// theorem.
func gershgorinLowerBound(sigma *mat.SymDense) float64 {
	n := sigma.SymmetricDim()
	lower := math.Inf(1)
	for i := 0; i < n; i++ {
		radius := 0.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			v := sigma.At(i, j)
			if v < 0 {
				v = -v
			}
			radius += v
		}
		bound := sigma.At(i, i) - radius
		if bound < lower {
			lower = bound
		}
	}
	return lower
}

// synthesizeResiduals builds the stride-lag Toeplitz autocovariance matrix
// of the training residuals, regularizes it to be safely positive definite
// via the Gershgorin circle theorem, Cholesky-factors it, and draws nReal
// correlated Gaussian residual trajectories of length nSamp (§4.2 steps
// 2-4). A second, larger regularization jitter is attempted once before
// surfacing CholeskyFailedError.
func (g *Generator) synthesizeResiduals(centered []float64, rnd *rand.Rand) (*mat.Dense, error) {
	nSamp := g.cfg.NSamp
	stride := g.cfg.Stride
	if stride < 1 {
		stride = 1
	}
	maxLag := stride * (nSamp - 1)
	gamma := autocovariance(centered, maxLag)

	raw := make([]float64, nSamp*nSamp)
	sigma := mat.NewSymDense(nSamp, raw)
	for i := 0; i < nSamp; i++ {
		for j := i; j < nSamp; j++ {
			lag := stride * abs(i-j)
			sigma.SetSym(i, j, gamma[lag])
		}
	}

	var chol mat.Cholesky
	ok := false
	attempts := 0
	for !ok && attempts < 2 {
		attempts++
		jitter := jitterFor(sigma, attempts)
		for i := 0; i < nSamp; i++ {
			sigma.SetSym(i, i, sigma.At(i, i)+jitter)
		}
		ok = chol.Factorize(sigma)
	}
	if !ok {
		return nil, &CholeskyFailedError{Attempts: attempts}
	}

	var lower mat.TriDense
	chol.LTo(&lower)

	z := mat.NewDense(nSamp, g.cfg.NReal, nil)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rnd}
	for i := 0; i < nSamp; i++ {
		for j := 0; j < g.cfg.NReal; j++ {
			z.Set(i, j, norm.Rand())
		}
	}

	synth := mat.NewDense(nSamp, g.cfg.NReal, nil)
	synth.Mul(&lower, z)
	return synth, nil
}

// jitterFor returns the diagonal jitter to add on a regularization attempt:
// enough to push the Gershgorin lower bound strictly positive, scaled up on
// the second attempt.
func jitterFor(sigma *mat.SymDense, attempt int) float64 {
	lb := gershgorinLowerBound(sigma)
	base := 1e-6
	need := 0.0
	if lb <= 0 {
		need = -lb + base
	}
	if attempt >= 2 {
		need = need*10 + base*10
	}
	if need <= 0 {
		need = base
	}
	return need
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
