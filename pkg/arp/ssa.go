package arp

import "gonum.org/v1/gonum/mat"

// SSASmooth applies singular spectrum analysis to denoise a forecast
// trajectory: embed the series into an L-lagged Hankel trajectory matrix,
// take its top-r singular components, and reconstruct by diagonal
// averaging. This generalizes the teacher's decomposition idea of
// reconstructing a series from a small number of structural components
// (there: trend + seasonal via moving average; here: top singular
// directions of the lag-covariance structure) into the classical
// "Caterpillar" SSA algorithm.
func SSASmooth(series []float64, windowLen, rank int) []float64 {
	n := len(series)
	if windowLen < 2 || windowLen >= n {
		windowLen = n / 2
	}
	k := n - windowLen + 1
	if k < 1 {
		return append([]float64(nil), series...)
	}

	traj := mat.NewDense(windowLen, k, nil)
	for i := 0; i < windowLen; i++ {
		for j := 0; j < k; j++ {
			traj.Set(i, j, series[i+j])
		}
	}

	var svd mat.SVD
	ok := svd.Factorize(traj, mat.SVDThin)
	if !ok {
		return append([]float64(nil), series...)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	if rank <= 0 || rank > len(sv) {
		rank = len(sv)
	}

	recon := mat.NewDense(windowLen, k, nil)
	for r := 0; r < rank; r++ {
		uCol := mat.Col(nil, r, &u)
		vCol := mat.Col(nil, r, &v)
		for i := 0; i < windowLen; i++ {
			for j := 0; j < k; j++ {
				recon.Set(i, j, recon.At(i, j)+sv[r]*uCol[i]*vCol[j])
			}
		}
	}

	return diagonalAverage(recon, n, windowLen, k)
}

// diagonalAverage reconstructs a length-n series from a windowLen x k
// trajectory matrix by averaging along each anti-diagonal, the standard
// SSA reconstruction step.
func diagonalAverage(m *mat.Dense, n, windowLen, k int) []float64 {
	sums := make([]float64, n)
	counts := make([]int, n)
	for i := 0; i < windowLen; i++ {
		for j := 0; j < k; j++ {
			idx := i + j
			sums[idx] += m.At(i, j)
			counts[idx]++
		}
	}
	out := make([]float64, n)
	for i := range out {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out
}
