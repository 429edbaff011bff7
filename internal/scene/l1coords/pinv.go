package l1coords

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// pseudoInverse returns the Moore-Penrose pseudo-inverse of a together with
// its singular values in descending order. Singular values below
// max(r, c) * eps * s_max are treated as zero.
func pseudoInverse(a mat.Matrix) (*mat.Dense, []float64, bool) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, false
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	r, c := a.Dims()
	tol := 0.0
	if len(values) > 0 {
		tol = float64(max(r, c)) * 2.220446049250313e-16 * values[0]
	}

	// pinv = V * diag(1/s) * U^T
	inv := mat.NewDiagDense(len(values), nil)
	for i, s := range values {
		if s > tol {
			inv.SetDiag(i, 1/s)
		}
	}

	var vs, out mat.Dense
	vs.Mul(&v, inv)
	out.Mul(&vs, u.T())
	return &out, values, true
}

// conditionNumber returns s_max / s_min, or +Inf when s_min is zero.
func conditionNumber(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(1)
	}
	smin := values[len(values)-1]
	if smin <= 0 {
		return math.Inf(1)
	}
	return values[0] / smin
}
