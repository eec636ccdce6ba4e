package frame

// FixedCoeffs holds the integer prediction coefficients used by the fixed
// linear predictors, indexed by predictor order (0 through 4).
//
// Order 0 carries no coefficients since its prediction is always 0.
var FixedCoeffs = [5][]int32{
	0: {},
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// fixedResidual computes the residual signal for the given fixed predictor
// order over samples. The returned slice has length len(samples)-order.
//
// Kept as an explicit per-order match rather than a loop over FixedCoeffs, per
// the "prefer an explicit match/branch over a table of function values"
// predictor-evaluation design note; grounded on
// analysis_fixed.go's computeFixedResiduals.
func fixedResidual(samples []int32, order int) []int32 {
	n := len(samples)
	res := make([]int32, 0, n-order)
	switch order {
	case 0:
		res = append(res, samples...)
	case 1:
		for i := 1; i < n; i++ {
			res = append(res, samples[i]-samples[i-1])
		}
	case 2:
		for i := 2; i < n; i++ {
			predicted := 2*samples[i-1] - samples[i-2]
			res = append(res, samples[i]-predicted)
		}
	case 3:
		for i := 3; i < n; i++ {
			predicted := 3*samples[i-1] - 3*samples[i-2] + samples[i-3]
			res = append(res, samples[i]-predicted)
		}
	case 4:
		for i := 4; i < n; i++ {
			predicted := 4*samples[i-1] - 6*samples[i-2] + 4*samples[i-3] - samples[i-4]
			res = append(res, samples[i]-predicted)
		}
	}
	return res
}

// reconstruct restores the full sample block from warm-up samples, a
// residual signal, and a (possibly shifted) linear predictor. It serves both
// fixed-order decoding (shift always 0) and LPC decoding (shift read from
// the stream).
func reconstruct(coeffs []int32, shift uint, warmup []int32, residual []int32) []int32 {
	order := len(coeffs)
	samples := make([]int32, order+len(residual))
	copy(samples, warmup)
	for i := order; i < len(samples); i++ {
		var sum int64
		for j, c := range coeffs {
			sum += int64(c) * int64(samples[i-j-1])
		}
		samples[i] = residual[i-order] + int32(sum>>shift)
	}
	return samples
}
