package mfcc

// deltaCoeffs returns the weights of a local polynomial regression over a
// window of the given odd width, evaluating the first (order 1) or second
// (order 2) derivative at the window center.
func deltaCoeffs(width, order int) []float64 {
	h := width / 2
	c := make([]float64, width)
	switch order {
	case 1:
		var denom float64
		for k := -h; k <= h; k++ {
			denom += float64(k * k)
		}
		for k := -h; k <= h; k++ {
			c[k+h] = float64(k) / denom
		}
	case 2:
		var mean float64
		for k := -h; k <= h; k++ {
			mean += float64(k * k)
		}
		mean /= float64(width)
		var denom float64
		for k := -h; k <= h; k++ {
			d := float64(k*k) - mean
			denom += d * d
		}
		for k := -h; k <= h; k++ {
			c[k+h] = 2 * (float64(k*k) - mean) / denom
		}
	}
	return c
}

// applyDelta writes into dst the regression of src with coeffs. Frames past
// either edge repeat the nearest edge frame, so len(dst) == len(src).
func applyDelta(dst, src []float32, coeffs []float64) {
	h := len(coeffs) / 2
	last := len(src) - 1
	for t := range src {
		var sum float64
		for i, w := range coeffs {
			j := min(max(t+i-h, 0), last)
			sum += w * float64(src[j])
		}
		dst[t] = float32(sum)
	}
}
