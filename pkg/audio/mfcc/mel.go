package mfcc

import "math"

// Slaney mel scale: linear below 1kHz, logarithmic above.
const (
	melFSp       = 200.0 / 3
	melMinLogHz  = 1000.0
	melMinLogMel = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz >= melMinLogHz {
		return melMinLogMel + math.Log(hz/melMinLogHz)/melLogStep
	}
	return hz / melFSp
}

func melToHz(mel float64) float64 {
	if mel >= melMinLogMel {
		return melMinLogHz * math.Exp(melLogStep*(mel-melMinLogMel))
	}
	return mel * melFSp
}

// melFilter is one triangular filter, stored sparsely from bin start.
type melFilter struct {
	start   int
	weights []float64
}

func (f melFilter) apply(power []float64) float64 {
	var sum float64
	for i, w := range f.weights {
		sum += w * power[f.start+i]
	}
	return sum
}

// melFilterBank builds numMels Slaney-normalized triangular filters over
// the nfft/2+1 bins of a real FFT.
func melFilterBank(numMels, nfft, sampleRate int, fmin, fmax float64) []melFilter {
	bins := nfft/2 + 1
	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * float64(sampleRate) / float64(nfft)
	}

	lo, hi := hzToMel(fmin), hzToMel(fmax)
	pts := make([]float64, numMels+2)
	for i := range pts {
		pts[i] = melToHz(lo + (hi-lo)*float64(i)/float64(numMels+1))
	}

	bank := make([]melFilter, numMels)
	row := make([]float64, bins)
	for m := range bank {
		left, center, right := pts[m], pts[m+1], pts[m+2]
		enorm := 2.0 / (right - left)
		first, last := -1, -1
		for k, f := range freqs {
			lower := (f - left) / (center - left)
			upper := (right - f) / (right - center)
			w := max(0, min(lower, upper)) * enorm
			row[k] = w
			if w > 0 {
				if first < 0 {
					first = k
				}
				last = k
			}
		}
		if first < 0 {
			bank[m] = melFilter{}
			continue
		}
		bank[m] = melFilter{start: first, weights: append([]float64(nil), row[first:last+1]...)}
	}
	return bank
}

// dctMatrix returns the first k rows of the orthonormal DCT-II basis of
// size n.
func dctMatrix(k, n int) [][]float64 {
	out := make([][]float64, k)
	for i := range out {
		scale := math.Sqrt(2.0 / float64(n))
		if i == 0 {
			scale = math.Sqrt(1.0 / float64(n))
		}
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = scale * math.Cos(math.Pi*float64(i)*(2*float64(j)+1)/(2*float64(n)))
		}
	}
	return out
}
