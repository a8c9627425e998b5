// Package mfcc computes mel-frequency cepstral coefficients with first and
// second order deltas.
//
// The pipeline for each centered, zero-padded frame is:
//
//	periodic Hann window -> |FFT|² -> Slaney mel filterbank -> dB
//	-> clip to TopDB below the global max -> orthonormal DCT-II -> K coeffs
//
// Deltas are 9-frame local regressions with nearest-edge padding. The output
// is a (3K, T) float32 matrix: base rows, then delta, then delta².
package mfcc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// Sentinel errors.
var (
	// ErrEmptyAudio is returned when the input is shorter than one
	// analysis window.
	ErrEmptyAudio = errors.New("mfcc: empty audio")

	// ErrSampleRate is returned when the input rate differs from Params.
	ErrSampleRate = errors.New("mfcc: sample rate mismatch")
)

// amin floors mel power before the log.
const amin = 1e-10

// Extractor computes MFCC features. It is immutable after New and safe for
// concurrent use.
type Extractor struct {
	p       Params
	window  []float64
	melBank []melFilter
	dct     [][]float64
	delta1  []float64
	delta2  []float64
}

// New creates an Extractor for p.
func New(p Params) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		p:       p,
		window:  hannWindow(p.NFFT),
		melBank: melFilterBank(p.NumMels, p.NFFT, p.SampleRate, p.FMin, p.FMax),
		dct:     dctMatrix(p.NumCoeffs, p.NumMels),
		delta1:  deltaCoeffs(p.DeltaWidth, 1),
		delta2:  deltaCoeffs(p.DeltaWidth, 2),
	}, nil
}

// Params returns the extractor's parameters.
func (e *Extractor) Params() Params {
	return e.p
}

// Extract computes the (3K, T) feature matrix of buf, where
// T = 1 + len/hop.
func (e *Extractor) Extract(buf *pcm.Buffer) (*Matrix, error) {
	p := e.p
	if buf.Len() < p.NFFT {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrEmptyAudio, buf.Len(), p.NFFT)
	}
	if buf.SampleRate != p.SampleRate {
		return nil, fmt.Errorf("%w: got %d Hz, want %d", ErrSampleRate, buf.SampleRate, p.SampleRate)
	}

	logMel := e.logMelSpectrogram(buf.Samples)
	T := len(logMel)
	K := p.NumCoeffs

	out := NewMatrix(3*K, T)
	for t, frame := range logMel {
		for k := 0; k < K; k++ {
			var sum float64
			for m, v := range frame {
				sum += e.dct[k][m] * v
			}
			out.Set(k, t, float32(sum))
		}
	}
	for k := 0; k < K; k++ {
		base := out.Row(k)
		applyDelta(out.Row(K+k), base, e.delta1)
		applyDelta(out.Row(2*K+k), base, e.delta2)
	}
	return out, nil
}

// logMelSpectrogram returns [T][NumMels] mel power in dB, clipped to TopDB
// below the maximum over the whole utterance.
func (e *Extractor) logMelSpectrogram(x []float32) [][]float64 {
	p := e.p
	nfft := p.NFFT
	pad := nfft / 2
	bins := nfft/2 + 1
	T := 1 + len(x)/p.HopLength

	// FFT holds scratch space, so each call gets its own.
	plan := fourier.NewFFT(nfft)
	frame := make([]float64, nfft)
	coeffs := make([]complex128, bins)
	power := make([]float64, bins)
	flat := make([]float64, T*p.NumMels)
	out := make([][]float64, T)

	peak := math.Inf(-1)
	for t := range out {
		start := t*p.HopLength - pad
		for i := range frame {
			j := start + i
			if j < 0 || j >= len(x) {
				frame[i] = 0
			} else {
				frame[i] = float64(x[j]) * e.window[i]
			}
		}
		coeffs = plan.Coefficients(coeffs, frame)
		for k, c := range coeffs {
			power[k] = real(c)*real(c) + imag(c)*imag(c)
		}

		row := flat[t*p.NumMels : (t+1)*p.NumMels]
		for m, f := range e.melBank {
			db := 10 * math.Log10(max(amin, f.apply(power)))
			row[m] = db
			peak = max(peak, db)
		}
		out[t] = row
	}

	floor := peak - p.TopDB
	for i, v := range flat {
		if v < floor {
			flat[i] = floor
		}
	}
	return out
}
