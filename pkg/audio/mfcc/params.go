package mfcc

import (
	"errors"
	"fmt"
	"math/bits"
)

// ParamsVersion is bumped whenever the feature pipeline changes in a way
// that makes old archives incomparable with new features.
const ParamsVersion = 1

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("mfcc: invalid params")

// Params holds every setting that influences extracted features. Reference
// archives record the Params they were built with; features are only
// comparable when the fingerprints match.
type Params struct {
	Version    int     `msgpack:"version" yaml:"version" json:"version"`
	SampleRate int     `msgpack:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	NFFT       int     `msgpack:"n_fft" yaml:"n_fft" json:"n_fft"`
	HopLength  int     `msgpack:"hop_length" yaml:"hop_length" json:"hop_length"`
	NumMels    int     `msgpack:"n_mels" yaml:"n_mels" json:"n_mels"`
	NumCoeffs  int     `msgpack:"n_mfcc" yaml:"n_mfcc" json:"n_mfcc"`
	FMin       float64 `msgpack:"fmin" yaml:"fmin" json:"fmin"`
	FMax       float64 `msgpack:"fmax" yaml:"fmax" json:"fmax"`
	TopDB      float64 `msgpack:"top_db" yaml:"top_db" json:"top_db"`
	DeltaWidth int     `msgpack:"delta_width" yaml:"delta_width" json:"delta_width"`
}

// DefaultParams returns the version 1 pipeline: 16kHz, 2048-point FFT,
// hop 512, 128 Slaney mel bands, 13 coefficients, 80dB dynamic range and
// 9-frame deltas.
func DefaultParams() Params {
	return Params{
		Version:    ParamsVersion,
		SampleRate: 16000,
		NFFT:       2048,
		HopLength:  512,
		NumMels:    128,
		NumCoeffs:  13,
		FMin:       0,
		FMax:       8000,
		TopDB:      80,
		DeltaWidth: 9,
	}
}

// Rows returns the number of rows in an extracted matrix: base, delta and
// delta² coefficients stacked.
func (p Params) Rows() int {
	return 3 * p.NumCoeffs
}

// Validate checks that p describes a computable pipeline.
func (p Params) Validate() error {
	switch {
	case p.Version != ParamsVersion:
		return fmt.Errorf("%w: version %d, want %d", ErrInvalidParams, p.Version, ParamsVersion)
	case p.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, p.SampleRate)
	case p.NFFT < 2 || bits.OnesCount(uint(p.NFFT)) != 1:
		return fmt.Errorf("%w: n_fft %d is not a power of two", ErrInvalidParams, p.NFFT)
	case p.HopLength <= 0:
		return fmt.Errorf("%w: hop length %d", ErrInvalidParams, p.HopLength)
	case p.NumMels <= 0:
		return fmt.Errorf("%w: n_mels %d", ErrInvalidParams, p.NumMels)
	case p.NumCoeffs <= 0 || p.NumCoeffs > p.NumMels:
		return fmt.Errorf("%w: n_mfcc %d with %d mels", ErrInvalidParams, p.NumCoeffs, p.NumMels)
	case p.FMin < 0 || p.FMax <= p.FMin || p.FMax > float64(p.SampleRate)/2:
		return fmt.Errorf("%w: band %g..%g Hz", ErrInvalidParams, p.FMin, p.FMax)
	case p.TopDB <= 0:
		return fmt.Errorf("%w: top_db %g", ErrInvalidParams, p.TopDB)
	case p.DeltaWidth < 3 || p.DeltaWidth%2 == 0:
		return fmt.Errorf("%w: delta width %d must be odd and >= 3", ErrInvalidParams, p.DeltaWidth)
	}
	return nil
}

// Fingerprint returns a stable string identifying p.
func (p Params) Fingerprint() string {
	return fmt.Sprintf("v%d/sr%d/nfft%d/hop%d/mels%d/k%d/fmin%g/fmax%g/topdb%g/dw%d",
		p.Version, p.SampleRate, p.NFFT, p.HopLength, p.NumMels, p.NumCoeffs,
		p.FMin, p.FMax, p.TopDB, p.DeltaWidth)
}

// Compatible reports whether features built with p and o can be compared.
func (p Params) Compatible(o Params) bool {
	return p.Fingerprint() == o.Fingerprint()
}
