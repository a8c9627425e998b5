package mfcc

import (
	"errors"
	"fmt"
)

// ErrShape is returned for matrices whose data does not match their shape.
var ErrShape = errors.New("mfcc: bad matrix shape")

// Matrix is a row-major float32 matrix of shape (Rows, Cols). For extracted
// features Rows is 3K coefficients and Cols is the number of frames T.
type Matrix struct {
	Rows int       `msgpack:"rows"`
	Cols int       `msgpack:"cols"`
	Data []float32 `msgpack:"data"`
}

// NewMatrix allocates a zeroed matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// At returns the element at row r, column c.
func (m *Matrix) At(r, c int) float32 {
	return m.Data[r*m.Cols+c]
}

// Set sets the element at row r, column c.
func (m *Matrix) Set(r, c int, v float32) {
	m.Data[r*m.Cols+c] = v
}

// Row returns row r, sharing storage with m.
func (m *Matrix) Row(r int) []float32 {
	return m.Data[r*m.Cols : (r+1)*m.Cols]
}

// Frames returns the columns of m as float64 vectors, one per frame.
func (m *Matrix) Frames() [][]float64 {
	out := make([][]float64, m.Cols)
	flat := make([]float64, m.Rows*m.Cols)
	for c := range out {
		out[c] = flat[c*m.Rows : (c+1)*m.Rows]
		for r := 0; r < m.Rows; r++ {
			out[c][r] = float64(m.Data[r*m.Cols+c])
		}
	}
	return out
}

// Validate checks that m is non-empty and consistent.
func (m *Matrix) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil", ErrShape)
	}
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrShape, m.Rows, m.Cols)
	}
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %dx%d with %d values", ErrShape, m.Rows, m.Cols, len(m.Data))
	}
	return nil
}

// Equal reports whether a and b have the same shape and identical values.
func Equal(a, b *Matrix) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}
