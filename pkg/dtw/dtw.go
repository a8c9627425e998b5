// Package dtw aligns two feature sequences with dynamic time warping.
//
// The full cost matrix is searched with no band. Local cost is the Euclidean
// distance between frame vectors, and the reported cost is the accumulated
// cost at the final cell divided by the number of cells on the optimal path,
// so utterances of different lengths score on the same scale.
package dtw

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/haivivi/pronounce/pkg/audio/mfcc"
)

// Sentinel errors.
var (
	// ErrEmpty is returned when either matrix has no frames.
	ErrEmpty = errors.New("dtw: empty sequence")

	// ErrDimension is returned when the matrices have different row counts.
	ErrDimension = errors.New("dtw: dimension mismatch")
)

// Result is the outcome of one alignment.
type Result struct {
	// Cost is the accumulated cost at the final cell divided by PathLength.
	Cost float64

	// Total is the accumulated cost at the final cell.
	Total float64

	// PathLength is the number of cells on the optimal warping path.
	PathLength int
}

// Step is one cell of a warping path: frame I of the reference aligned with
// frame J of the candidate.
type Step struct {
	I, J int
}

// Score aligns cand against ref.
func Score(ref, cand *mfcc.Matrix) (Result, error) {
	res, _, err := align(ref, cand, false)
	return res, err
}

// Path aligns cand against ref and also returns the warping path from
// (0,0) to the final cell.
func Path(ref, cand *mfcc.Matrix) (Result, []Step, error) {
	return align(ref, cand, true)
}

func align(ref, cand *mfcc.Matrix, withPath bool) (Result, []Step, error) {
	if err := check(ref, cand); err != nil {
		return Result{}, nil, err
	}
	x, y := ref.Frames(), cand.Frames()
	n, m := len(x), len(y)

	D := make([]float64, n*m)
	at := func(i, j int) float64 { return D[i*m+j] }

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			d := floats.Distance(x[i], y[j], 2)
			switch {
			case i == 0 && j == 0:
				D[0] = d
			case i == 0:
				D[j] = d + at(0, j-1)
			case j == 0:
				D[i*m] = d + at(i-1, 0)
			default:
				D[i*m+j] = d + min(at(i-1, j-1), at(i, j-1), at(i-1, j))
			}
		}
	}

	var path []Step
	i, j := n-1, m-1
	length := 1
	if withPath {
		path = append(path, Step{i, j})
	}
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, left, up := at(i-1, j-1), at(i, j-1), at(i-1, j)
			switch {
			case diag <= left && diag <= up:
				i, j = i-1, j-1
			case left <= up:
				j--
			default:
				i--
			}
		}
		length++
		if withPath {
			path = append(path, Step{i, j})
		}
	}
	if withPath {
		for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
			path[a], path[b] = path[b], path[a]
		}
	}

	total := at(n-1, m-1)
	return Result{Cost: total / float64(length), Total: total, PathLength: length}, path, nil
}

func check(ref, cand *mfcc.Matrix) error {
	for _, mat := range []*mfcc.Matrix{ref, cand} {
		if mat == nil || mat.Cols == 0 || mat.Rows == 0 {
			return ErrEmpty
		}
		if err := mat.Validate(); err != nil {
			return err
		}
	}
	if ref.Rows != cand.Rows {
		return fmt.Errorf("%w: %d vs %d rows", ErrDimension, ref.Rows, cand.Rows)
	}
	return nil
}
