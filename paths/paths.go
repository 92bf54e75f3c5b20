// Package paths maps trajectories through a binomial lattice to cell
// coordinates. Rows count the down-moves realised so far and columns are
// periods, so a node (row, col) is valid when 0 <= row <= col.
package paths

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidPath     = errors.New("paths: invalid lattice path")
	ErrInvalidNode     = errors.New("paths: invalid node id")
	ErrInvalidEndpoint = errors.New("paths: invalid endpoint")
)

// Path is a trajectory through the lattice, one coordinate per period.
type Path struct {
	Rows []int
	Cols []int
}

// FromMoves builds a path from a sequence of -1 (down) / +1 (up) moves.
// The path starts at the root and has len(moves)+1 nodes.
func FromMoves(moves []int) (Path, error) {
	rows := make([]int, len(moves)+1)
	cols := make([]int, len(moves)+1)
	for i, m := range moves {
		switch m {
		case 1:
			rows[i+1] = rows[i]
		case -1:
			rows[i+1] = rows[i] + 1
		default:
			return Path{}, fmt.Errorf("%w: move %d at step %d is not +1 or -1", ErrInvalidPath, m, i)
		}
		cols[i+1] = i + 1
	}
	return Path{Rows: rows, Cols: cols}, nil
}

// New validates explicit row and column ids. Columns must be exactly
// 0..T in order and rows must start at the root and grow by 0 or 1 per step.
func New(rows, cols []int) (Path, error) {
	if len(rows) != len(cols) {
		return Path{}, fmt.Errorf("%w: %d rows but %d cols", ErrInvalidPath, len(rows), len(cols))
	}
	if len(rows) == 0 {
		return Path{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if rows[0] != 0 {
		return Path{}, fmt.Errorf("%w: path must start at row 0, got %d", ErrInvalidPath, rows[0])
	}
	for i := range cols {
		if cols[i] != i {
			return Path{}, fmt.Errorf("%w: col id %d at position %d", ErrInvalidPath, cols[i], i)
		}
		if i == 0 {
			continue
		}
		if d := rows[i] - rows[i-1]; d != 0 && d != 1 {
			return Path{}, fmt.Errorf("%w: row changes by %d at period %d", ErrInvalidPath, d, i)
		}
	}
	p := Path{Rows: make([]int, len(rows)), Cols: make([]int, len(cols))}
	copy(p.Rows, rows)
	copy(p.Cols, cols)
	return p, nil
}

// Len returns the number of nodes on the path (periods + 1).
func (p Path) Len() int { return len(p.Rows) }

// Moves returns the -1/+1 move sequence describing the path.
func (p Path) Moves() []int {
	if len(p.Rows) == 0 {
		return nil
	}
	moves := make([]int, len(p.Rows)-1)
	for i := 1; i < len(p.Rows); i++ {
		if p.Rows[i] > p.Rows[i-1] {
			moves[i-1] = -1
		} else {
			moves[i-1] = 1
		}
	}
	return moves
}

// Dropped reports whether the move into period i was a down-move.
func (p Path) Dropped(i int) bool {
	return i > 0 && p.Rows[i] > p.Rows[i-1]
}

// Sibling returns the row reached at period i by the opposite move from
// the same parent. For i == 0 it is the root.
func (p Path) Sibling(i int) int {
	switch {
	case i == 0:
		return 0
	case p.Dropped(i):
		return p.Rows[i] - 1
	default:
		return p.Rows[i] + 1
	}
}

func checkSize(m mat.Matrix, p Path) error {
	_, c := m.Dims()
	if p.Len() != c {
		return fmt.Errorf("%w: path has %d nodes, lattice has %d periods", ErrInvalidPath, p.Len(), c)
	}
	return nil
}

// Extract returns the values of m along p.
func Extract(m mat.Matrix, p Path) ([]float64, error) {
	if err := checkSize(m, p); err != nil {
		return nil, err
	}
	out := make([]float64, p.Len())
	for i := range out {
		out[i] = m.At(p.Rows[i], p.Cols[i])
	}
	return out, nil
}

// ExtractWithNeighbors returns, per period, the value at the realised node
// and at its sibling (the other child of the previous node). Both slices
// hold the root value at index 0.
func ExtractWithNeighbors(m mat.Matrix, p Path) (realized, sibling []float64, err error) {
	if err = checkSize(m, p); err != nil {
		return nil, nil, err
	}
	realized = make([]float64, p.Len())
	sibling = make([]float64, p.Len())
	for i := range realized {
		realized[i] = m.At(p.Rows[i], p.Cols[i])
		sibling[i] = m.At(p.Sibling(i), p.Cols[i])
	}
	return realized, sibling, nil
}
