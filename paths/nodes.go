package paths

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID names lattice node (row, col) as "<col>_<y>" where y runs over
// -col, -col+2, ..., col and row is the position of y in that range.
func NodeID(row, col int) string {
	return fmt.Sprintf("%d_%d", col, 2*row-col)
}

// ParseNodeID is the inverse of NodeID.
func ParseNodeID(id string) (row, col int, err error) {
	parts := strings.Split(id, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidNode, id)
	}
	col, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidNode, id)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidNode, id)
	}
	if col < 0 || y < -col || y > col || (y+col)%2 != 0 {
		return 0, 0, fmt.Errorf("%w: %q is not on the lattice", ErrInvalidNode, id)
	}
	return (y + col) / 2, col, nil
}

// FromEndpoint builds the path ending at terminal node (row, col) of a
// lattice with size columns: row down-moves first, up-moves afterwards.
func FromEndpoint(row, col, size int) (Path, error) {
	if col != size-1 {
		return Path{}, fmt.Errorf("%w: column %d is not terminal (%d)", ErrInvalidEndpoint, col, size-1)
	}
	if row < 0 || row > size-1 {
		return Path{}, fmt.Errorf("%w: row %d outside [0, %d]", ErrInvalidEndpoint, row, size-1)
	}
	rows := make([]int, size)
	cols := make([]int, size)
	for i := range rows {
		cols[i] = i
		if i <= row {
			rows[i] = i
		} else {
			rows[i] = row
		}
	}
	return Path{Rows: rows, Cols: cols}, nil
}
