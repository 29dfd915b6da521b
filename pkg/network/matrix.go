package network

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrRaggedRows is returned by [MatrixFrom] when the input rows have
	// different lengths.
	ErrRaggedRows = errors.New("rows must have equal length")

	// ErrNegativeEntry is returned by [MatrixFrom] when an entry is negative.
	// Stoichiometric coefficients are counts and must be nonnegative.
	ErrNegativeEntry = errors.New("entries must be nonnegative")

	// ErrBadPermutation is returned by [Matrix.Permute] when a permutation
	// slice has the wrong length or is not a bijection of the index set.
	ErrBadPermutation = errors.New("invalid permutation")
)

// Matrix is a dense row-major integer matrix. In a network the rows are
// species and the columns are reactions, and entries are stoichiometric
// coefficients.
//
// The zero value is an empty matrix; use [NewMatrix] or [MatrixFrom].
type Matrix struct {
	rows, cols int
	data       []int
}

// NewMatrix creates a zero-filled rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]int, rows*cols)}
}

// MatrixFrom builds a matrix from a slice of rows.
// Returns ErrRaggedRows if the rows have different lengths, or
// ErrNegativeEntry if any value is below zero.
func MatrixFrom(values [][]int) (*Matrix, error) {
	rows := len(values)
	cols := 0
	if rows > 0 {
		cols = len(values[0])
	}
	m := NewMatrix(rows, cols)
	for i, row := range values {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrRaggedRows, i, len(row), cols)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("%w: entry (%d,%d) is %d", ErrNegativeEntry, i, j, v)
			}
			m.data[i*cols+j] = v
		}
	}
	return m, nil
}

// Rows returns the number of rows (species).
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns (reactions).
func (m *Matrix) Cols() int { return m.cols }

// At returns the entry at row r, column c.
func (m *Matrix) At(r, c int) int { return m.data[r*m.cols+c] }

// Set assigns the entry at row r, column c.
// Set is only used while building a matrix; a matrix handed to a Network
// must not be modified afterwards.
func (m *Matrix) Set(r, c, v int) { m.data[r*m.cols+c] = v }

// Row returns a copy of row r.
func (m *Matrix) Row(r int) []int {
	return slices.Clone(m.data[r*m.cols : (r+1)*m.cols])
}

// Col returns a copy of column c.
func (m *Matrix) Col(c int) []int {
	col := make([]int, m.rows)
	for r := range col {
		col[r] = m.data[r*m.cols+c]
	}
	return col
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// Equal reports whether both matrices have the same shape and entries.
func (m *Matrix) Equal(other *Matrix) bool {
	return m.rows == other.rows && m.cols == other.cols && slices.Equal(m.data, other.data)
}

// Sum returns the sum of all entries (the total stoichiometric mass).
func (m *Matrix) Sum() int {
	total := 0
	for _, v := range m.data {
		total += v
	}
	return total
}

// RowNonzero returns the number of nonzero entries in row r.
func (m *Matrix) RowNonzero(r int) int {
	n := 0
	for _, v := range m.data[r*m.cols : (r+1)*m.cols] {
		if v != 0 {
			n++
		}
	}
	return n
}

// ColNonzero returns the number of nonzero entries in column c.
func (m *Matrix) ColNonzero(c int) int {
	n := 0
	for r := 0; r < m.rows; r++ {
		if m.data[r*m.cols+c] != 0 {
			n++
		}
	}
	return n
}

// RowSum returns the sum of row r.
func (m *Matrix) RowSum(r int) int {
	total := 0
	for _, v := range m.data[r*m.cols : (r+1)*m.cols] {
		total += v
	}
	return total
}

// ColSum returns the sum of column c.
func (m *Matrix) ColSum(c int) int {
	total := 0
	for r := 0; r < m.rows; r++ {
		total += m.data[r*m.cols+c]
	}
	return total
}

// Permute returns a new matrix p with p[i][j] = m[rowPerm[i]][colPerm[j]].
// Both slices must be permutations of their respective index sets.
func (m *Matrix) Permute(rowPerm, colPerm []int) (*Matrix, error) {
	if !isPermutation(rowPerm, m.rows) {
		return nil, fmt.Errorf("%w: row permutation %v for %d rows", ErrBadPermutation, rowPerm, m.rows)
	}
	if !isPermutation(colPerm, m.cols) {
		return nil, fmt.Errorf("%w: column permutation %v for %d columns", ErrBadPermutation, colPerm, m.cols)
	}
	p := NewMatrix(m.rows, m.cols)
	for i, ri := range rowPerm {
		for j, cj := range colPerm {
			p.data[i*m.cols+j] = m.data[ri*m.cols+cj]
		}
	}
	return p, nil
}

// Submatrix returns the matrix restricted to the given row and column
// indices, in the given order. Indices may repeat; callers that need an
// induced submatrix pass distinct indices.
func (m *Matrix) Submatrix(rowIdx, colIdx []int) *Matrix {
	s := NewMatrix(len(rowIdx), len(colIdx))
	for i, r := range rowIdx {
		for j, c := range colIdx {
			s.data[i*len(colIdx)+j] = m.data[r*m.cols+c]
		}
	}
	return s
}

// isPermutation reports whether p is a bijection of [0, n).
func isPermutation(p []int, n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range p {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
