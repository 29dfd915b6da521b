// Package perm provides permutation primitives and the constrained
// candidate generators used by the identity search.
//
// The search engine never enumerates all n! orderings of a network's
// species or reactions. Instead it partitions indices into compatibility
// blocks and enumerates only the product of per-block bijections
// ([Product]), or injective partial assignments drawn from per-index
// candidate lists ([Injective]) for subnetwork embedding. Both generators
// are deterministic: enumeration is lexicographic, so the first valid
// assignment found is stable across runs.
package perm

import (
	"errors"
	"math"
	"slices"
)

// ErrBlockMismatch is returned by [NewProduct] when a block's source and
// target index sets have different sizes. Compatibility blocks always come
// in equal-size pairs; a mismatch means no bijection can exist.
var ErrBlockMismatch = errors.New("block source and target sizes differ")

// Seq returns the identity permutation [0, 1, ..., n-1].
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n! for n <= 20 and math.MaxInt64 beyond that, where
// the true value no longer fits in an int64. Use [Log10Factorial] for
// search-space estimates on larger inputs.
func Factorial(n int) int64 {
	if n > 20 {
		return math.MaxInt64
	}
	result := int64(1)
	for i := int64(2); i <= int64(n); i++ {
		result *= i
	}
	return result
}

// Log10Factorial returns log10(n!), summed directly rather than via the
// gamma function; block sizes are small enough that precision is not a
// concern.
func Log10Factorial(n int) float64 {
	total := 0.0
	for i := 2; i <= n; i++ {
		total += math.Log10(float64(i))
	}
	return total
}

// Next advances p to the lexicographically next permutation in place.
// It returns false when p is already the last permutation (descending
// order), leaving p reset to the first (ascending) one.
func Next(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		slices.Sort(p)
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}

// Invert returns the inverse permutation: Invert(p)[p[i]] = i.
func Invert(p []int) []int {
	inv := make([]int, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}

// =============================================================================
// Product - bijections constrained to compatibility blocks
// =============================================================================

// Block pairs a set of source indices with the equal-size set of target
// indices they may map to. Indices within a block are interchangeable as
// far as the block structure is concerned; the generator tries every
// bijection between the two sides.
type Block struct {
	From []int
	To   []int
}

// Product enumerates all full mappings that send each block's From indices
// onto its To indices. The total count is the product of the factorials of
// the block sizes.
//
// Enumeration order: the last block varies fastest; within a block,
// bijections advance lexicographically over the positions of To. Callers
// that want small blocks to change slowest place them first.
//
// Product is not safe for concurrent use.
type Product struct {
	blocks []Block
	perms  [][]int // per-block position permutation, perms[b][i] indexes blocks[b].To
	done   bool
	first  bool
}

// NewProduct validates the blocks and positions the generator before the
// first mapping. Returns ErrBlockMismatch if any block is uneven.
func NewProduct(blocks []Block) (*Product, error) {
	perms := make([][]int, len(blocks))
	for b, blk := range blocks {
		if len(blk.From) != len(blk.To) {
			return nil, ErrBlockMismatch
		}
		perms[b] = Seq(len(blk.From))
	}
	return &Product{blocks: blocks, perms: perms, first: true}, nil
}

// Len returns the total number of indices covered by the blocks.
func (p *Product) Len() int {
	n := 0
	for _, blk := range p.blocks {
		n += len(blk.From)
	}
	return n
}

// Log10Count returns log10 of the number of mappings the product will
// yield, the sum of per-block log-factorials.
func (p *Product) Log10Count() float64 {
	total := 0.0
	for _, blk := range p.blocks {
		total += Log10Factorial(len(blk.From))
	}
	return total
}

// Next writes the next mapping into out, where out must cover every index
// appearing in a From set (typically out has length Len() and From sets
// partition [0, Len())). out[from] is the target index assigned to from.
// Next returns false when all mappings have been produced.
func (p *Product) Next(out []int) bool {
	if p.done {
		return false
	}
	if p.first {
		p.first = false
	} else if !p.advance() {
		p.done = true
		return false
	}
	for b, blk := range p.blocks {
		for i, from := range blk.From {
			out[from] = blk.To[p.perms[b][i]]
		}
	}
	return true
}

// advance increments the block odometer: bump the last block's permutation,
// carrying into earlier blocks as each wraps around.
func (p *Product) advance() bool {
	for b := len(p.perms) - 1; b >= 0; b-- {
		if Next(p.perms[b]) {
			return true
		}
	}
	return false
}

// =============================================================================
// Injective - partial assignments from candidate lists
// =============================================================================

// Injective enumerates injective assignments out[i] ∈ candidates[i] with
// all assigned targets distinct. It backs the subnetwork embedding search,
// where each reference index has a precomputed list of compatible target
// indices.
//
// Candidate lists must be sorted ascending; enumeration is then
// lexicographic in the per-position candidate choice. Injective is not safe
// for concurrent use.
type Injective struct {
	candidates [][]int
	targetSize int
	sel        []int // sel[i] indexes candidates[i]; -1 means unassigned
	used       []bool
	started    bool
	dead       bool
}

// NewInjective builds a generator over the candidate lists. targetSize is
// the size of the target index space (used for the distinctness bookkeeping).
func NewInjective(candidates [][]int, targetSize int) *Injective {
	sel := make([]int, len(candidates))
	for i := range sel {
		sel[i] = -1
	}
	return &Injective{
		candidates: candidates,
		targetSize: targetSize,
		sel:        sel,
		used:       make([]bool, targetSize),
	}
}

// Log10Count returns log10 of the upper bound on assignments (the product
// of candidate-list lengths, ignoring the distinctness constraint).
// Returns -Inf when some index has no candidates.
func (it *Injective) Log10Count() float64 {
	total := 0.0
	for _, c := range it.candidates {
		if len(c) == 0 {
			return math.Inf(-1)
		}
		total += math.Log10(float64(len(c)))
	}
	return total
}

// Next writes the next injective assignment into out (length must equal the
// number of candidate lists) and returns false once exhausted.
func (it *Injective) Next(out []int) bool {
	if it.dead {
		return false
	}
	pos := 0
	if it.started {
		pos = len(it.candidates) - 1
		if pos < 0 {
			it.dead = true
			return false // a single empty assignment was already produced
		}
	}
	it.started = true
	if !it.search(pos) {
		it.dead = true
		return false
	}
	for i, s := range it.sel {
		out[i] = it.candidates[i][s]
	}
	return true
}

// search restores a valid assignment from position pos onward, advancing
// the selection at pos first. Positions before pos keep their current
// choices; wrapping at position 0 means exhaustion.
func (it *Injective) search(pos int) bool {
	for pos >= 0 {
		if pos >= len(it.candidates) {
			return true
		}
		// Release the current choice at pos, then try the next one.
		next := 0
		if it.sel[pos] >= 0 {
			it.used[it.candidates[pos][it.sel[pos]]] = false
			next = it.sel[pos] + 1
			it.sel[pos] = -1
		}
		advanced := false
		for c := next; c < len(it.candidates[pos]); c++ {
			if !it.used[it.candidates[pos][c]] {
				it.sel[pos] = c
				it.used[it.candidates[pos][c]] = true
				advanced = true
				break
			}
		}
		if advanced {
			pos++
		} else {
			pos--
		}
	}
	return false
}
