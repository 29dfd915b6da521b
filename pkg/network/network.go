package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidNetwork is the base error for all construction-time
	// validation failures. Every error returned by [New] and the loaders
	// wraps it, so callers can test with errors.Is.
	ErrInvalidNetwork = errors.New("invalid network")

	// ErrShapeMismatch is returned by [New] when the reactant and product
	// matrices have different dimensions.
	ErrShapeMismatch = errors.New("reactant and product shapes differ")
)

// Network is an immutable reaction network: a named pair of reactant and
// product matrices with per-species and per-reaction kind tags.
//
// All accessors returning slices return read-only views; callers must not
// modify them. Construct networks only through [New] or the loaders in this
// package so the participation invariant holds.
type Network struct {
	name          string
	generated     bool
	reactant      *Matrix
	product       *Matrix
	speciesNames  []string
	reactionNames []string
	speciesKinds  []string
	reactionKinds []string

	// Fingerprints are computed once at construction and follow the
	// immutability of the network.
	fp      Fingerprint
	typedFP Fingerprint
}

// New builds a validated network. If name is empty a short unique name is
// generated. Species and reaction display names default to S0..Sn and
// R0..Rn; reaction kinds default to the arity classification from
// [ClassifyReactions] and species kinds default to empty tags.
//
// Validation failures wrap [ErrInvalidNetwork]:
//   - reactant/product shapes differ
//   - a species participates in no reaction (all-zero row in both matrices)
//   - a reaction touches no species (all-zero column in both matrices)
func New(name string, reactant, product *Matrix) (*Network, error) {
	if reactant.Rows() != product.Rows() || reactant.Cols() != product.Cols() {
		return nil, fmt.Errorf("%w: %w: %dx%d vs %dx%d", ErrInvalidNetwork, ErrShapeMismatch,
			reactant.Rows(), reactant.Cols(), product.Rows(), product.Cols())
	}
	for i := 0; i < reactant.Rows(); i++ {
		if reactant.RowNonzero(i) == 0 && product.RowNonzero(i) == 0 {
			return nil, fmt.Errorf("%w: species %d participates in no reaction", ErrInvalidNetwork, i)
		}
	}
	for j := 0; j < reactant.Cols(); j++ {
		if reactant.ColNonzero(j) == 0 && product.ColNonzero(j) == 0 {
			return nil, fmt.Errorf("%w: reaction %d touches no species", ErrInvalidNetwork, j)
		}
	}
	generated := name == ""
	if generated {
		name = "net-" + uuid.NewString()[:8]
	}
	n := &Network{
		name:          name,
		generated:     generated,
		reactant:      reactant.Clone(),
		product:       product.Clone(),
		speciesNames:  defaultNames("S", reactant.Rows()),
		reactionNames: defaultNames("R", reactant.Cols()),
		speciesKinds:  make([]string, reactant.Rows()),
		reactionKinds: ClassifyReactions(reactant, product),
	}
	n.fp = computeFingerprint(n, false)
	n.typedFP = computeFingerprint(n, true)
	return n, nil
}

// NewFromRows is a convenience wrapper building both matrices from row
// slices and calling [New].
func NewFromRows(name string, reactant, product [][]int) (*Network, error) {
	rm, err := MatrixFrom(reactant)
	if err != nil {
		return nil, fmt.Errorf("%w: reactant: %w", ErrInvalidNetwork, err)
	}
	pm, err := MatrixFrom(product)
	if err != nil {
		return nil, fmt.Errorf("%w: product: %w", ErrInvalidNetwork, err)
	}
	return New(name, rm, pm)
}

// withLabels replaces the default names and kinds. Lengths are validated by
// the callers (the JSON loader and Permute).
func (n *Network) withLabels(speciesNames, reactionNames, speciesKinds, reactionKinds []string) *Network {
	c := *n
	if speciesNames != nil {
		c.speciesNames = speciesNames
	}
	if reactionNames != nil {
		c.reactionNames = reactionNames
	}
	if speciesKinds != nil {
		c.speciesKinds = speciesKinds
	}
	if reactionKinds != nil {
		c.reactionKinds = reactionKinds
	}
	// Structure is unchanged but the typed fingerprint depends on tags.
	c.typedFP = computeFingerprint(&c, true)
	return &c
}

// Name returns the network identifier.
func (n *Network) Name() string { return n.name }

// Generated reports whether the identifier was auto-assigned at
// construction. Loaders use it to substitute a better name, such as the
// file base name, without touching names the author chose.
func (n *Network) Generated() bool { return n.generated }

// NumSpecies returns the number of species (matrix rows).
func (n *Network) NumSpecies() int { return n.reactant.Rows() }

// NumReactions returns the number of reactions (matrix columns).
func (n *Network) NumReactions() int { return n.reactant.Cols() }

// Reactant returns the reactant matrix. The returned matrix is the
// network's own storage; treat it as read-only.
func (n *Network) Reactant() *Matrix { return n.reactant }

// Product returns the product matrix. Treat it as read-only.
func (n *Network) Product() *Matrix { return n.product }

// SpeciesNames returns the species display names. Read-only view.
func (n *Network) SpeciesNames() []string { return n.speciesNames }

// ReactionNames returns the reaction display names. Read-only view.
func (n *Network) ReactionNames() []string { return n.reactionNames }

// SpeciesKinds returns the species kind tags. Read-only view.
func (n *Network) SpeciesKinds() []string { return n.speciesKinds }

// ReactionKinds returns the reaction kind tags. Read-only view.
func (n *Network) ReactionKinds() []string { return n.reactionKinds }

// SameShape reports whether both networks have equal species and reaction
// counts.
func (n *Network) SameShape(other *Network) bool {
	return n.NumSpecies() == other.NumSpecies() && n.NumReactions() == other.NumReactions()
}

// Equal reports whether both networks have identical matrices, names and
// tags. This is positional equality, not structural identity.
func (n *Network) Equal(other *Network) bool {
	return n.name == other.name &&
		n.reactant.Equal(other.reactant) &&
		n.product.Equal(other.product) &&
		equalStrings(n.speciesKinds, other.speciesKinds) &&
		equalStrings(n.reactionKinds, other.reactionKinds)
}

// Permute returns a copy of the network with species reordered by rowPerm
// and reactions by colPerm: species i of the result is species rowPerm[i]
// of the original. Names and kind tags follow their rows and columns, so
// the result is strongly structurally identical to the original.
func (n *Network) Permute(rowPerm, colPerm []int) (*Network, error) {
	reactant, err := n.reactant.Permute(rowPerm, colPerm)
	if err != nil {
		return nil, err
	}
	product, err := n.product.Permute(rowPerm, colPerm)
	if err != nil {
		return nil, err
	}
	p, err := New(n.name, reactant, product)
	if err != nil {
		return nil, err
	}
	return p.withLabels(
		pick(n.speciesNames, rowPerm),
		pick(n.reactionNames, colPerm),
		pick(n.speciesKinds, rowPerm),
		pick(n.reactionKinds, colPerm),
	), nil
}

// Subnetwork returns the network induced by the given species and reaction
// indices, keeping their names and kinds. The result must itself satisfy
// the participation invariant or an error wrapping [ErrInvalidNetwork] is
// returned.
func (n *Network) Subnetwork(name string, speciesIdx, reactionIdx []int) (*Network, error) {
	sub, err := New(name,
		n.reactant.Submatrix(speciesIdx, reactionIdx),
		n.product.Submatrix(speciesIdx, reactionIdx))
	if err != nil {
		return nil, err
	}
	return sub.withLabels(
		pick(n.speciesNames, speciesIdx),
		pick(n.reactionNames, reactionIdx),
		pick(n.speciesKinds, speciesIdx),
		pick(n.reactionKinds, reactionIdx),
	), nil
}

// String returns the network name.
func (n *Network) String() string { return n.name }

func defaultNames(prefix string, count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = values[v]
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Describe returns a short human-readable summary used by CLI output,
// e.g. "osc_881 (7 species, 9 reactions)".
func (n *Network) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d species, %d reactions)", n.name, n.NumSpecies(), n.NumReactions())
	return b.String()
}
