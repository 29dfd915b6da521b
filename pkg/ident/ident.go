package ident

import (
	"errors"
	"time"

	"github.com/crn-tools/crnident/pkg/network"
	"github.com/crn-tools/crnident/pkg/perm"
)

var (
	// ErrShapeMismatch is returned by [Search] in exact mode when the two
	// networks have different dimensions, and in subset mode when the
	// reference is larger than the target. The call is fatal and not
	// retried; callers decide whether a shape mismatch is an error or just
	// a negative answer.
	ErrShapeMismatch = errors.New("network shapes are incompatible")

	// ErrUndetermined is returned when the candidate budget or timeout was
	// exhausted before the search space was. It is NOT a negative answer:
	// an assignment may still exist. Callers may retry with a larger
	// budget.
	ErrUndetermined = errors.New("search undetermined: candidate budget exhausted")
)

// Relation selects how much two networks must agree under a relabeling.
type Relation int

const (
	// Weak requires only the numeric reactant/product structure to match.
	Weak Relation = iota
	// Strong additionally requires species and reaction kind tags to match
	// at every mapped position.
	Strong
)

// String returns "weak" or "strong".
func (r Relation) String() string {
	if r == Strong {
		return "strong"
	}
	return "weak"
}

// Mode selects between whole-network identity and subnetwork embedding.
type Mode int

const (
	// Exact searches for a full bijective relabeling; shapes must match.
	Exact Mode = iota
	// Subset searches for an injective embedding of the reference into the
	// (at least as large) target; unmapped target rows and columns are
	// ignored.
	Subset
)

// String returns "exact" or "subset".
func (m Mode) String() string {
	if m == Subset {
		return "subset"
	}
	return "exact"
}

// Assignment maps reference indices to target indices: Species[i] is the
// target species assigned to reference species i, Reactions[j] the target
// reaction assigned to reference reaction j. In exact mode both slices are
// full bijections; in subset mode they are injective into the larger
// target index sets.
type Assignment struct {
	Species   []int `json:"species"`
	Reactions []int `json:"reactions"`
}

// Valid reports whether applying the assignment to ref reproduces target's
// structure (and tags, for Strong) at every mapped position. It re-runs the
// evaluator, so tests can round-trip any returned assignment.
func (a *Assignment) Valid(ref, target *network.Network, rel Relation) bool {
	return evaluate(ref, target, a.Species, a.Reactions, rel)
}

// Invert returns the target-to-reference view of a full bijective
// assignment. Only meaningful in exact mode.
func (a *Assignment) Invert() *Assignment {
	return &Assignment{
		Species:   perm.Invert(a.Species),
		Reactions: perm.Invert(a.Reactions),
	}
}

// Options configures a search. The zero value is a weak, exact, unbounded
// search with GOMAXPROCS evaluators.
type Options struct {
	// Relation selects weak or strong identity.
	Relation Relation

	// Mode selects exact identity or subnetwork embedding.
	Mode Mode

	// Budget caps the number of candidate assignments evaluated. Zero or
	// negative means unbounded. When the budget trips before the space is
	// exhausted the search returns ErrUndetermined.
	Budget int64

	// Timeout bounds wall-clock time for the whole search. Zero means no
	// timeout. Expiry yields ErrUndetermined.
	Timeout time.Duration

	// Workers is the number of concurrent evaluator goroutines.
	// Zero or negative selects GOMAXPROCS.
	Workers int

	// Progress, when set, receives the running number of evaluated
	// candidates at a coarse interval. Used for CLI heartbeats.
	Progress func(evaluated int64)

	// Debug, when set, receives search-space diagnostics once the search
	// completes (in any outcome).
	Debug func(DebugInfo)
}

// DebugInfo reports how large the constrained search space was and how much
// of it was visited. Block sizes above a handful signal the combinatorial
// bottlenecks that make a budget necessary.
type DebugInfo struct {
	SpeciesBlockSizes  []int   // sizes of the species compatibility blocks
	ReactionBlockSizes []int   // sizes of the reaction compatibility blocks
	Log10Candidates    float64 // log10 of the total candidate count
	Evaluated          int64   // candidates actually evaluated
	Exhausted          bool    // whether the full space was covered
}
