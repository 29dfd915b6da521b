// Package subnet answers whether one reaction network is structurally
// embedded in another: does the haystack contain an induced subnetwork that
// is identical to the needle under the chosen relation?
//
// Embedding reuses the pairwise search from [ident] in subset mode, so the
// same budget and timeout semantics apply: a search that trips its budget is
// undetermined, not a confirmed absence.
package subnet

import (
	"context"
	"errors"
	"time"

	"github.com/crn-tools/crnident/pkg/ident"
	"github.com/crn-tools/crnident/pkg/network"
)

// Options configures an embedding search.
type Options struct {
	// Relation is the identity relation required between the needle and
	// the induced subnetwork.
	Relation ident.Relation

	// Budget caps the candidate assignments evaluated per search.
	// Zero means unlimited.
	Budget int64

	// Timeout caps the wall-clock time of each search. Zero means none.
	Timeout time.Duration

	// Workers is the evaluator parallelism. Zero means GOMAXPROCS.
	Workers int
}

func (o Options) searchOptions() ident.Options {
	return ident.Options{
		Relation: o.Relation,
		Mode:     ident.Subset,
		Budget:   o.Budget,
		Timeout:  o.Timeout,
		Workers:  o.Workers,
	}
}

// Contains reports whether needle embeds into haystack. On success the
// returned assignment maps each needle species and reaction to the haystack
// index it occupies; [network.Network.Subnetwork] applied to the assignment's
// target indices recovers the embedded copy.
//
// A nil assignment with a nil error means no embedding exists. A needle
// larger than the haystack in either dimension returns
// [ident.ErrShapeMismatch]; a search that tripped its budget or timeout
// returns [ident.ErrUndetermined].
func Contains(ctx context.Context, haystack, needle *network.Network, opts Options) (*ident.Assignment, error) {
	return ident.Search(ctx, needle, haystack, opts.searchOptions())
}

// Match pairs a haystack network with the embedding found in it.
type Match struct {
	Network    *network.Network
	Assignment *ident.Assignment
}

// Report is the outcome of searching a needle across a collection.
type Report struct {
	// Matches holds the haystacks the needle embeds into, in input order.
	Matches []Match

	// Undetermined names the haystacks whose search tripped the budget.
	Undetermined []string
}

// FindAll searches for needle in every haystack. Haystacks whose shape rules
// the embedding out are counted as definite non-matches, not errors. Any
// other error aborts the scan.
func FindAll(ctx context.Context, needle *network.Network, haystacks []*network.Network, opts Options) (*Report, error) {
	rep := &Report{}
	for _, h := range haystacks {
		a, err := Contains(ctx, h, needle, opts)
		switch {
		case errors.Is(err, ident.ErrShapeMismatch):
			continue
		case errors.Is(err, ident.ErrUndetermined):
			rep.Undetermined = append(rep.Undetermined, h.Name())
		case err != nil:
			return nil, err
		case a != nil:
			rep.Matches = append(rep.Matches, Match{Network: h, Assignment: a})
		}
	}
	return rep, nil
}
