// Package ident implements the permutation search that decides structural
// identity between two reaction networks.
//
// # The Identity Problem
//
// Two networks are structurally identical when some relabeling of species
// (matrix rows) and reactions (columns) makes their reactant and product
// matrices equal. Weak identity compares only the numeric structure; strong
// identity additionally requires species and reaction kind tags to agree
// under the same relabeling. Deciding this naively costs the product of two
// factorials, so the engine prunes first and enumerates second:
//
//   - Compatibility blocks: rows (and columns) are partitioned by a
//     permutation-invariant signature. A valid relabeling can only map
//     within matching blocks, and a block size mismatch is an immediate
//     negative answer with no enumeration at all.
//
//   - Constrained generation: candidate assignments are products of
//     per-block bijections ([perm.Product]), or injective assignments from
//     per-index candidate lists in subnetwork mode ([perm.Injective]).
//
//   - Parallel evaluation: each candidate is checked by a stateless,
//     short-circuiting evaluator, fanned out over a worker pool; the first
//     success cancels the rest.
//
// # Budgets and the undetermined outcome
//
// The constrained search space is still combinatorial in the worst case
// (symmetric networks collapse into few large blocks). Every search
// therefore honors a candidate budget and an optional timeout. Exhausting
// either yields [ErrUndetermined], which is a distinct outcome from a nil
// assignment: nil means the space was exhausted and no relabeling exists,
// ErrUndetermined means the search gave up. Callers such as the cluster
// builder must never conflate the two.
//
// Enumeration is deterministic (blocks ordered smallest first, bijections
// advanced lexicographically). When several valid assignments exist and the
// search runs with more than one worker, which one is returned can vary;
// any returned assignment is valid. Run with Workers=1 for a reproducible
// choice.
package ident
