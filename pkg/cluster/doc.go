// Package cluster groups reaction networks into structural identity classes.
//
// A clustering run takes a collection of networks and partitions it so that
// every pair inside a cluster is structurally identical under the chosen
// relation (weak or strong). Two algorithms are available:
//
//   - [SIRN] buckets networks by their permutation-invariant fingerprint
//     before running any pairwise search. Networks in different buckets can
//     never be identical, so the expensive search runs only inside buckets.
//   - [Naive] buckets by matrix shape alone. It performs the same pairwise
//     searches over far larger buckets and exists as the correctness
//     baseline the fingerprint pruning is measured against.
//
// Within a bucket, each network is compared against the representative of
// every existing cluster. Because the pairwise search is budgeted, the
// relation observed through representatives is not guaranteed transitive: a
// network can match the representatives of two clusters that were never
// directly compared. When that happens the clusters are merged and the
// triple is reported as a [Violation] rather than silently discarded.
//
// Pairs whose search exhausted its budget are recorded in
// [Result.Undetermined]. An undetermined pair never causes a merge and is
// never treated as a confirmed non-match.
package cluster
