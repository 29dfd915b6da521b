// Package network defines the stoichiometry representation of a chemical
// reaction network and its permutation-invariant fingerprint.
//
// A network is a pair of equal-shape nonnegative integer matrices: the
// reactant matrix and the product matrix. Rows are species, columns are
// reactions. Each species and each reaction additionally carries a kind tag;
// reaction kinds default to an arity classification ("uni-bi", "bi-uni", ...)
// derived from the matrices themselves.
//
// Networks are immutable once constructed. Construction validates the shape
// and the participation invariant (no species without reactions, no reaction
// without species); violations are reported as errors wrapping
// [ErrInvalidNetwork] and never reach the identity search.
//
// # Fingerprints
//
// [Network.Fingerprint] summarizes the structure into a 64-bit value that is
// invariant under any permutation of species and reactions. Two networks that
// are structurally identical always share a fingerprint; the converse does
// not hold, so fingerprints are a bucketing key, not an identity proof.
// [Network.TypedFingerprint] additionally mixes in the kind tags and is the
// bucketing key for strong identity.
package network
