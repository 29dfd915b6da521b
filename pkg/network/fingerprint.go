package network

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
)

// Fingerprint is a permutation-invariant 64-bit summary of a network's
// structure, taken from a SHA-256 digest of a canonical encoding. Equal
// structure under any species/reaction permutation implies equal
// fingerprints; equal fingerprints do not imply identity.
type Fingerprint uint64

// String formats the fingerprint as fixed-width hex.
func (f Fingerprint) String() string { return fmt.Sprintf("%016x", uint64(f)) }

// Fingerprint returns the structure-only fingerprint. This is the bucketing
// key for weak identity: kind tags are not mixed in, so two networks that
// differ only in tags share a fingerprint.
func (n *Network) Fingerprint() Fingerprint { return n.fp }

// TypedFingerprint returns the fingerprint with species and reaction kind
// tags mixed into the per-row and per-column signatures. This is the
// bucketing key for strong identity.
func (n *Network) TypedFingerprint() Fingerprint { return n.typedFP }

// rowSignature captures the permutation-invariant facts about one species:
// its total reactant and product stoichiometry, how many reactions it
// enters on each side, and in how many reactions it appears on both sides
// (autocatalysis). The kind tag is included only for typed fingerprints.
func rowSignature(n *Network, i int, typed bool) string {
	auto := 0
	for j := 0; j < n.reactant.Cols(); j++ {
		if n.reactant.At(i, j) > 0 && n.product.At(i, j) > 0 {
			auto++
		}
	}
	kind := ""
	if typed {
		kind = n.speciesKinds[i]
	}
	return fmt.Sprintf("%d,%d,%d,%d,%d,%s",
		n.reactant.RowSum(i), n.product.RowSum(i),
		n.reactant.RowNonzero(i), n.product.RowNonzero(i), auto, kind)
}

// colSignature captures the permutation-invariant facts about one reaction:
// total stoichiometry and species count on each side, plus the kind tag for
// typed fingerprints.
func colSignature(n *Network, j int, typed bool) string {
	kind := ""
	if typed {
		kind = n.reactionKinds[j]
	}
	return fmt.Sprintf("%d,%d,%d,%d,%s",
		n.reactant.ColSum(j), n.product.ColSum(j),
		n.reactant.ColNonzero(j), n.product.ColNonzero(j), kind)
}

// computeFingerprint builds the canonical encoding and digests it.
// Shape goes first so networks of different dimensions can never collide,
// then total mass, then the sorted multisets of row and column signatures.
// Sorting removes the dependence on storage order; everything else in the
// encoding is already permutation-invariant.
func computeFingerprint(n *Network, typed bool) Fingerprint {
	rows := make([]string, n.NumSpecies())
	for i := range rows {
		rows[i] = rowSignature(n, i, typed)
	}
	cols := make([]string, n.NumReactions())
	for j := range cols {
		cols[j] = colSignature(n, j, typed)
	}
	slices.Sort(rows)
	slices.Sort(cols)

	var b strings.Builder
	fmt.Fprintf(&b, "shape:%dx%d;mass:%d+%d;", n.NumSpecies(), n.NumReactions(),
		n.reactant.Sum(), n.product.Sum())
	b.WriteString("rows:")
	b.WriteString(strings.Join(rows, "|"))
	b.WriteString(";cols:")
	b.WriteString(strings.Join(cols, "|"))

	sum := sha256.Sum256([]byte(b.String()))
	return Fingerprint(binary.BigEndian.Uint64(sum[:8]))
}
