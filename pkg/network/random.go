package network

import "math/rand/v2"

// Random returns a random valid network of the given shape. Entries are
// biased towards zero (sparse networks) with occasional coefficient 2.
// Rows and columns that would violate the participation invariant are
// repaired by adding a single reactant or product entry, so the result
// always constructs.
//
// The caller owns the *rand.Rand; pass a seeded source for reproducible
// datasets.
func Random(r *rand.Rand, name string, numSpecies, numReactions int) *Network {
	reactant := NewMatrix(numSpecies, numReactions)
	product := NewMatrix(numSpecies, numReactions)
	for i := 0; i < numSpecies; i++ {
		for j := 0; j < numReactions; j++ {
			reactant.Set(i, j, randomCoefficient(r))
			product.Set(i, j, randomCoefficient(r))
		}
	}
	for i := 0; i < numSpecies; i++ {
		if reactant.RowNonzero(i) == 0 && product.RowNonzero(i) == 0 {
			reactant.Set(i, r.IntN(numReactions), 1)
		}
	}
	for j := 0; j < numReactions; j++ {
		if reactant.ColNonzero(j) == 0 && product.ColNonzero(j) == 0 {
			product.Set(r.IntN(numSpecies), j, 1)
		}
	}
	n, err := New(name, reactant, product)
	if err != nil {
		// The repair loops above guarantee the participation invariant.
		panic("network: random generation produced an invalid network: " + err.Error())
	}
	return n
}

// randomCoefficient draws a stoichiometric coefficient: mostly 0, sometimes
// 1, rarely 2.
func randomCoefficient(r *rand.Rand) int {
	switch v := r.IntN(10); {
	case v < 6:
		return 0
	case v < 9:
		return 1
	default:
		return 2
	}
}

// Shuffled returns a copy of the network with species and reactions in
// random order, together with the row and column permutations that were
// applied. The result is strongly structurally identical to the receiver,
// which makes Shuffled the reference generator for identity fixtures.
func (n *Network) Shuffled(r *rand.Rand) (*Network, []int, []int) {
	rowPerm := r.Perm(n.NumSpecies())
	colPerm := r.Perm(n.NumReactions())
	shuffled, err := n.Permute(rowPerm, colPerm)
	if err != nil {
		// rand.Perm always yields a valid permutation.
		panic("network: shuffle failed: " + err.Error())
	}
	return shuffled, rowPerm, colPerm
}

// ShuffledWeak returns a randomly reordered copy whose species and reaction
// kind tags are redrawn at random. The weak relation ignores tags, so the
// result is always weakly identical to the receiver; the strong relation
// sees the new tags and usually separates the two. This makes ShuffledWeak
// the generator for weakly-but-not-strongly identical fixtures.
func (n *Network) ShuffledWeak(r *rand.Rand) (*Network, []int, []int) {
	shuffled, rowPerm, colPerm := n.Shuffled(r)
	retagged := shuffled.withLabels(nil, nil,
		randomKinds(r, shuffled.NumSpecies()),
		randomKinds(r, shuffled.NumReactions()))
	return retagged, rowPerm, colPerm
}

// randomKinds draws tags from a small vocabulary so collisions between
// species stay likely, as in real kind annotations.
func randomKinds(r *rand.Rand, count int) []string {
	vocabulary := [...]string{"k0", "k1", "k2"}
	kinds := make([]string, count)
	for i := range kinds {
		kinds[i] = vocabulary[r.IntN(len(vocabulary))]
	}
	return kinds
}
