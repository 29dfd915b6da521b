package ident

import "github.com/crn-tools/crnident/pkg/network"

// evaluate checks one candidate assignment. It is the hot inner loop of the
// search: stateless, allocation-free and short-circuiting, safe to call
// concurrently for different candidates.
//
// species[i] and reactions[j] are the target indices assigned to reference
// species i and reaction j. Only mapped positions are compared, which makes
// the same code serve exact mode (everything is mapped) and subset mode
// (surplus target rows/columns are ignored).
func evaluate(ref, target *network.Network, species, reactions []int, rel Relation) bool {
	refReactant, refProduct := ref.Reactant(), ref.Product()
	targetReactant, targetProduct := target.Reactant(), target.Product()
	for i, ti := range species {
		for j, tj := range reactions {
			if refReactant.At(i, j) != targetReactant.At(ti, tj) {
				return false
			}
			if refProduct.At(i, j) != targetProduct.At(ti, tj) {
				return false
			}
		}
	}
	if rel == Strong {
		refKinds, targetKinds := ref.SpeciesKinds(), target.SpeciesKinds()
		for i, ti := range species {
			if refKinds[i] != targetKinds[ti] {
				return false
			}
		}
		refKinds, targetKinds = ref.ReactionKinds(), target.ReactionKinds()
		for j, tj := range reactions {
			if refKinds[j] != targetKinds[tj] {
				return false
			}
		}
	}
	return true
}
