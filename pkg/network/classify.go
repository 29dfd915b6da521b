package network

import "fmt"

// arityLabels names the number of distinct species on one side of a
// reaction. Arities above three are collapsed into "multi".
var arityLabels = []string{"null", "uni", "bi", "multi"}

// maxArity caps the classification; reactions with more than three
// reactant or product species all classify as "multi".
const maxArity = 3

// ClassifyReaction returns the arity classification of a single reaction,
// e.g. "uni-bi" for one reactant species and two product species.
func ClassifyReaction(numReactants, numProducts int) string {
	return fmt.Sprintf("%s-%s", arityLabels[min(numReactants, maxArity)], arityLabels[min(numProducts, maxArity)])
}

// ClassifyReactions classifies every column of a reactant/product matrix
// pair. The arity of a side is the number of distinct species with a
// nonzero coefficient, not the total stoichiometry, so 2A -> B is uni-uni.
func ClassifyReactions(reactant, product *Matrix) []string {
	kinds := make([]string, reactant.Cols())
	for j := range kinds {
		kinds[j] = ClassifyReaction(reactant.ColNonzero(j), product.ColNonzero(j))
	}
	return kinds
}
