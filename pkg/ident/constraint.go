package ident

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crn-tools/crnident/pkg/network"
	"github.com/crn-tools/crnident/pkg/perm"
)

// This file builds the pruning structures: exact mode partitions indices
// into compatibility blocks, subset mode computes per-index candidate
// lists. Both rest on the same observation: whatever the unknown reaction
// permutation does, the multiset of (reactant, product) entry pairs along a
// species row is preserved, and symmetrically for reaction columns. Rows
// can only map to rows with the same pair multiset (exact) or a dominating
// one (subset).

// rowKey returns the canonical pair-multiset signature of species i.
// For Strong searches the species kind is appended, because a strong
// relabeling must preserve tags.
func rowKey(n *network.Network, i int, rel Relation) string {
	pairs := make([]string, n.NumReactions())
	for j := range pairs {
		pairs[j] = fmt.Sprintf("%d:%d", n.Reactant().At(i, j), n.Product().At(i, j))
	}
	sort.Strings(pairs)
	key := strings.Join(pairs, ",")
	if rel == Strong {
		key += "#" + n.SpeciesKinds()[i]
	}
	return key
}

// colKey returns the canonical pair-multiset signature of reaction j.
func colKey(n *network.Network, j int, rel Relation) string {
	pairs := make([]string, n.NumSpecies())
	for i := range pairs {
		pairs[i] = fmt.Sprintf("%d:%d", n.Reactant().At(i, j), n.Product().At(i, j))
	}
	sort.Strings(pairs)
	key := strings.Join(pairs, ",")
	if rel == Strong {
		key += "#" + n.ReactionKinds()[j]
	}
	return key
}

// buildBlocks groups reference and target indices by signature and pairs
// the groups up. The bool result is false when the signatures do not
// correspond one-to-one in count, in which case no bijection can exist and
// the search answers NONE without enumerating anything.
//
// Blocks are ordered smallest first (ties broken by signature), so the
// low-cardinality blocks sit early in the candidate product and the
// generator state stays deterministic.
func buildBlocks(ref, target *network.Network, rel Relation, key func(*network.Network, int, Relation) string, count int) ([]perm.Block, bool) {
	refGroups := make(map[string][]int)
	targetGroups := make(map[string][]int)
	for i := 0; i < count; i++ {
		k := key(ref, i, rel)
		refGroups[k] = append(refGroups[k], i)
		k = key(target, i, rel)
		targetGroups[k] = append(targetGroups[k], i)
	}
	if len(refGroups) != len(targetGroups) {
		return nil, false
	}
	keys := make([]string, 0, len(refGroups))
	for k, refIdx := range refGroups {
		if len(targetGroups[k]) != len(refIdx) {
			return nil, false
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		la, lb := len(refGroups[keys[a]]), len(refGroups[keys[b]])
		if la != lb {
			return la < lb
		}
		return keys[a] < keys[b]
	})
	blocks := make([]perm.Block, len(keys))
	for i, k := range keys {
		blocks[i] = perm.Block{From: refGroups[k], To: targetGroups[k]}
	}
	return blocks, true
}

// speciesBlocks and reactionBlocks are the two orientations of buildBlocks.
func speciesBlocks(ref, target *network.Network, rel Relation) ([]perm.Block, bool) {
	return buildBlocks(ref, target, rel, rowKey, ref.NumSpecies())
}

func reactionBlocks(ref, target *network.Network, rel Relation) ([]perm.Block, bool) {
	return buildBlocks(ref, target, rel, colKey, ref.NumReactions())
}

// pairCounts tallies the (reactant, product) pairs along one row or column.
type pairCounts map[[2]int]int

func rowPairs(n *network.Network, i int) pairCounts {
	counts := make(pairCounts)
	for j := 0; j < n.NumReactions(); j++ {
		counts[[2]int{n.Reactant().At(i, j), n.Product().At(i, j)}]++
	}
	return counts
}

func colPairs(n *network.Network, j int) pairCounts {
	counts := make(pairCounts)
	for i := 0; i < n.NumSpecies(); i++ {
		counts[[2]int{n.Reactant().At(i, j), n.Product().At(i, j)}]++
	}
	return counts
}

// dominates reports whether every pair of ref occurs at least as often in
// target. An embedding maps all reference columns onto distinct target
// columns, so the reference row's pair multiset is a sub-multiset of the
// target row's; this holds for the zero pair too, since reference zeros
// must land on target zeros at the mapped positions.
func dominates(ref, target pairCounts) bool {
	for pair, n := range ref {
		if target[pair] < n {
			return false
		}
	}
	return true
}

// subsetCandidates computes, for every reference row (or column), the
// sorted list of target rows whose pair multiset dominates it. An empty
// list for any index means the embedding is impossible.
func subsetCandidates(ref, target *network.Network, rel Relation, byRow bool) ([][]int, bool) {
	refCount, targetCount := ref.NumSpecies(), target.NumSpecies()
	if !byRow {
		refCount, targetCount = ref.NumReactions(), target.NumReactions()
	}
	targetPairs := make([]pairCounts, targetCount)
	for t := 0; t < targetCount; t++ {
		if byRow {
			targetPairs[t] = rowPairs(target, t)
		} else {
			targetPairs[t] = colPairs(target, t)
		}
	}
	candidates := make([][]int, refCount)
	for r := 0; r < refCount; r++ {
		var refPairs pairCounts
		var refKind string
		if byRow {
			refPairs = rowPairs(ref, r)
			refKind = ref.SpeciesKinds()[r]
		} else {
			refPairs = colPairs(ref, r)
			refKind = ref.ReactionKinds()[r]
		}
		for t := 0; t < targetCount; t++ {
			if rel == Strong {
				kind := target.SpeciesKinds()[t]
				if !byRow {
					kind = target.ReactionKinds()[t]
				}
				if kind != refKind {
					continue
				}
			}
			if dominates(refPairs, targetPairs[t]) {
				candidates[r] = append(candidates[r], t)
			}
		}
		if len(candidates[r]) == 0 {
			return nil, false
		}
	}
	return candidates, true
}
