package network

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

// mustNetwork builds a network from rows and fails the test on error.
func mustNetwork(t *testing.T, name string, reactant, product [][]int) *Network {
	t.Helper()
	n, err := NewFromRows(name, reactant, product)
	if err != nil {
		t.Fatalf("NewFromRows(%s): %v", name, err)
	}
	return n
}

// chain builds the two-reaction chain A -> B -> C used across the tests.
func chain(t *testing.T) *Network {
	t.Helper()
	return mustNetwork(t, "chain",
		[][]int{{1, 0}, {0, 1}, {0, 0}},
		[][]int{{0, 0}, {1, 0}, {0, 1}})
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		reactant [][]int
		product  [][]int
		wantErr  error
	}{
		{
			name:     "Valid",
			reactant: [][]int{{1, 0}, {0, 1}},
			product:  [][]int{{0, 1}, {1, 0}},
		},
		{
			name:     "ShapeMismatch",
			reactant: [][]int{{1, 0}, {0, 1}},
			product:  [][]int{{1}, {1}},
			wantErr:  ErrShapeMismatch,
		},
		{
			name:     "IsolatedSpecies",
			reactant: [][]int{{1, 1}, {0, 0}},
			product:  [][]int{{1, 1}, {0, 0}},
			wantErr:  ErrInvalidNetwork,
		},
		{
			name:     "EmptyReaction",
			reactant: [][]int{{1, 0}, {1, 0}},
			product:  [][]int{{1, 0}, {1, 0}},
			wantErr:  ErrInvalidNetwork,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromRows("t", tt.reactant, tt.product)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("err = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	n := chain(t)
	if got := n.SpeciesNames(); !slices.Equal(got, []string{"S0", "S1", "S2"}) {
		t.Errorf("SpeciesNames() = %v, want [S0 S1 S2]", got)
	}
	if got := n.ReactionNames(); !slices.Equal(got, []string{"R0", "R1"}) {
		t.Errorf("ReactionNames() = %v, want [R0 R1]", got)
	}
	// Both reactions consume one species and produce one: uni-uni.
	if got := n.ReactionKinds(); !slices.Equal(got, []string{"uni-uni", "uni-uni"}) {
		t.Errorf("ReactionKinds() = %v, want [uni-uni uni-uni]", got)
	}
	for _, k := range n.SpeciesKinds() {
		if k != "" {
			t.Errorf("default species kind = %q, want empty", k)
		}
	}
}

func TestNewGeneratesName(t *testing.T) {
	a := mustNetwork(t, "", [][]int{{1}}, [][]int{{2}})
	b := mustNetwork(t, "", [][]int{{1}}, [][]int{{2}})
	if a.Name() == "" {
		t.Fatal("generated name is empty")
	}
	if !strings.HasPrefix(a.Name(), "net-") {
		t.Errorf("generated name = %q, want net- prefix", a.Name())
	}
	if a.Name() == b.Name() {
		t.Errorf("two generated names collide: %q", a.Name())
	}
}

func TestPermuteRoundTrip(t *testing.T) {
	n := chain(t)
	rowPerm := []int{2, 0, 1}
	colPerm := []int{1, 0}
	p, err := n.Permute(rowPerm, colPerm)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	// Entry (i, j) of the result is entry (rowPerm[i], colPerm[j]) of the
	// original.
	for i := 0; i < n.NumSpecies(); i++ {
		for j := 0; j < n.NumReactions(); j++ {
			if p.Reactant().At(i, j) != n.Reactant().At(rowPerm[i], colPerm[j]) {
				t.Errorf("reactant (%d,%d) not permuted", i, j)
			}
			if p.Product().At(i, j) != n.Product().At(rowPerm[i], colPerm[j]) {
				t.Errorf("product (%d,%d) not permuted", i, j)
			}
		}
	}
	// Names follow their rows and columns.
	if got := p.SpeciesNames(); !slices.Equal(got, []string{"S2", "S0", "S1"}) {
		t.Errorf("permuted SpeciesNames() = %v, want [S2 S0 S1]", got)
	}
	if got := p.ReactionNames(); !slices.Equal(got, []string{"R1", "R0"}) {
		t.Errorf("permuted ReactionNames() = %v, want [R1 R0]", got)
	}
}

func TestFingerprintPermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 20; trial++ {
		n := Random(rng, "trial", 6, 8)
		shuffled, _, _ := n.Shuffled(rng)
		if n.Fingerprint() != shuffled.Fingerprint() {
			t.Fatalf("trial %d: fingerprint changed under permutation: %s vs %s",
				trial, n.Fingerprint(), shuffled.Fingerprint())
		}
		if n.TypedFingerprint() != shuffled.TypedFingerprint() {
			t.Fatalf("trial %d: typed fingerprint changed under permutation", trial)
		}
	}
}

func TestFingerprintSeparatesStructure(t *testing.T) {
	linear := chain(t)
	// A -> B, A -> C: same shape, different wiring.
	fork := mustNetwork(t, "fork",
		[][]int{{1, 1}, {0, 0}, {0, 0}},
		[][]int{{0, 0}, {1, 0}, {0, 1}})
	if linear.Fingerprint() == fork.Fingerprint() {
		t.Error("chain and fork share a fingerprint")
	}
	if !linear.SameShape(fork) {
		t.Error("SameShape = false for equal dimensions")
	}
}

func TestTypedFingerprintSeesKinds(t *testing.T) {
	plain := mustNetwork(t, "tagged", [][]int{{1, 0}, {0, 1}}, [][]int{{0, 1}, {1, 0}})
	doc := `{
		"name": "tagged",
		"species_kinds": ["enzyme", ""],
		"reactant": [[1, 0], [0, 1]],
		"product": [[0, 1], [1, 0]]
	}`
	tagged, err := ReadNetwork(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadNetwork: %v", err)
	}
	if plain.Fingerprint() != tagged.Fingerprint() {
		t.Error("structure-only fingerprint depends on kind tags")
	}
	if plain.TypedFingerprint() == tagged.TypedFingerprint() {
		t.Error("typed fingerprint ignores kind tags")
	}
}

func TestSubnetwork(t *testing.T) {
	n := chain(t)
	sub, err := n.Subnetwork("head", []int{0, 1}, []int{0})
	if err != nil {
		t.Fatalf("Subnetwork: %v", err)
	}
	if sub.NumSpecies() != 2 || sub.NumReactions() != 1 {
		t.Errorf("shape = %dx%d, want 2x1", sub.NumSpecies(), sub.NumReactions())
	}
	if got := sub.SpeciesNames(); !slices.Equal(got, []string{"S0", "S1"}) {
		t.Errorf("SpeciesNames() = %v, want [S0 S1]", got)
	}

	// Dropping the reaction that connects species 2 leaves it isolated.
	if _, err := n.Subnetwork("bad", []int{1, 2}, []int{0}); !errors.Is(err, ErrInvalidNetwork) {
		t.Errorf("invalid subnetwork err = %v, want ErrInvalidNetwork", err)
	}
}

func TestClassifyReaction(t *testing.T) {
	tests := []struct {
		reactants int
		products  int
		want      string
	}{
		{0, 1, "null-uni"},
		{1, 1, "uni-uni"},
		{2, 1, "bi-uni"},
		{1, 2, "uni-bi"},
		{3, 3, "multi-multi"},
		{5, 1, "multi-uni"},
	}
	for _, tt := range tests {
		if got := ClassifyReaction(tt.reactants, tt.products); got != tt.want {
			t.Errorf("ClassifyReaction(%d, %d) = %q, want %q", tt.reactants, tt.products, got, tt.want)
		}
	}
}

func TestClassifyCountsSpeciesNotStoichiometry(t *testing.T) {
	// 2A -> B involves one reactant species, so it is uni-uni.
	n := mustNetwork(t, "dimer", [][]int{{2}, {0}}, [][]int{{0}, {1}})
	if got := n.ReactionKinds()[0]; got != "uni-uni" {
		t.Errorf("kind of 2A -> B = %q, want uni-uni", got)
	}
}

func TestRandomIsValidAndReproducible(t *testing.T) {
	for trial := 0; trial < 10; trial++ {
		rng := rand.New(rand.NewPCG(42, uint64(trial)))
		n := Random(rng, "r", 5, 7)
		if n.NumSpecies() != 5 || n.NumReactions() != 7 {
			t.Fatalf("shape = %dx%d, want 5x7", n.NumSpecies(), n.NumReactions())
		}
	}
	a := Random(rand.New(rand.NewPCG(1, 2)), "a", 4, 4)
	b := Random(rand.New(rand.NewPCG(1, 2)), "a", 4, 4)
	if !a.Reactant().Equal(b.Reactant()) || !a.Product().Equal(b.Product()) {
		t.Error("same seed produced different networks")
	}
}

func TestShuffledReturnsAppliedPermutations(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))
	n := Random(rng, "base", 5, 6)
	shuffled, rowPerm, colPerm := n.Shuffled(rng)
	want, err := n.Permute(rowPerm, colPerm)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if !shuffled.Reactant().Equal(want.Reactant()) || !shuffled.Product().Equal(want.Product()) {
		t.Error("Shuffled result does not match Permute with the returned permutations")
	}
}

func TestShuffledWeakRetagsKinds(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 15))
	n := Random(rng, "base", 5, 6)
	retagged, rowPerm, colPerm := n.ShuffledWeak(rng)

	want, err := n.Permute(rowPerm, colPerm)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if !retagged.Reactant().Equal(want.Reactant()) || !retagged.Product().Equal(want.Product()) {
		t.Error("ShuffledWeak result does not match Permute with the returned permutations")
	}
	if retagged.Fingerprint() != n.Fingerprint() {
		t.Error("retagging changed the untyped fingerprint")
	}
	// Redrawn tags never coincide with the defaults, so the typed
	// fingerprint must move.
	if retagged.TypedFingerprint() == n.TypedFingerprint() {
		t.Error("typed fingerprint survived a retagging")
	}
}

func TestEqualIsPositional(t *testing.T) {
	n := chain(t)
	same := chain(t)
	if !n.Equal(same) {
		t.Error("Equal = false for identical construction")
	}
	p, err := n.Permute([]int{1, 0, 2}, []int{0, 1})
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if n.Equal(p) {
		t.Error("Equal = true for a permuted copy")
	}
	if n.Equal(n.Rename("other")) {
		t.Error("Equal = true across different names")
	}
}

func TestDescribe(t *testing.T) {
	n := chain(t)
	if got := n.Describe(); got != "chain (3 species, 2 reactions)" {
		t.Errorf("Describe() = %q", got)
	}
}
