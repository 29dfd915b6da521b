package subnet

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/crn-tools/crnident/pkg/ident"
	"github.com/crn-tools/crnident/pkg/network"
)

func mustNetwork(t *testing.T, name string, reactant, product [][]int) *network.Network {
	t.Helper()
	n, err := network.NewFromRows(name, reactant, product)
	if err != nil {
		t.Fatalf("NewFromRows(%s): %v", name, err)
	}
	return n
}

func chain(t *testing.T) *network.Network {
	t.Helper()
	return mustNetwork(t, "chain",
		[][]int{{1, 0}, {0, 1}, {0, 0}},
		[][]int{{0, 0}, {1, 0}, {0, 1}})
}

func TestContainsFindsCarvedSubnetwork(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 37))
	full := network.Random(rng, "full", 6, 8)
	needle, err := full.Subnetwork("needle", []int{0, 1, 2, 3, 4, 5}, []int{0, 1, 2, 3, 4, 5})
	if err != nil {
		// Dropping the last two reactions isolated a species for this seed;
		// fall back to the full reaction set, which always constructs.
		needle, err = full.Subnetwork("needle", []int{0, 1, 2, 3, 4, 5}, []int{0, 1, 2, 3, 4, 5, 6, 7})
		if err != nil {
			t.Fatalf("Subnetwork: %v", err)
		}
	}
	haystack, _, _ := full.Shuffled(rng)

	a, err := Contains(context.Background(), haystack, needle, Options{})
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if a == nil {
		t.Fatal("carved subnetwork not found in its shuffled parent")
	}
	if !a.Valid(needle, haystack, ident.Weak) {
		t.Error("embedding does not reproduce the haystack entries")
	}
	// Applying the assignment to the haystack recovers the needle.
	recovered, err := haystack.Subnetwork("recovered", a.Species, a.Reactions)
	if err != nil {
		t.Fatalf("Subnetwork from assignment: %v", err)
	}
	if !recovered.Reactant().Equal(needle.Reactant()) || !recovered.Product().Equal(needle.Product()) {
		t.Error("assignment indices do not recover the needle's matrices")
	}
}

func TestContainsNone(t *testing.T) {
	// 2A -> B cannot embed into a chain with unit coefficients.
	dimer := mustNetwork(t, "dimer", [][]int{{2}, {0}}, [][]int{{0}, {1}})
	a, err := Contains(context.Background(), chain(t), dimer, Options{})
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if a != nil {
		t.Error("found an embedding that cannot exist")
	}
}

func TestContainsOversizedNeedle(t *testing.T) {
	_, err := Contains(context.Background(), mustNetwork(t, "small", [][]int{{1}}, [][]int{{2}}), chain(t), Options{})
	if !errors.Is(err, ident.ErrShapeMismatch) {
		t.Errorf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestFindAll(t *testing.T) {
	needle := mustNetwork(t, "step",
		[][]int{{1}, {0}},
		[][]int{{0}, {1}})
	tiny := mustNetwork(t, "tiny", [][]int{{1}}, [][]int{{2}})
	dimers := mustNetwork(t, "dimers",
		[][]int{{2, 0}, {0, 2}},
		[][]int{{0, 2}, {2, 0}})
	haystacks := []*network.Network{
		chain(t), // contains A -> B
		tiny,     // too small: skipped, not an error
		dimers,   // same shape class, but no unit-coefficient reaction
	}

	rep, err := FindAll(context.Background(), needle, haystacks, Options{})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(rep.Matches) != 1 || rep.Matches[0].Network.Name() != "chain" {
		t.Fatalf("Matches = %v, want only chain", rep.Matches)
	}
	if !rep.Matches[0].Assignment.Valid(needle, rep.Matches[0].Network, ident.Weak) {
		t.Error("returned embedding invalid")
	}
	if len(rep.Undetermined) != 0 {
		t.Errorf("Undetermined = %v, want none", rep.Undetermined)
	}
}

func TestFindAllReportsUndetermined(t *testing.T) {
	// The toggle pair in its swapped order: the matching candidate is the
	// second one, so a budget of one leaves the scan undetermined.
	needle := mustNetwork(t, "toggle",
		[][]int{{1, 0}, {0, 1}},
		[][]int{{0, 1}, {1, 0}})
	haystack := mustNetwork(t, "haystack",
		[][]int{{0, 1}, {1, 0}},
		[][]int{{1, 0}, {0, 1}})

	rep, err := FindAll(context.Background(), needle, []*network.Network{haystack}, Options{Budget: 1})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(rep.Matches) != 0 {
		t.Errorf("Matches = %v, want none", rep.Matches)
	}
	if len(rep.Undetermined) != 1 || rep.Undetermined[0] != "haystack" {
		t.Errorf("Undetermined = %v, want [haystack]", rep.Undetermined)
	}
}

func TestFindAllAbortsOnContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A matchless pair with a large un-prunable space: the 6-cycle against
	// two disjoint 3-cycles. Only the canceled context can end the search.
	ringR := make([][]int, 6)
	ringP := make([][]int, 6)
	triR := make([][]int, 6)
	triP := make([][]int, 6)
	for i := 0; i < 6; i++ {
		ringR[i] = make([]int, 6)
		ringP[i] = make([]int, 6)
		triR[i] = make([]int, 6)
		triP[i] = make([]int, 6)
	}
	for j := 0; j < 6; j++ {
		ringR[j][j] = 1
		ringP[(j+1)%6][j] = 1
	}
	for j := 0; j < 3; j++ {
		triR[j][j] = 1
		triP[(j+1)%3][j] = 1
		triR[3+j][3+j] = 1
		triP[3+(j+1)%3][3+j] = 1
	}
	needle := mustNetwork(t, "ring", ringR, ringP)
	haystack := mustNetwork(t, "triangles", triR, triP)
	_, err := FindAll(ctx, needle, []*network.Network{haystack}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
