package network

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalReadRoundTrip(t *testing.T) {
	n := chain(t)
	data, err := MarshalNetwork(n)
	if err != nil {
		t.Fatalf("MarshalNetwork: %v", err)
	}
	back, err := ReadNetwork(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadNetwork: %v", err)
	}
	if !n.Equal(back) {
		t.Error("round-tripped network differs from the original")
	}
}

func TestReadNetworkValidates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "MalformedJSON",
			doc:  `{"name": "x"`,
		},
		{
			name: "ShapeMismatch",
			doc:  `{"name": "x", "reactant": [[1, 0]], "product": [[1]]}`,
		},
		{
			name: "IsolatedSpecies",
			doc:  `{"name": "x", "reactant": [[1], [0]], "product": [[1], [0]]}`,
		},
		{
			name: "WrongLabelCount",
			doc:  `{"name": "x", "species": ["A"], "reactant": [[1], [0]], "product": [[0], [1]]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadNetwork(strings.NewReader(tt.doc)); err == nil {
				t.Error("err = nil, want validation failure")
			}
		})
	}
}

func TestReadNetworkKeepsLabels(t *testing.T) {
	doc := `{
		"name": "glycolysis-toy",
		"species": ["glucose", "pyruvate"],
		"reactions": ["upper"],
		"reaction_kinds": ["uni-uni"],
		"reactant": [[1], [0]],
		"product": [[0], [1]]
	}`
	n, err := ReadNetwork(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadNetwork: %v", err)
	}
	if n.Name() != "glycolysis-toy" {
		t.Errorf("Name() = %q", n.Name())
	}
	if n.SpeciesNames()[0] != "glucose" || n.ReactionNames()[0] != "upper" {
		t.Errorf("labels not kept: %v %v", n.SpeciesNames(), n.ReactionNames())
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	nets := []*Network{
		Random(rng, "one", 3, 3),
		Random(rng, "two", 4, 2),
	}
	data, err := MarshalCollection(nets)
	if err != nil {
		t.Fatalf("MarshalCollection: %v", err)
	}
	back, err := ReadCollection(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCollection: %v", err)
	}
	if len(back) != len(nets) {
		t.Fatalf("len = %d, want %d", len(back), len(nets))
	}
	for i := range nets {
		if !nets[i].Equal(back[i]) {
			t.Errorf("network %d differs after round trip", i)
		}
	}
}

func TestReadNetworkFileNaming(t *testing.T) {
	dir := t.TempDir()
	write := func(t *testing.T, file, doc string) string {
		t.Helper()
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("ExplicitNameKept", func(t *testing.T) {
		// A chosen name survives loading even when it looks like an
		// auto-assigned one.
		path := write(t, "osc.json",
			`{"name": "net-oscillator", "reactant": [[1,0],[0,1]], "product": [[0,1],[1,0]]}`)
		n, err := ReadNetworkFile(path)
		if err != nil {
			t.Fatalf("ReadNetworkFile: %v", err)
		}
		if n.Name() != "net-oscillator" {
			t.Errorf("name = %q, want net-oscillator", n.Name())
		}
		if n.Generated() {
			t.Error("explicitly named network reports Generated() = true")
		}
	})

	t.Run("GeneratedNameReplaced", func(t *testing.T) {
		path := write(t, "relay.json",
			`{"reactant": [[1,0],[0,1]], "product": [[0,1],[1,0]]}`)
		n, err := ReadNetworkFile(path)
		if err != nil {
			t.Fatalf("ReadNetworkFile: %v", err)
		}
		if n.Name() != "relay" {
			t.Errorf("name = %q, want file base name relay", n.Name())
		}
	})
}

func TestReadCollectionFileVariants(t *testing.T) {
	dir := t.TempDir()
	n := chain(t)

	t.Run("SingleNetworkFile", func(t *testing.T) {
		path := filepath.Join(dir, "single.json")
		if err := WriteNetworkFile(n, path); err != nil {
			t.Fatalf("WriteNetworkFile: %v", err)
		}
		got, err := ReadCollectionFile(path)
		if err != nil {
			t.Fatalf("ReadCollectionFile: %v", err)
		}
		if len(got) != 1 || !got[0].Equal(n) {
			t.Errorf("got %d networks, want the single written one", len(got))
		}
	})

	t.Run("CollectionFile", func(t *testing.T) {
		path := filepath.Join(dir, "collection.json")
		if err := WriteCollectionFile([]*Network{n, n.Rename("copy")}, path); err != nil {
			t.Fatalf("WriteCollectionFile: %v", err)
		}
		got, err := ReadCollectionFile(path)
		if err != nil {
			t.Fatalf("ReadCollectionFile: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d networks, want 2", len(got))
		}
	})

	t.Run("Directory", func(t *testing.T) {
		sub := filepath.Join(dir, "networks")
		if err := os.Mkdir(sub, 0755); err != nil {
			t.Fatal(err)
		}
		// File names deliberately out of lexical order of creation.
		for _, name := range []string{"b", "a", "c"} {
			path := filepath.Join(sub, name+".json")
			if err := WriteNetworkFile(n.Rename(name), path); err != nil {
				t.Fatalf("WriteNetworkFile: %v", err)
			}
		}
		// A non-JSON file must be ignored.
		if err := os.WriteFile(filepath.Join(sub, "README.md"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := ReadCollectionFile(sub)
		if err != nil {
			t.Fatalf("ReadCollectionFile(dir): %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d networks, want 3", len(got))
		}
		for i, want := range []string{"a", "b", "c"} {
			if got[i].Name() != want {
				t.Errorf("network %d = %q, want %q (sorted by file name)", i, got[i].Name(), want)
			}
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ReadCollectionFile(filepath.Join(dir, "nope.json"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("err = %v, want ErrNotExist", err)
		}
	})
}

func TestContentHash(t *testing.T) {
	n := chain(t)
	if n.ContentHash() != n.ContentHash() {
		t.Error("ContentHash is not deterministic")
	}
	if len(n.ContentHash()) != 64 {
		t.Errorf("ContentHash length = %d, want 64 hex chars", len(n.ContentHash()))
	}
	// Position-sensitive: a permuted copy hashes differently even though the
	// fingerprint agrees.
	p, err := n.Permute([]int{1, 0, 2}, []int{0, 1})
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if n.ContentHash() == p.ContentHash() {
		t.Error("permuted copy shares a content hash")
	}
	if n.Fingerprint() != p.Fingerprint() {
		t.Error("permuted copy has a different fingerprint")
	}
	if n.ContentHash() == n.Rename("other").ContentHash() {
		t.Error("renamed copy shares a content hash")
	}
}
