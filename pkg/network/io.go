package network

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// Network Serialization API
// =============================================================================

// networkJSON is the interchange form of a network. Parsing of biological
// model-description formats happens outside this module; loaders emit this
// JSON shape.
type networkJSON struct {
	Name          string   `json:"name"`
	Species       []string `json:"species,omitempty"`
	Reactions     []string `json:"reactions,omitempty"`
	SpeciesKinds  []string `json:"species_kinds,omitempty"`
	ReactionKinds []string `json:"reaction_kinds,omitempty"`
	Reactant      [][]int  `json:"reactant"`
	Product       [][]int  `json:"product"`
}

// collectionJSON wraps a list of networks.
type collectionJSON struct {
	Networks []networkJSON `json:"networks"`
}

// MarshalNetwork converts a network to JSON bytes.
// The field order is fixed, so the output is deterministic and usable as a
// content-hash input.
func MarshalNetwork(n *Network) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNetworkTo(n, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNetworkFile writes a network to a JSON file with 0644 permissions.
func WriteNetworkFile(n *Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeNetworkTo(n, f)
}

// ReadNetwork decodes a JSON network from an io.Reader, validating it via
// [New]. Malformed structure is reported wrapping [ErrInvalidNetwork].
func ReadNetwork(r io.Reader) (*Network, error) {
	var data networkJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromJSON(data)
}

// ReadNetworkFile reads a JSON file and returns the decoded network.
// The file base name (without extension) is used when the document carries
// no name.
func ReadNetworkFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	n, err := ReadNetwork(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if n.Generated() {
		base := filepath.Base(path)
		if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
			n = n.Rename(name)
		}
	}
	return n, nil
}

// MarshalCollection converts a set of networks to JSON bytes.
func MarshalCollection(networks []*Network) ([]byte, error) {
	doc := collectionJSON{Networks: make([]networkJSON, len(networks))}
	for i, n := range networks {
		doc.Networks[i] = toJSON(n)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCollectionFile writes a set of networks to a single JSON file.
func WriteCollectionFile(networks []*Network, path string) error {
	data, err := MarshalCollection(networks)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadCollection decodes a collection document.
func ReadCollection(r io.Reader) ([]*Network, error) {
	var doc collectionJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	networks := make([]*Network, 0, len(doc.Networks))
	for i, data := range doc.Networks {
		n, err := fromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		networks = append(networks, n)
	}
	return networks, nil
}

// ReadCollectionFile reads either a collection document or, when path is a
// directory, every *.json network file inside it (sorted by file name, so
// repeated runs see the same order).
func ReadCollectionFile(path string) ([]*Network, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return readDirectory(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	networks, err := ReadCollection(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(networks) == 0 {
		// Not a collection document; try a single-network file.
		n, err := ReadNetworkFile(path)
		if err != nil {
			return nil, err
		}
		return []*Network{n}, nil
	}
	return networks, nil
}

func readDirectory(dir string) ([]*Network, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	networks := make([]*Network, 0, len(paths))
	for _, p := range paths {
		n, err := ReadNetworkFile(p)
		if err != nil {
			return nil, err
		}
		networks = append(networks, n)
	}
	return networks, nil
}

// ContentHash returns the SHA-256 hex digest of the network's canonical
// JSON form. Unlike fingerprints it is position-sensitive: permuted copies
// hash differently. Used for cache keys.
func (n *Network) ContentHash() string {
	data, err := MarshalNetwork(n)
	if err != nil {
		// Marshal of an in-memory network cannot fail; keep the signature
		// simple for callers.
		panic(fmt.Sprintf("marshal network %s: %v", n.name, err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeNetworkTo(n *Network, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(n)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func toJSON(n *Network) networkJSON {
	return networkJSON{
		Name:          n.name,
		Species:       n.speciesNames,
		Reactions:     n.reactionNames,
		SpeciesKinds:  n.speciesKinds,
		ReactionKinds: n.reactionKinds,
		Reactant:      matrixRows(n.reactant),
		Product:       matrixRows(n.product),
	}
}

func fromJSON(data networkJSON) (*Network, error) {
	n, err := NewFromRows(data.Name, data.Reactant, data.Product)
	if err != nil {
		return nil, err
	}
	for field, labels := range map[string][]string{
		"species":        data.Species,
		"species_kinds":  data.SpeciesKinds,
		"reactions":      data.Reactions,
		"reaction_kinds": data.ReactionKinds,
	} {
		if labels == nil {
			continue
		}
		want := n.NumSpecies()
		if strings.HasPrefix(field, "reaction") {
			want = n.NumReactions()
		}
		if len(labels) != want {
			return nil, fmt.Errorf("%w: %s has %d entries, want %d", ErrInvalidNetwork, field, len(labels), want)
		}
	}
	return n.withLabels(data.Species, data.Reactions, data.SpeciesKinds, data.ReactionKinds), nil
}

func matrixRows(m *Matrix) [][]int {
	rows := make([][]int, m.Rows())
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}

// Rename returns a copy with a different identifier. The copy counts as
// explicitly named even when the receiver's name was auto-assigned.
func (n *Network) Rename(name string) *Network {
	c := *n
	c.name = name
	c.generated = false
	return &c
}
