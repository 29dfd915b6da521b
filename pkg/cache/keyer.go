package cache

// Keyer generates cache keys for the things crnident caches. Implementations
// must be deterministic: the same inputs always yield the same key.
type Keyer interface {
	// FingerprintKey generates a key for a network's fingerprint, derived
	// from the content hash of its canonical JSON form.
	FingerprintKey(contentHash string) string

	// PairKey generates a key for a pairwise search outcome. The key
	// covers both content hashes, the relation and mode, and the budget:
	// a NONE confirmed under a small budget is not the same fact as one
	// confirmed under a larger budget.
	PairKey(relation, mode, refHash, targetHash string, budget int64) string
}

// PairKeyOpts bundles the search parameters that distinguish pair keys.
type PairKeyOpts struct {
	Relation string
	Mode     string
	Budget   int64
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// FingerprintKey generates a key for fingerprint caching.
func (k *DefaultKeyer) FingerprintKey(contentHash string) string {
	return hashKey("fingerprint", contentHash)
}

// PairKey generates a key for pairwise search outcome caching.
func (k *DefaultKeyer) PairKey(relation, mode, refHash, targetHash string, budget int64) string {
	return hashKey("pair", refHash, targetHash, PairKeyOpts{
		Relation: relation,
		Mode:     mode,
		Budget:   budget,
	})
}

// ScopedKeyer wraps a Keyer with a prefix so separate collections or users
// get isolated cache namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FingerprintKey generates a prefixed fingerprint key.
func (k *ScopedKeyer) FingerprintKey(contentHash string) string {
	return k.prefix + k.inner.FingerprintKey(contentHash)
}

// PairKey generates a prefixed pair key.
func (k *ScopedKeyer) PairKey(relation, mode, refHash, targetHash string, budget int64) string {
	return k.prefix + k.inner.PairKey(relation, mode, refHash, targetHash, budget)
}
