package ident

import (
	"context"
	"errors"
	"testing"

	"github.com/crn-tools/crnident/pkg/cache"
)

func newFileBackedSearcher(t *testing.T) *CachedSearcher {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return NewCachedSearcher(c)
}

func TestCachedSearcherMatchRoundTrip(t *testing.T) {
	s := newFileBackedSearcher(t)
	ref := toggle(t)
	target := toggleSwapped(t)

	a, cached, err := s.SearchWithInfo(context.Background(), ref, target, Options{})
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if cached {
		t.Error("first search reported a cache hit")
	}
	if a == nil {
		t.Fatal("no assignment")
	}

	b, cached, err := s.SearchWithInfo(context.Background(), ref, target, Options{})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if !cached {
		t.Error("second search missed the cache")
	}
	if b == nil || !b.Valid(ref, target, Weak) {
		t.Error("cached assignment invalid")
	}
}

func TestCachedSearcherStoresNone(t *testing.T) {
	s := newFileBackedSearcher(t)
	ref := cycle(t, "c6", 6)
	target := twoTriangles(t)

	a, _, err := s.SearchWithInfo(context.Background(), ref, target, Options{})
	if err != nil || a != nil {
		t.Fatalf("first search: a = %v, err = %v, want definite NONE", a, err)
	}
	a, cached, err := s.SearchWithInfo(context.Background(), ref, target, Options{})
	if err != nil || a != nil {
		t.Fatalf("second search: a = %v, err = %v", a, err)
	}
	if !cached {
		t.Error("definite NONE was not served from the cache")
	}
}

func TestCachedSearcherSkipsUndetermined(t *testing.T) {
	s := newFileBackedSearcher(t)
	ref := toggle(t)
	target := toggleSwapped(t)
	opts := Options{Budget: 1}

	for call := 0; call < 2; call++ {
		a, cached, err := s.SearchWithInfo(context.Background(), ref, target, opts)
		if !errors.Is(err, ErrUndetermined) {
			t.Fatalf("call %d: err = %v, want ErrUndetermined", call, err)
		}
		if a != nil || cached {
			t.Errorf("call %d: a = %v, cached = %v; undetermined must never come from the cache", call, a, cached)
		}
	}
}

func TestCachedSearcherKeySeparatesParameters(t *testing.T) {
	s := newFileBackedSearcher(t)
	ref := toggle(t)
	target := toggleSwapped(t)

	if _, _, err := s.SearchWithInfo(context.Background(), ref, target, Options{Budget: 10}); err != nil {
		t.Fatalf("seed search: %v", err)
	}
	// A different budget asks a different question and must not reuse the
	// stored outcome.
	_, cached, err := s.SearchWithInfo(context.Background(), ref, target, Options{Budget: 20})
	if err != nil {
		t.Fatalf("search with other budget: %v", err)
	}
	if cached {
		t.Error("outcome cached under one budget served for another")
	}
	// Same for the relation.
	_, cached, err = s.SearchWithInfo(context.Background(), ref, target, Options{Budget: 10, Relation: Strong})
	if err != nil {
		t.Fatalf("strong search: %v", err)
	}
	if cached {
		t.Error("weak outcome served for a strong search")
	}
}

func TestCachedSearcherNilCache(t *testing.T) {
	s := &CachedSearcher{}
	ref := toggle(t)
	a, cached, err := s.SearchWithInfo(context.Background(), ref, ref, Options{})
	if err != nil || a == nil {
		t.Fatalf("a = %v, err = %v", a, err)
	}
	if cached {
		t.Error("nil cache reported a hit")
	}
}
