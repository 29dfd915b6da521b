package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "pair:abc", []byte("outcome"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "pair:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "outcome" {
		t.Errorf("Get = %q, want %q", data, "outcome")
	}

	// Unknown key is a miss, not an error
	_, hit, err = c.Get(ctx, "pair:missing")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss for unknown key")
	}

	// Delete then miss
	if err := c.Delete(ctx, "pair:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "pair:abc")
	if hit {
		t.Error("expected miss after Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}
}

func TestRedisCache(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedisCache(ctx, RedisOptions{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "pair:abc", []byte("outcome"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "pair:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "outcome" {
		t.Errorf("Get = %q, want %q", data, "outcome")
	}

	// Expiry honors the TTL
	srv.FastForward(2 * time.Hour)
	_, hit, err = c.Get(ctx, "pair:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss after TTL elapsed")
	}

	// Delete is idempotent
	if err := c.Delete(ctx, "pair:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "pair:abc"); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
}

func TestRedisCacheConnectFailure(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// FingerprintKey is prefixed and deterministic
	fk := k.FingerprintKey("aaa")
	if !strings.HasPrefix(fk, "fingerprint:") {
		t.Errorf("FingerprintKey should carry the fingerprint prefix: %s", fk)
	}
	if fk != k.FingerprintKey("aaa") {
		t.Error("FingerprintKey should be deterministic")
	}

	// PairKey should include all parameters in the hash
	pk1 := k.PairKey("weak", "exact", "aaa", "bbb", 1000)
	pk2 := k.PairKey("weak", "exact", "aaa", "bbb", 2000)
	if pk1 == pk2 {
		t.Error("Different budgets should produce different keys")
	}
	pk3 := k.PairKey("strong", "exact", "aaa", "bbb", 1000)
	if pk1 == pk3 {
		t.Error("Different relations should produce different keys")
	}
	pk4 := k.PairKey("weak", "subset", "aaa", "bbb", 1000)
	if pk1 == pk4 {
		t.Error("Different modes should produce different keys")
	}
	pk5 := k.PairKey("weak", "exact", "bbb", "aaa", 1000)
	if pk1 == pk5 {
		t.Error("Swapped hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	fk := scoped.FingerprintKey("aaa")
	if !strings.HasPrefix(fk, "user:123:fingerprint:") {
		t.Errorf("ScopedKeyer FingerprintKey should be prefixed: %s", fk)
	}

	pk := scoped.PairKey("weak", "exact", "aaa", "bbb", 0)
	if !strings.HasPrefix(pk, "user:123:") {
		t.Errorf("ScopedKeyer PairKey should be prefixed: %s", pk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.FingerprintKey("aaa")
	if !strings.HasPrefix(key, "prefix:fingerprint:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrBackend)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrBackend.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrBackend)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrBackend)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
