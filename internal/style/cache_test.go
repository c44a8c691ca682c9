package style

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Load(path, dir string) (Provider, error) {
	l.calls.Add(1)
	return NewDeclarativeProvider(nil, nil), nil
}

// TestCacheIdempotence exercises Testable Property 3: repeated
// register/lookup of the same stylesheet path parses at most once and
// returns the same object identity.
func TestCacheIdempotence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.yaml")
	if err := os.WriteFile(path, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &countingLoader{}
	cache := NewCache(loader)

	p1, err := cache.Get(path)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := cache.Get(path)
	if err != nil {
		t.Fatal(err)
	}

	if p1 != p2 {
		t.Fatal("expected same Provider identity on repeated Get")
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected exactly one parse, got %d", loader.calls.Load())
	}
}

// TestCacheConcurrentFirstMiss exercises the concurrent first-miss
// requirement: many goroutines racing to resolve the same unseen path
// must still only trigger one parse.
func TestCacheConcurrentFirstMiss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.yaml")
	if err := os.WriteFile(path, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &countingLoader{}
	cache := NewCache(loader)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(path); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if loader.calls.Load() != 1 {
		t.Fatalf("expected exactly one parse under concurrency, got %d", loader.calls.Load())
	}
}

func TestCacheStyleNotReadable(t *testing.T) {
	cache := NewCache(&countingLoader{})
	if _, err := cache.Get("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for unreadable path")
	}
}
