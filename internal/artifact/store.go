package artifact

import (
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// Store holds the active bundle set behind an atomic pointer. In-flight
// requests resolve their bundle once and keep using it, so a hot swap is
// observed either entirely old or entirely new, never a mix.
type Store struct {
	ptr atomic.Pointer[map[string]*Bundle]
}

// NewStore creates a store with an initial bundle set.
func NewStore(bundles map[string]*Bundle) *Store {
	s := &Store{}
	s.ptr.Store(&bundles)
	return s
}

// Swap atomically replaces the full bundle set.
func (s *Store) Swap(bundles map[string]*Bundle) {
	s.ptr.Store(&bundles)
}

// Get resolves a variant's bundle from the current set.
func (s *Store) Get(variant string) (*Bundle, error) {
	bundles := s.ptr.Load()
	if bundles == nil {
		return nil, eris.New("artifact: store is empty")
	}
	b, ok := (*bundles)[variant]
	if !ok {
		return nil, eris.Errorf("artifact: no bundle for variant %q", variant)
	}
	return b, nil
}

// All returns the current bundle set. The map is the live set, not a copy;
// callers treat it as read-only.
func (s *Store) All() map[string]*Bundle {
	bundles := s.ptr.Load()
	if bundles == nil {
		return nil
	}
	return *bundles
}

// Variants lists the loaded variant names.
func (s *Store) Variants() []string {
	bundles := s.ptr.Load()
	if bundles == nil {
		return nil
	}
	out := make([]string, 0, len(*bundles))
	for name := range *bundles {
		out = append(out, name)
	}
	return out
}
