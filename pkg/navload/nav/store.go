package nav

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies a loader. It is minted once when the loader is defined
// and used as the Entry Store key.
type Handle struct {
	id uuid.UUID
}

func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h Handle) String() string {
	return h.id.String()
}

// Entry is the per-loader, per-router state. Concrete entries live in the
// loader package.
type Entry interface {
	// Commit publishes staged state if the entry is still pending for t.
	Commit(t *Target)
}

// Store maps loader handles to entries for one router. It also serves as
// the router-wide lock: every read or write of entry state happens with the
// store locked. Get, GetOrCreate and Len expect the caller to hold it.
type Store struct {
	sync.Mutex
	entries map[Handle]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[Handle]Entry)}
}

// Get returns the entry for h, if one was created.
func (s *Store) Get(h Handle) (Entry, bool) {
	e, ok := s.entries[h]
	return e, ok
}

// GetOrCreate returns the entry for h, creating it with create on first use.
func (s *Store) GetOrCreate(h Handle, create func() Entry) (Entry, bool) {
	if e, ok := s.entries[h]; ok {
		return e, false
	}
	e := create()
	s.entries[h] = e
	return e, true
}

func (s *Store) Len() int {
	return len(s.entries)
}
