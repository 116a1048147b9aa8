package catalog

import (
	"strconv"
	"sync/atomic"
)

// Snapshot is an immutable view of the loaded catalog. All queries run
// against a snapshot, so concurrent readers never observe a partial load.
type Snapshot struct {
	spas []Spa
	byID map[int]int // id -> index into spas
}

func newSnapshot(spas []Spa) *Snapshot {
	byID := make(map[int]int, len(spas))
	for i, s := range spas {
		byID[s.ID] = i
	}
	return &Snapshot{spas: spas, byID: byID}
}

// Len returns the number of records in the snapshot.
func (sn *Snapshot) Len() int { return len(sn.spas) }

// All returns the records in load order. Callers must not mutate the
// returned slice.
func (sn *Snapshot) All() []Spa { return sn.spas }

// FindByID returns the record whose id matches raw, coerced to a number.
// Non-numeric input and unknown ids both yield ok=false.
func (sn *Snapshot) FindByID(raw string) (Spa, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return Spa{}, false
	}
	i, ok := sn.byID[id]
	if !ok {
		return Spa{}, false
	}
	return sn.spas[i], true
}

// Store owns the current catalog snapshot. Load publishes a fully-built
// snapshot with an atomic pointer swap: readers see either the old or the
// new catalog, never a mix, and never block each other.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a Store with an empty snapshot published, so Snapshot is
// safe to call before the first Load.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(newSnapshot(nil))
	return s
}

// Load reads the catalog CSV at path and publishes it. On error the
// previously published snapshot remains in place.
func (s *Store) Load(path string) error {
	spas, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.current.Store(newSnapshot(spas))
	return nil
}

// Snapshot returns the currently published catalog view.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}
