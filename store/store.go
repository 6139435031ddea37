// Package store holds the in-memory resource collections and mirrors them to
// a Persister after every mutation.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
)

var (
	// ErrResourceNotFound is returned for a resource name that was not loaded
	// at startup.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrItemNotFound is returned when no record matches the requested id.
	ErrItemNotFound = errors.New("item not found")
)

// Persister loads the initial collections and mirrors each mutated
// collection back to durable storage.
type Persister interface {
	// Load returns every resource known to the backend, keyed by name.
	Load() (map[string][]Record, error)

	// Save overwrites the stored collection of a resource with records.
	Save(resource string, records []Record) error

	// Close releases backend resources.
	Close() error
}

// collection is one resource's ordered records. mu is held across
// read-mutate-persist so concurrent writers to the same resource cannot lose
// each other's updates.
type collection struct {
	mu      sync.RWMutex
	records []Record
}

// Store maps resource names to their collections. The set of resources is
// fixed once Open returns.
type Store struct {
	persister   Persister
	logger      *slog.Logger
	collections map[string]*collection
}

// Open loads every resource from p and returns a Store ready to serve.
func Open(p Persister, logger *slog.Logger) (*Store, error) {
	loaded, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	s := &Store{
		persister:   p,
		logger:      logger,
		collections: make(map[string]*collection, len(loaded)),
	}
	for name, records := range loaded {
		if records == nil {
			records = []Record{}
		}
		s.collections[name] = &collection{records: records}
	}
	for _, name := range s.Resources() {
		logger.Info("loaded resource", "resource", name, "items", len(s.collections[name].records))
	}
	return s, nil
}

// Has reports whether name is a known resource.
func (s *Store) Has(name string) bool {
	_, ok := s.collections[name]
	return ok
}

// Resources returns the known resource names, sorted.
func (s *Store) Resources() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records held for a resource, or 0 if unknown.
func (s *Store) Len(name string) int {
	c, ok := s.collections[name]
	if !ok {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (s *Store) collection(name string) (*collection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotFound, name)
	}
	return c, nil
}

// List returns the records of a resource in insertion order. The returned
// slice is a copy; the records are shared.
func (s *Store) List(name string) ([]Record, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.records), nil
}

// Get returns the first record whose id, in string form, equals id.
func (s *Store) Get(name, id string) (Record, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records {
		if r.MatchesID(id) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrItemNotFound, name, id)
}

// Create assigns rec the next id of the resource, appends it and persists
// the collection. Any id already present in rec is replaced.
func (s *Store) Create(name string, rec Record) (Record, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rec[IDKey] = NextID(c.records)
	c.records = append(c.records, rec)
	s.persist(name, c.records)
	return rec, nil
}

// Replace swaps the first record whose id matches rec's id for rec, wholesale,
// and persists the collection.
func (s *Store) Replace(name string, rec Record) (Record, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}
	id, ok := rec.ID()
	if !ok {
		return nil, fmt.Errorf("%w: record has no id", ErrItemNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.records, func(r Record) bool { return r.MatchesID(id) })
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s/%s", ErrItemNotFound, name, id)
	}
	c.records[idx] = rec
	s.persist(name, c.records)
	return rec, nil
}

// Delete removes every record whose id matches and persists the collection.
// It returns the number of records removed.
func (s *Store) Delete(name, id string) (int, error) {
	c, err := s.collection(name)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if !r.MatchesID(id) {
			kept = append(kept, r)
		}
	}
	removed := len(c.records) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: %s/%s", ErrItemNotFound, name, id)
	}
	c.records = kept
	s.persist(name, c.records)
	return removed, nil
}

// Close closes the underlying Persister.
func (s *Store) Close() error {
	return s.persister.Close()
}

// persist mirrors records to the Persister. Failures are logged and dropped:
// the in-memory collection stays authoritative.
func (s *Store) persist(name string, records []Record) {
	if err := s.persister.Save(name, records); err != nil {
		s.logger.Error("failed to save resource", "resource", name, "err", err)
		return
	}
	s.logger.Debug("saved resource", "resource", name, "items", len(records))
}
