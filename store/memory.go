package store

import (
	"slices"
	"sync"
)

// MemoryPersister keeps saved collections in memory. Nothing is written to
// disk, so mutations are lost on restart. Safe for concurrent use.
type MemoryPersister struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

// NewMemoryPersister returns a MemoryPersister whose Load yields seed. A seed
// collection that cannot be encoded is kept as a shallow copy.
func NewMemoryPersister(seed map[string][]Record) *MemoryPersister {
	m := &MemoryPersister{collections: make(map[string][]Record, len(seed))}
	for name, records := range seed {
		copied, err := deepCopy(records)
		if err != nil {
			copied = slices.Clone(records)
		}
		m.collections[name] = copied
	}
	return m
}

// deepCopy returns a deep copy of records by round-tripping through JSON.
func deepCopy(src []Record) ([]Record, error) {
	b, err := EncodeRecords(src)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(b)
}

func (m *MemoryPersister) Load() (map[string][]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]Record, len(m.collections))
	for name, records := range m.collections {
		copied, err := deepCopy(records)
		if err != nil {
			return nil, err
		}
		result[name] = copied
	}
	return result, nil
}

func (m *MemoryPersister) Save(resource string, records []Record) error {
	copied, err := deepCopy(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[resource] = copied
	return nil
}

// Snapshot returns a copy of the last saved collection of a resource. ok is
// false if the resource was never saved or cannot be copied.
func (m *MemoryPersister) Snapshot(resource string) ([]Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.collections[resource]
	if !ok {
		return nil, false
	}
	copied, err := deepCopy(records)
	if err != nil {
		return nil, false
	}
	return copied, true
}

func (m *MemoryPersister) Close() error {
	return nil
}
