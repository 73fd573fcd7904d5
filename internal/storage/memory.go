package storage

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"ordermetrics/internal/dataprocessing"
	"ordermetrics/pkg/contracts/domain"
)

// DefaultShards is the shard count used by NewMemoryStore when n <= 0
const DefaultShards = 32

var (
	// ErrEntryNotFound is returned by Get for unknown ids
	ErrEntryNotFound = errors.New("entry not found")

	// ErrEntryExists is returned by Put when the id is already stored
	ErrEntryExists = errors.New("entry already exists")
)

// Entry is one ingested file: its cleaned table and processing summary
type Entry struct {
	ID      string
	Table   *dataprocessing.Table
	Summary domain.Summary
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// MemoryStore is a sharded in-memory store of entries keyed by file id.
// Ids in different shards never share a lock.
type MemoryStore struct {
	shards []*shard
}

// NewMemoryStore creates a store with n shards
func NewMemoryStore(n int) *MemoryStore {
	if n <= 0 {
		n = DefaultShards
	}

	s := &MemoryStore{shards: make([]*shard, n)}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*Entry)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Put stores a new entry
func (s *MemoryStore) Put(entry *Entry) error {
	if entry == nil || entry.ID == "" {
		return errors.New("entry id is required")
	}

	sh := s.shardFor(entry.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.entries[entry.ID]; exists {
		return fmt.Errorf("%w: %s", ErrEntryExists, entry.ID)
	}

	sh.entries[entry.ID] = entry
	return nil
}

// Get retrieves an entry by id. The returned entry must not be modified.
func (s *MemoryStore) Get(id string) (*Entry, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	entry, exists := sh.entries[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return entry, nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}

// Clear removes every entry and returns how many were dropped
func (s *MemoryStore) Clear() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.entries = make(map[string]*Entry)
		sh.mu.Unlock()
	}
	return n
}
