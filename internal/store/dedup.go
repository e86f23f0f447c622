// Package store provides the key sets used to diff track lists against the
// curated playlist.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultFalsePositiveRate is the bloom filter rate used by NewPlaylistSet.
const DefaultFalsePositiveRate = 0.001

// DedupStore is a bounded, thread-safe set of keys. The bloom filter answers
// most misses without touching the map; the LRU evicts the earliest added
// keys once capacity is exceeded.
type DedupStore struct {
	keys     map[string]struct{}
	bloom    *bloom.BloomFilter
	recent   *lru.Cache[string, struct{}]
	mutex    sync.RWMutex
	capacity int
	fpRate   float64
}

// NewDedupStore creates a set holding at most capacity keys.
func NewDedupStore(capacity int, fpRate float64) *DedupStore {
	if capacity < 1 {
		capacity = 1
	}

	ds := &DedupStore{
		keys:     make(map[string]struct{}),
		bloom:    bloom.NewWithEstimates(uint(capacity), fpRate),
		capacity: capacity,
		fpRate:   fpRate,
	}
	// evictions run under ds.mutex, from inside add or Load
	ds.recent, _ = lru.NewWithEvict[string, struct{}](capacity, func(key string, _ struct{}) {
		delete(ds.keys, key)
	})
	return ds
}

// NewPlaylistSet sizes a set so that existing playlist tracks plus incoming
// tracks fit without eviction.
func NewPlaylistSet(existing, incoming int) *DedupStore {
	return NewDedupStore(existing+incoming, DefaultFalsePositiveRate)
}

func (ds *DedupStore) Has(key string) bool {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return ds.has(key)
}

func (ds *DedupStore) Add(key string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	ds.add(key)
}

// Load replaces the contents of the set with keys. Empty keys are skipped.
func (ds *DedupStore) Load(keys []string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	ds.recent.Purge()
	ds.keys = make(map[string]struct{})
	ds.bloom = bloom.NewWithEstimates(uint(ds.capacity), ds.fpRate)

	for _, key := range keys {
		ds.add(key)
	}
}

// Missing returns the keys not yet in the set, in input order and without
// repeats, and adds them.
func (ds *DedupStore) Missing(keys []string) []string {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	var missing []string
	for _, key := range keys {
		if key == "" || ds.has(key) {
			continue
		}
		ds.add(key)
		missing = append(missing, key)
	}
	return missing
}

func (ds *DedupStore) Size() int {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return len(ds.keys)
}

func (ds *DedupStore) has(key string) bool {
	if !ds.bloom.TestString(key) {
		return false
	}
	_, exists := ds.keys[key]
	return exists
}

func (ds *DedupStore) add(key string) {
	if key == "" {
		return
	}
	if _, exists := ds.keys[key]; exists {
		return
	}

	ds.keys[key] = struct{}{}
	ds.bloom.AddString(key)
	ds.recent.Add(key, struct{}{})
}
