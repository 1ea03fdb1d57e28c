// Package cas provides an in-memory content-addressable payload store keyed by
// BLAKE3 digests. Payloads are reference counted so that identical states
// recorded many times share a single copy, and a payload is freed once the
// last record referencing it is evicted.
package cas

import (
	"encoding/hex"
	"fmt"
	"sync"

	"lukechampine.com/blake3"
)

// Hash represents a BLAKE3-256 hash value.
type Hash [32]byte

// String returns the hexadecimal representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// SumB3 computes the BLAKE3 hash of the given data.
func SumB3(data []byte) Hash {
	return blake3.Sum256(data)
}

type object struct {
	data []byte
	refs int
}

// MemoryCAS implements a reference-counted store with thread-safe access.
type MemoryCAS struct {
	mu    sync.RWMutex
	data  map[Hash]*object
	bytes int
}

// NewMemoryCAS creates a new in-memory CAS.
func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{
		data: make(map[Hash]*object),
	}
}

// Put stores data under its hash, or adds a reference if it is already
// present, and returns the hash.
func (m *MemoryCAS) Put(data []byte) (Hash, error) {
	if len(data) == 0 {
		return Hash{}, fmt.Errorf("empty payload")
	}
	hash := SumB3(data)

	m.mu.Lock()
	defer m.mu.Unlock()

	if obj, ok := m.data[hash]; ok {
		obj.refs++
		return hash, nil
	}

	// Store a copy to avoid external mutations
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	m.data[hash] = &object{data: dataCopy, refs: 1}
	m.bytes += len(dataCopy)

	return hash, nil
}

// Get retrieves data by its hash.
func (m *MemoryCAS) Get(hash Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, exists := m.data[hash]
	if !exists {
		return nil, fmt.Errorf("hash not found: %s", hash)
	}

	// Return a copy to avoid external mutations
	result := make([]byte, len(obj.data))
	copy(result, obj.data)
	return result, nil
}

// Release drops one reference. The payload is deleted when no references
// remain. Releasing an unknown hash is a no-op.
func (m *MemoryCAS) Release(hash Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.data[hash]
	if !ok {
		return
	}
	obj.refs--
	if obj.refs <= 0 {
		m.bytes -= len(obj.data)
		delete(m.data, hash)
	}
}

// Len returns the number of distinct payloads stored in the CAS.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Size returns the total number of payload bytes held.
func (m *MemoryCAS) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bytes
}

// Reset drops every payload regardless of reference counts.
func (m *MemoryCAS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[Hash]*object)
	m.bytes = 0
}
