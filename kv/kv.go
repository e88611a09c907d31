// Package kv provides durable flat key-value backends for a checkbook Store.
package kv

import (
	"maps"
	"sync"
)

// Memory is a backend kept in memory. Its zero value is ready to use.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
	saves   int
}

// NewMemory returns a Memory holding a copy of entries.
func NewMemory(entries map[string][]byte) *Memory {
	return &Memory{entries: clone(entries)}
}

// Load returns a copy of the entries.
func (m *Memory) Load() (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.entries), nil
}

// Save replaces the entries with a copy of entries.
func (m *Memory) Save(entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = clone(entries)
	m.saves++
	return nil
}

// Saves returns the number of successful calls to Save.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func clone(entries map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(entries))
	for k, v := range maps.All(entries) {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
