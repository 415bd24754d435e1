// Package store provides the durable key/value state shared by the leak
// detection core and the web panel.
//
// Failures are contained here: against a broken backend Get misses and
// Set is a no-op, so callers keep working with session-only memory when
// no persistence is available at all.
package store

import "sync"

// Store is a flat string key/value store.
type Store interface {
	// Get returns the value stored under key, or ok=false when the key
	// is absent or the backend is unavailable.
	Get(key string) (value string, ok bool)
	// Set durably stores value under key. Backend failures are logged
	// and swallowed.
	Set(key, value string)
}

// GetOr returns the value under key, or def when it is absent.
func GetOr(s Store, key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Memory is the fallback Store when no durable backend can be opened.
// State lives for the process only.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	return v, ok
}

func (s *Memory) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = value
}
