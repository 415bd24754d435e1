package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()

	_, ok := s.Get("ipHistory")
	assert.False(t, ok)

	s.Set("ipHistory", `[{"address":"203.0.113.7"}]`)
	v, ok := s.Get("ipHistory")
	assert.True(t, ok)
	assert.Equal(t, `[{"address":"203.0.113.7"}]`, v)

	assert.Equal(t, "none", GetOr(s, "lastAddress", "none"))
}

func TestSqliteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s := Open("sqlite", path)
	if _, durable := s.(*DB); !durable {
		t.Skipf("sqlite unavailable, degraded to memory")
	}

	s.Set("lastAddress", "198.51.100.9")
	s.Set("lastAddress", "203.0.113.7") // upsert, not insert

	v, ok := s.Get("lastAddress")
	assert.True(t, ok)
	assert.Equal(t, "203.0.113.7", v)

	// A fresh handle over the same file sees the state.
	r := Open("sqlite", path)
	assert.Equal(t, "203.0.113.7", GetOr(r, "lastAddress", ""))
}

func TestOpenFailureDegradesToMemory(t *testing.T) {
	s := Open("no-such-driver", "state.db")

	_, durable := s.(*DB)
	assert.False(t, durable)

	// Degraded store still functions for the session.
	s.Set("lastAddress", "198.51.100.9")
	assert.Equal(t, "198.51.100.9", GetOr(s, "lastAddress", ""))
}
