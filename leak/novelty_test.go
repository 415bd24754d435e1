package leak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
)

func TestAdmitOncePerSession(t *testing.T) {
	l := NewLedger(store.NewMemory())
	s := newSession(l)

	assert.True(t, s.Admit("198.51.100.9"))
	assert.False(t, s.Admit("198.51.100.9"), "second admit of the same address")
	assert.True(t, s.Admit("203.0.113.7"), "a different address is still novel")
	assert.False(t, s.Admit(""))
}

func TestAdmitRejectsLastReported(t *testing.T) {
	st := store.NewMemory()
	l := NewLedger(st)
	l.Record("198.51.100.9", &Metadata{Address: "198.51.100.9"})

	// A fresh session (new connection) must not re-report the address
	// persisted as last reported.
	s := newSession(NewLedger(st))
	assert.False(t, s.Admit("198.51.100.9"))
	assert.True(t, s.Admit("203.0.113.7"))
}

func TestAdmittedStaysBurnedAfterFailedResolution(t *testing.T) {
	// Admission marks the session set even though the ledger never saw
	// the address (resolution may fail later); re-admitting is false.
	l := NewLedger(store.NewMemory())
	s := newSession(l)

	assert.True(t, s.Admit("198.51.100.9"))
	assert.Equal(t, "", l.LastReported())
	assert.False(t, s.Admit("198.51.100.9"))
}
