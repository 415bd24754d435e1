package leak

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/util"
)

func waitEvents(t *testing.T, ch <-chan string, want ...string) {
	t.Helper()
	for _, w := range want {
		select {
		case got := <-ch:
			assert.Equal(t, w, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s event", w)
		}
	}
}

func TestPipelineScenario(t *testing.T) {
	var lookups int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&lookups, 1)
		_, _ = w.Write([]byte(`{"ip":"198.51.100.9","country":"NL","city":"Amsterdam"}`))
	}))
	defer srv.Close()

	d := New(&Config{LookupURL: srv.URL}, store.NewMemory())

	eventCh := make(chan string, 16)
	d.OnEvent = func(e string) { eventCh <- e }

	s := d.NewSession()
	d.Submit(s, "candidate:1 1 udp 2122260223 10.0.0.2 54321 typ host generation 0")
	d.Submit(s, "candidate:2 1 udp 1677729535 198.51.100.9 58746 typ srflx raddr 0.0.0.0 rport 0")
	waitEvents(t, eventCh, EventCandidate, EventCandidate, EventAdmitted, EventResolved)
	d.Submit(s, "candidate:2 1 udp 1677729535 198.51.100.9 58747 typ srflx raddr 0.0.0.0 rport 0")
	waitEvents(t, eventCh, EventCandidate)

	assert.Equal(t, int32(1), atomic.LoadInt32(&lookups), "exactly one resolution call")
	assert.Equal(t, "198.51.100.9", d.Current())

	history := d.History()
	assert.Equal(t, 1, len(history))
	assert.Equal(t, "198.51.100.9", history[0].Address)
	assert.Equal(t, "Netherlands", history[0].Metadata.Country)
	assert.Equal(t, "Amsterdam", history[0].Metadata.City)
}

func TestPipelineResolutionFailureKeepsLedgerUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"bad token"}}`))
	}))
	defer srv.Close()

	d := New(&Config{
		LookupURL:     srv.URL,
		LookupTimeout: util.Duration(2 * time.Second),
	}, store.NewMemory())

	eventCh := make(chan string, 16)
	d.OnEvent = func(e string) { eventCh <- e }

	s := d.NewSession()
	d.Submit(s, "candidate:2 1 udp 1677729535 198.51.100.9 58746 typ srflx")
	waitEvents(t, eventCh, EventCandidate, EventAdmitted, EventResolveFailed)

	assert.Equal(t, "", d.Current())
	assert.Equal(t, 0, len(d.History()))

	// The session set still suppresses the address for this connection;
	// a fresh session (next connection) may retry it.
	assert.False(t, s.Admit("198.51.100.9"))
	assert.True(t, d.NewSession().Admit("198.51.100.9"))
}

func TestAttachWithoutConnection(t *testing.T) {
	d := New(nil, store.NewMemory())

	s, err := d.Attach(nil, nil)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNoConnection)
}
