package leak

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	geolocator "github.com/tyroxcc/ome-tv-ip-geolocator"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
)

func meta(addr string) *Metadata {
	return &Metadata{Address: addr, Country: Unknown, ResolvedAt: time.Now()}
}

func TestRecordEvictsBeyondBound(t *testing.T) {
	l := NewLedger(store.NewMemory())

	var addrs []string
	for i := 1; i <= 6; i++ {
		a := fmt.Sprintf("203.0.113.%d", i)
		addrs = append(addrs, a)
		l.Record(a, meta(a))
	}

	got := l.List()
	assert.Equal(t, MaxHistory, len(got))
	// Most recent first; the first recorded address fell off the tail.
	for i, e := range got {
		assert.Equal(t, addrs[5-i], e.Address)
	}
	assert.Equal(t, "203.0.113.6", l.LastReported())
}

func TestRecordMovesToFront(t *testing.T) {
	l := NewLedger(store.NewMemory())
	l.now = func() time.Time { return time.Unix(100, 0) }
	l.Record("198.51.100.1", meta("198.51.100.1"))
	l.Record("198.51.100.2", meta("198.51.100.2"))

	l.now = func() time.Time { return time.Unix(200, 0) }
	l.Record("198.51.100.1", meta("198.51.100.1"))

	got := l.List()
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "198.51.100.1", got[0].Address)
	assert.Equal(t, "198.51.100.2", got[1].Address)
	assert.Equal(t, time.Unix(200, 0), got[0].LastSeenAt, "timestamp refreshed on promotion")
}

func TestLedgerPersistsAcrossInstances(t *testing.T) {
	st := store.NewMemory()

	l := NewLedger(st)
	l.Record("198.51.100.9", meta("198.51.100.9"))
	l.Record("203.0.113.7", meta("203.0.113.7"))

	r := NewLedger(st)
	assert.Equal(t, "203.0.113.7", r.LastReported())

	got := r.List()
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "203.0.113.7", got[0].Address)
	assert.Equal(t, "198.51.100.9", got[1].Address)
	assert.Equal(t, Unknown, got[0].Metadata.Country)
}

func TestLedgerDiscardsUnreadableHistory(t *testing.T) {
	st := store.NewMemory()
	st.Set(geolocator.StoreKeyHistory, "{not json")
	st.Set(geolocator.StoreKeyLastAddress, "198.51.100.9")

	l := NewLedger(st)
	assert.Equal(t, 0, len(l.List()))
	assert.Equal(t, "198.51.100.9", l.LastReported())
}

func TestOnMutateFiresPerMutation(t *testing.T) {
	l := NewLedger(store.NewMemory())

	fired := 0
	l.OnMutate(func() { fired++ })

	l.Record("198.51.100.9", meta("198.51.100.9"))
	l.Record("203.0.113.7", meta("203.0.113.7"))
	l.Clear()

	assert.Equal(t, 3, fired)
	assert.Equal(t, "", l.LastReported())
	assert.Equal(t, 0, len(l.List()))
}
