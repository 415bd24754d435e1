package leak

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	geolocator "github.com/tyroxcc/ome-tv-ip-geolocator"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
)

// MaxHistory bounds the ledger; the least recently promoted entry is
// evicted beyond it.
const MaxHistory = 5

// Ledger is the bounded, most-recent-first, unique-by-address record of
// resolved addresses. It exclusively owns the in-memory sequence and is
// the sole writer of the persisted history and lastReported keys.
//
// Mutations are serialized by the mutex; recency reflects the order
// Record is invoked (resolution completion order), not the order
// addresses were detected.
type Ledger struct {
	st  store.Store
	now func() time.Time

	mu      sync.Mutex
	entries []*Entry
	last    string
	hooks   map[int]func()
	nextID  int
}

func NewLedger(st store.Store) *Ledger {
	l := &Ledger{st: st, now: time.Now}
	l.load()
	return l
}

func (l *Ledger) load() {
	l.last = store.GetOr(l.st, geolocator.StoreKeyLastAddress, "")

	raw, ok := l.st.Get(geolocator.StoreKeyHistory)
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), &l.entries); err != nil {
		log.Printf("discarding unreadable history: %v", err)
		l.entries = nil
		return
	}
	if len(l.entries) > MaxHistory {
		l.entries = l.entries[:MaxHistory]
	}
}

// OnMutate registers fn to run after every mutation, outside the critical
// section. The presentation layer uses this to refresh without polling.
// The returned func deregisters the hook.
func (l *Ledger) OnMutate(fn func()) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hooks == nil {
		l.hooks = make(map[int]func())
	}
	id := l.nextID
	l.nextID++
	l.hooks[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.hooks, id)
	}
}

// Record promotes addr to the front of the history: an existing entry is
// refreshed in place and moved to position 0, a new one is inserted
// there, and the tail is evicted past MaxHistory. addr becomes the last
// reported address. The full state is persisted before Record returns,
// so a successful call is durably observable on next load, subject to
// the store's own guarantees.
func (l *Ledger) Record(addr string, meta *Metadata) {
	l.mu.Lock()

	at := l.now()
	e := l.take(addr)
	if e == nil {
		e = &Entry{Address: addr}
	}
	e.Metadata = meta
	e.LastSeenAt = at

	l.entries = append([]*Entry{e}, l.entries...)
	if len(l.entries) > MaxHistory {
		l.entries = l.entries[:MaxHistory]
	}
	l.last = addr
	l.persistLocked()

	hooks := l.hooksLocked()
	l.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// take removes and returns the entry for addr, if present.
func (l *Ledger) take(addr string) *Entry {
	for i, e := range l.entries {
		if e.Address == addr {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return e
		}
	}
	return nil
}

func (l *Ledger) hooksLocked() []func() {
	out := make([]func(), 0, len(l.hooks))
	for _, fn := range l.hooks {
		out = append(out, fn)
	}
	return out
}

func (l *Ledger) persistLocked() {
	b, err := json.Marshal(l.entries)
	if err != nil {
		log.Printf("marshal history failed: %v", err)
		return
	}
	l.st.Set(geolocator.StoreKeyHistory, string(b))
	l.st.Set(geolocator.StoreKeyLastAddress, l.last)
}

// List returns the history, most recent first.
func (l *Ledger) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	return out
}

// LastReported returns the most recently recorded address, or "" when
// nothing was reported yet.
func (l *Ledger) LastReported() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.last
}

// Clear wipes the history and the last reported address, in memory and
// in the store.
func (l *Ledger) Clear() {
	l.mu.Lock()

	l.entries = nil
	l.last = ""
	l.persistLocked()

	hooks := l.hooksLocked()
	l.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
