package leak

import "sync"

// Session is the novelty filter bound to one observed connection. It
// remembers which addresses were already admitted during the lifetime of
// that connection; a new connection gets a fresh Session and the set is
// discarded with it.
type Session struct {
	ledger *Ledger

	mu   sync.Mutex
	seen map[string]bool
}

func newSession(ledger *Ledger) *Session {
	return &Session{ledger: ledger, seen: make(map[string]bool)}
}

// Admit reports whether addr is worth resolving now: it must differ from
// the last reported address (cross-session, from persisted state) and
// must not have been admitted earlier in this session. On true, addr
// joins the session set, so re-admitting it later in the same session is
// always false even if its resolution fails. This keeps one connection
// from triggering a resolution storm when several ICE rounds emit the
// same reflexive candidate.
func (s *Session) Admit(addr string) bool {
	if addr == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[addr] || addr == s.ledger.LastReported() {
		return false
	}

	s.seen[addr] = true
	return true
}
