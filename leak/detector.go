package leak

import (
	"context"
	"errors"
	"log"

	"github.com/pion/webrtc/v3"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
)

// Verbose enables logging of every observed candidate.
var Verbose = false

func logf(format string, v ...interface{}) {
	if Verbose {
		log.Printf(format, v...)
	}
}

// Pipeline event names reported to OnEvent.
const (
	EventCandidate     = "candidate"
	EventAdmitted      = "admitted"
	EventResolved      = "resolved"
	EventResolveFailed = "resolve_failed"
)

// ErrNoConnection is returned by Attach when there is no peer connection
// to observe. Detection is disabled then; nothing else is affected.
var ErrNoConnection = errors.New("no peer connection to observe")

// Detector wires the pipeline together. Construct one per process with
// New and attach it to each connection to observe.
type Detector struct {
	cfg      *Config
	ledger   *Ledger
	resolver *Resolver

	// OnEvent, when set, receives one pipeline event name per stage a
	// candidate passes. The CLI hangs its prometheus counters here.
	OnEvent func(event string)
}

func New(cfg *Config, st store.Store) *Detector {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	return &Detector{
		cfg:      cfg,
		ledger:   NewLedger(st),
		resolver: NewResolver(cfg),
	}
}

// Attach registers the detector as the ICE candidate observer of pc and
// returns the Session bound to it. forward, when non-nil, receives every
// callback invocation unchanged, before any classification happens, so
// attaching stays side-effect transparent to the negotiation. pion
// delivers a nil candidate at end of gathering; that is the absent
// record and is forwarded like any other.
func (d *Detector) Attach(pc *webrtc.PeerConnection, forward func(*webrtc.ICECandidate)) (*Session, error) {
	if pc == nil {
		return nil, ErrNoConnection
	}

	s := d.NewSession()
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if forward != nil {
			forward(c)
		}
		if c == nil {
			return
		}
		d.submit(s, c.ToJSON().Candidate)
	})

	return s, nil
}

// NewSession returns a fresh novelty session for feeding out-of-band
// candidate records through Submit, e.g. remote candidates received via
// signalling.
func (d *Detector) NewSession() *Session { return newSession(d.ledger) }

// Submit runs one raw candidate record through the pipeline under the
// given session.
func (d *Detector) Submit(s *Session, record string) { d.submit(s, record) }

func (d *Detector) submit(s *Session, record string) {
	d.event(EventCandidate)

	ext := Classify(record)
	if ext.Kind != KindServerReflexive {
		return
	}
	logf("observed srflx candidate %s", ext.Address)

	if !s.Admit(ext.Address) {
		return
	}
	d.event(EventAdmitted)

	go d.resolveAndRecord(ext.Address)
}

// resolveAndRecord completes one admitted address. It always runs to
// completion, even if the triggering connection has since closed. A
// failed resolution leaves the ledger and the last reported address
// untouched, so a later different address from the same connection can
// still be reported and the same address may retry on the next
// connection.
func (d *Detector) resolveAndRecord(addr string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.LookupTimeout.D())
	defer cancel()

	meta := d.resolver.Resolve(ctx, addr)
	if meta == nil {
		d.event(EventResolveFailed)
		return
	}

	d.ledger.Record(addr, meta)
	d.event(EventResolved)
	log.Printf("reported %s (%s, %s)", addr, meta.City, meta.Country)
}

func (d *Detector) event(name string) {
	if d.OnEvent != nil {
		d.OnEvent(name)
	}
}

// Current returns the last reported address, or "" when none yet.
func (d *Detector) Current() string { return d.ledger.LastReported() }

// History returns the resolved findings, most recent first.
func (d *Detector) History() []Entry { return d.ledger.List() }

// Ledger exposes the underlying ledger for notification hooks.
func (d *Detector) Ledger() *Ledger { return d.ledger }
