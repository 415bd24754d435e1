package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/tyroxcc/ome-tv-ip-geolocator/leak"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// snapshot is what the panel receives on every push: the current address
// plus the full history.
type snapshot struct {
	Address string       `json:"address"`
	History []leak.Entry `json:"history"`
}

// panelHub fans ledger mutations out to the connected panel WebSockets.
type panelHub struct {
	d *leak.Detector

	mu   sync.Mutex
	subs map[chan struct{}]bool
}

func newPanelHub(d *leak.Detector) *panelHub {
	return &panelHub{d: d, subs: make(map[chan struct{}]bool)}
}

// notify wakes every connected client. It must never block the ledger,
// so a client already owed a push is skipped; it reads a fresh snapshot
// anyway.
func (h *panelHub) notify() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *panelHub) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = true
	return ch
}

func (h *panelHub) unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

// serve upgrades the request, pushes one snapshot immediately and then
// another per ledger mutation, until the client goes away.
func (h *panelHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The panel is read-only; there is no user state to CSRF.
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	panelClientsGauge.Inc()
	defer panelClientsGauge.Dec()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	for {
		s := snapshot{Address: h.d.Current(), History: h.d.History()}
		if err := wsjson.Write(ctx, conn, s); err != nil {
			return
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return
		}
	}
}
