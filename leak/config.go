package leak

import (
	"log"

	"github.com/creasty/defaults"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/util"
)

// Config carries the tunables of a detection run.
type Config struct {
	// StunServer is the STUN server the detect command gathers reflexive
	// candidates against. A bare host gets the default STUN port.
	StunServer string `json:"stunServer" default:"stun.l.google.com:19302"`

	// LookupURL is the base URL of the metadata lookup service.
	LookupURL string `json:"lookupURL" default:"https://ipinfo.io"`

	// LookupToken is passed as the token query parameter when set.
	LookupToken string `json:"lookupToken"`

	// LookupTimeout bounds a single metadata lookup. An in-flight lookup
	// is never cancelled by the pipeline itself; one that never
	// completes simply never updates the ledger.
	LookupTimeout util.Duration `json:"lookupTimeout" default:"10s"`

	// GatherTimeout bounds how long a detection run waits for ICE
	// gathering to surface a reflexive candidate.
	GatherTimeout util.Duration `json:"gatherTimeout" default:"30s"`
}

func (c *Config) setDefaults() {
	if err := defaults.Set(c); err != nil {
		log.Printf("defaults.Set %+v failed: %v", c, err)
	}
}
