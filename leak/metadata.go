package leak

import "time"

// Unknown is the sentinel for metadata fields the lookup service did not
// return.
const Unknown = "Unknown"

// Metadata describes what the lookup service knows about an address.
// Every field except Address and ResolvedAt defaults to Unknown.
type Metadata struct {
	Address      string    `json:"address"`
	Country      string    `json:"country"`
	Region       string    `json:"region"`
	City         string    `json:"city"`
	Coordinates  string    `json:"coordinates"`
	Organization string    `json:"organization"`
	Hostname     string    `json:"hostname"`
	VPNSuspected bool      `json:"vpnSuspected"`
	ResolvedAt   time.Time `json:"resolvedAt"`
}

// Entry is one history line. Metadata may be missing in state written by
// other producers; this implementation always records with it.
type Entry struct {
	Address    string    `json:"address"`
	Metadata   *Metadata `json:"metadata,omitempty"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}
