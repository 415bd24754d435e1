// Package geolocator holds the constants and embedded assets shared by
// the ome-tv-ip-geolocator commands and the leak detection core.
package geolocator

const (
	// DefaultStunPort is appended to STUN server addresses given without
	// an explicit port.
	DefaultStunPort = 3478

	// DefaultLookupURL is the metadata lookup service queried once per
	// newly observed address. The service answers
	// GET <base>/<address>?token=<key> with a JSON body.
	DefaultLookupURL = "https://ipinfo.io"

	// DefaultStateFile is the sqlite database holding the persisted
	// cross-session state.
	DefaultStateFile = "ipgeolocator.db"
)

// Keys of the persisted state document. The web panel stores its own
// state under StoreKeyPanel through the same store; the core never
// touches that key.
const (
	StoreKeyLastAddress = "lastAddress"
	StoreKeyHistory     = "ipHistory"
	StoreKeyPanel       = "panelState"
)
