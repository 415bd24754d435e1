// Package leak implements the WebRTC address-leak detection pipeline:
// it observes the ICE candidates a peer connection gathers or receives,
// extracts server-reflexive addresses, resolves location and network
// metadata for each newly seen one, and keeps a small deduplicated
// history of findings across sessions.
//
// Rough sketch of the pipeline:
//
//	PeerConnection --record--> Classify --srflx addr--> Session.Admit
//	   --new addr--> Resolver.Resolve --metadata--> Ledger.Record
//	   --persist--> store.Store, then notify hooks fire.
//
// Observation is transparent: the detector never blocks, alters or fails
// the negotiation it watches.
package leak

import (
	"net"
	"regexp"
	"strings"
)

// Kind classifies an ICE candidate record.
type Kind int

const (
	// KindOther marks records with no actionable address: host and relay
	// candidates, end-of-candidates markers, unparseable payloads.
	KindOther Kind = iota

	// KindServerReflexive marks srflx candidates, whose address is the
	// peer as seen from outside its network, typically the real public
	// address.
	KindServerReflexive
)

// Extracted is the result of classifying one raw candidate record.
// Address is set only when Kind is KindServerReflexive.
type Extracted struct {
	Kind    Kind
	Address string
}

// srflxMarker is the candidate type attribute of RFC 8839 candidate
// lines, e.g. "candidate:842163049 1 udp 1677729535 203.0.113.7 58746 typ srflx ...".
const srflxMarker = "typ srflx"

var ipv4Token = regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}`)

// Classify extracts the address carried by a raw candidate record. It is
// total: on a missing srflx marker, a missing IPv4 token or any other
// parse ambiguity it returns KindOther. Host and relay candidates are
// skipped on purpose, they are not globally routable and would only
// produce false positives.
//
// The first parseable dotted-quad token wins; everything else in the
// record is ignored.
func Classify(record string) Extracted {
	if record == "" || !strings.Contains(record, srflxMarker) {
		return Extracted{Kind: KindOther}
	}

	for _, tok := range ipv4Token.FindAllString(record, -1) {
		if ip := net.ParseIP(tok); ip != nil && ip.To4() != nil {
			return Extracted{Kind: KindServerReflexive, Address: tok}
		}
	}

	return Extracted{Kind: KindOther}
}
