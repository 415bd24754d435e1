package leak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySrflx(t *testing.T) {
	got := Classify("candidate:842163049 1 udp 1677729535 203.0.113.7 58746 typ srflx raddr 0.0.0.0 rport 0")
	assert.Equal(t, Extracted{Kind: KindServerReflexive, Address: "203.0.113.7"}, got)
}

func TestClassifyNotApplicable(t *testing.T) {
	records := []string{
		"",
		"candidate:1 1 udp 2122260223 10.0.0.2 54321 typ host generation 0",
		"candidate:2 1 udp 41885439 192.0.2.15 3478 typ relay raddr 198.51.100.1 rport 3478",
		"typ srflx but no address here",
		"candidate:3 1 udp 1677729535 2001:db8::1 58746 typ srflx", // not IPv4-form
		"garbage",
	}
	for _, r := range records {
		assert.Equal(t, Extracted{Kind: KindOther}, Classify(r), r)
	}
}

func TestClassifySkipsUnparseableTokens(t *testing.T) {
	// 999.0.0.1 is dotted-quad shaped but not a valid address; the first
	// parseable token wins.
	got := Classify("candidate:4 1 udp 1 999.0.0.1 1 typ srflx 198.51.100.9 more")
	assert.Equal(t, Extracted{Kind: KindServerReflexive, Address: "198.51.100.9"}, got)
}
