package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pion/logging"
	"github.com/pion/stun"
	geolocator "github.com/tyroxcc/ome-tv-ip-geolocator"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/util"
)

// The stun subcommand asks a STUN server directly for our mapped address.
// It is the cross-check for environments where WebRTC gathering is
// unavailable, and reports the local side only; the WebRTC pipeline is
// what observes a peer.
func stunSubCmd(ctx context.Context, statePath string, args ...string) {
	set := flag.NewFlagSet(args[0], flag.ExitOnError)
	set.Usage = func() {
		_, _ = fmt.Fprintf(set.Output(), "query a STUN server for the mapped public address\n\n")
		_, _ = fmt.Fprintf(set.Output(), "usage: %s %s ...\n\n", os.Args[0], args[0])
		_, _ = fmt.Fprintf(set.Output(), "flags:\n")
		set.PrintDefaults()
	}

	stunServer := set.String("stun", "stun.l.google.com:19302", "STUN server address")
	timeout := set.Duration("timeout", 3*time.Second, "timeout to wait for the STUN server's response")
	loglevel := set.String("loglevel", "info", "logging level")
	_ = set.Parse(args[1:])

	lg := logging.NewDefaultLeveledLoggerForScope("", parseLogLevel(*loglevel), os.Stdout)

	mapped, err := stunMappedAddress(util.AppendPort(*stunServer, geolocator.DefaultStunPort), *timeout, lg)
	if err != nil {
		util.Fatalf("STUN binding request failed: %v", err)
	}
	fmt.Println(mapped)
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "warn":
		return logging.LogLevelWarn
	case "info":
		return logging.LogLevelInfo
	case "debug":
		return logging.LogLevelDebug
	case "trace":
		return logging.LogLevelTrace
	default:
		return logging.LogLevelInfo
	}
}

// stunMappedAddress runs a single RFC 5389 binding request and returns
// the XOR-MAPPED-ADDRESS (falling back to MAPPED-ADDRESS for ancient
// servers).
func stunMappedAddress(addr string, timeout time.Duration, lg *logging.DefaultLeveledLogger) (string, error) {
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return "", fmt.Errorf("resolve %s failed: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return "", fmt.Errorf("listen failed: %w", err)
	}
	defer func() { _ = conn.Close() }()
	lg.Debugf("local address: %s, server: %s", conn.LocalAddr(), raddr)

	request := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
	if _, err := conn.WriteTo(request.Raw, raddr); err != nil {
		return "", fmt.Errorf("send binding request failed: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	buf := make([]byte, 1500)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		return "", fmt.Errorf("read binding response failed: %w", err)
	}

	msg := &stun.Message{Raw: buf[:n]}
	if err := msg.Decode(); err != nil {
		return "", fmt.Errorf("decode binding response failed: %w", err)
	}

	var xorAddr stun.XORMappedAddress
	if err := xorAddr.GetFrom(msg); err == nil {
		return xorAddr.IP.String(), nil
	}
	lg.Debug("no XOR-MAPPED-ADDRESS, trying MAPPED-ADDRESS")

	var mappedAddr stun.MappedAddress
	if err := mappedAddr.GetFrom(msg); err != nil {
		return "", fmt.Errorf("no mapped address in response: %w", err)
	}
	return mappedAddr.IP.String(), nil
}
