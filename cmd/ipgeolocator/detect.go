package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pion/webrtc/v3"
	geolocator "github.com/tyroxcc/ome-tv-ip-geolocator"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/util"
	"github.com/tyroxcc/ome-tv-ip-geolocator/leak"
	"golang.org/x/net/proxy"
)

func detectSubCmd(ctx context.Context, statePath string, args ...string) {
	set := flag.NewFlagSet(args[0], flag.ExitOnError)
	set.Usage = func() {
		_, _ = fmt.Fprintf(set.Output(), "detect the public address via WebRTC and geolocate it\n\n")
		_, _ = fmt.Fprintf(set.Output(), "usage: %s %s ...\n\n", os.Args[0], args[0])
		_, _ = fmt.Fprintf(set.Output(), "flags:\n")
		set.PrintDefaults()
	}

	stunAddr := set.String("stun", "stun.l.google.com:19302", "STUN server address, e.g. stun:stun.l.google.com:19302")
	lookupURL := set.String("lookup", geolocator.DefaultLookupURL, "metadata lookup service base URL")
	token := set.String("token", util.LookupEnvOr("IPGEO_TOKEN", ""), "lookup service API token")
	timeout := set.Duration("timeout", 30*time.Second, "timeout to wait for a reflexive candidate")
	_ = set.Parse(args[1:])

	cfg := &leak.Config{
		StunServer:    util.AppendPort(*stunAddr, geolocator.DefaultStunPort),
		LookupURL:     *lookupURL,
		LookupToken:   *token,
		GatherTimeout: util.Duration(*timeout),
	}

	d := leak.New(cfg, store.Open("sqlite", statePath))
	d.OnEvent = countEvent

	recorded := make(chan struct{}, 1)
	d.Ledger().OnMutate(func() {
		select {
		case recorded <- struct{}{}:
		default:
		}
	})

	detectRuns.WithLabelValues("cli").Inc()
	if err := runDetection(ctx, d, cfg, recorded); err != nil {
		log.Fatalf("detection failed: %v", err)
	}

	printFindings(d)
}

type findings struct {
	Address string       `json:"address"`
	History []leak.Entry `json:"history"`
}

func printFindings(d *leak.Detector) {
	j, _ := json.MarshalIndent(findings{Address: d.Current(), History: d.History()}, "", "  ")
	fmt.Println(string(j))
}

// runDetection opens a throwaway peer connection against the configured
// STUN server, attaches the detector and triggers ICE gathering with an
// empty data channel and offer. It returns once recorded signals the
// first finding, or when the gather timeout expires.
func runDetection(ctx context.Context, d *leak.Detector, cfg *leak.Config, recorded <-chan struct{}) error {

	// Accessing pion/webrtc APIs like SetICEProxyDialer requires that we
	// do this voodoo.
	s := webrtc.SettingEngine{}
	s.SetICEProxyDialer(proxy.FromEnvironment())
	rtcapi := webrtc.NewAPI(webrtc.WithSettingEngine(s))

	pc, err := rtcapi.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{
			URLs: []string{util.Prefix("stun:", cfg.StunServer)},
		}},
	})
	if err != nil {
		return fmt.Errorf("NewPeerConnection failed: %w", err)
	}
	defer func() { _ = pc.Close() }()

	if _, err := d.Attach(pc, nil); err != nil {
		return err
	}

	if _, err := pc.CreateDataChannel("", nil); err != nil {
		return fmt.Errorf("CreateDataChannel failed: %w", err)
	}
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("CreateOffer failed: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("SetLocalDescription failed: %w", err)
	}

	select {
	case <-recorded:
		return nil
	case <-time.After(cfg.GatherTimeout.D()):
		return fmt.Errorf("no finding within %s", cfg.GatherTimeout.D())
	case <-ctx.Done():
		return ctx.Err()
	}
}
