// Command ipgeolocator uncovers the public address behind a WebRTC
// connection and geolocates it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bingoohuang/gg/pkg/v"
	geolocator "github.com/tyroxcc/ome-tv-ip-geolocator"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/util"
	"github.com/tyroxcc/ome-tv-ip-geolocator/leak"
)

var subcmds = map[string]func(ctx context.Context, statePath string, args ...string){
	"detect":  detectSubCmd,
	"history": historySubCmd,
	"stun":    stunSubCmd,
	"serve":   serveSubCmd,
}

func usage() {
	util.Printf("ipgeolocator watches WebRTC negotiation for leaked public addresses.\n\n")
	util.Printf("usage:\n\n")
	util.Printf("  %s [flags] <command> [arguments]\n\n", os.Args[0])
	util.Printf("commands:\n")
	for key := range subcmds {
		util.Printf("  %s\n", key)
	}
	util.Printf("flags:\n")
	flag.PrintDefaults()
}

func main() {
	showVersion := flag.Bool("version", false, "show version and exit")
	verbose := flag.Bool("verbose", util.GetEnvBool("VERBOSE", false), "verbose logging")
	statePath := flag.String("state", util.LookupEnvOr("IPGEO_STATE", geolocator.DefaultStateFile), "state database file")
	flag.Usage = usage
	flag.Parse()
	if *showVersion {
		fmt.Println(v.Version())
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	leak.Verbose = *verbose
	cmd, ok := subcmds[flag.Arg(0)]
	if !ok {
		flag.Usage()
		os.Exit(2)
	}
	cmd(context.TODO(), *statePath, flag.Args()...)
}
