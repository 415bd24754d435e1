package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
	"github.com/tyroxcc/ome-tv-ip-geolocator/leak"
)

func historySubCmd(ctx context.Context, statePath string, args ...string) {
	set := flag.NewFlagSet(args[0], flag.ExitOnError)
	set.Usage = func() {
		_, _ = fmt.Fprintf(set.Output(), "print the persisted findings history\n\n")
		_, _ = fmt.Fprintf(set.Output(), "usage: %s %s ...\n\n", os.Args[0], args[0])
		_, _ = fmt.Fprintf(set.Output(), "flags:\n")
		set.PrintDefaults()
	}
	clear := set.Bool("clear", false, "wipe the persisted history and exit")
	_ = set.Parse(args[1:])

	ledger := leak.NewLedger(store.Open("sqlite", statePath))
	if *clear {
		ledger.Clear()
		return
	}

	j, _ := json.MarshalIndent(findings{Address: ledger.LastReported(), History: ledger.List()}, "", "  ")
	fmt.Println(string(j))
}
