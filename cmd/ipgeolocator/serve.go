package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/bingoohuang/gg/pkg/iox"
	"github.com/bingoohuang/godaemon"
	"github.com/bingoohuang/golog"
	"github.com/bingoohuang/jj"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	geolocator "github.com/tyroxcc/ome-tv-ip-geolocator"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/store"
	"github.com/tyroxcc/ome-tv-ip-geolocator/internal/util"
	"github.com/tyroxcc/ome-tv-ip-geolocator/leak"
	"golang.org/x/crypto/acme/autocert"
)

// serveSubCmd runs the findings panel: the embedded web UI, the JSON read
// accessors, a WebSocket that pushes ledger snapshots on every mutation,
// and an endpoint to trigger detection runs.
func serveSubCmd(ctx context.Context, statePath string, args ...string) {
	f := flag.NewFlagSet(args[0], flag.ExitOnError)
	f.Usage = func() {
		_, _ = fmt.Fprintf(f.Output(), "run the findings panel server\n\n")
		_, _ = fmt.Fprintf(f.Output(), "usage: %s %s\n\n", os.Args[0], args[0])
		_, _ = fmt.Fprintf(f.Output(), "flags:\n")
		f.PrintDefaults()
	}

	httpAddr := f.String("http", ":31416", "http listen address")
	httpsAddr := f.String("https", "", "https listen address")
	debugAddr := f.String("debug", "", "debug and metrics listen address")
	hosts := f.String("hosts", "", "comma separated list of hosts by which site is accessible")
	secretPath := f.String("secrets", os.Getenv("HOME")+"/keys", "path to put let's encrypt cache")
	cert := f.String("cert", "", "https certificate (leave empty to use letsencrypt)")
	key := f.String("key", "", "https certificate key")
	pDaemon := f.Bool("daemon", false, "Daemonized")

	stunAddr := f.String("stun", "stun.l.google.com:19302", "STUN server used for detection runs")
	lookupURL := f.String("lookup", geolocator.DefaultLookupURL, "metadata lookup service base URL")
	token := f.String("token", util.LookupEnvOr("IPGEO_TOKEN", ""), "lookup service API token")
	_ = f.Parse(args[1:])

	if (*cert == "") != (*key == "") {
		log.Fatalf("-cert and -key options must be provided together or both left empty")
	}

	godaemon.Daemonize(*pDaemon)
	golog.Setup()

	cfg := &leak.Config{
		StunServer:  util.AppendPort(*stunAddr, geolocator.DefaultStunPort),
		LookupURL:   *lookupURL,
		LookupToken: *token,
	}
	st := store.Open("sqlite", statePath)
	d := leak.New(cfg, st)
	d.OnEvent = countEvent

	hub := newPanelHub(d)
	d.Ledger().OnMutate(hub.notify)

	fs := gziphandler.GzipHandler(http.FileServer(http.FS(geolocator.Web)))

	handler := func(w http.ResponseWriter, r *http.Request) {
		// The panel may be iframed by the page under observation.
		w.Header().Set("Access-Control-Allow-Origin", "*")

		switch {
		case r.URL.Path == "/api/current":
			writeJSON(w, map[string]string{"address": d.Current()})
		case r.URL.Path == "/api/history":
			writeJSON(w, d.History())
		case r.URL.Path == "/api/panel" && r.Method == http.MethodPost:
			// Panel layout state is owned by the UI; we only persist it.
			st.Set(geolocator.StoreKeyPanel, iox.ReadString(r.Body))
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/panel":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(store.GetOr(st, geolocator.StoreKeyPanel, "{}")))
		case r.URL.Path == "/api/detect" && r.Method == http.MethodPost:
			detectService(w, r, d, cfg)
		case strings.ToLower(r.Header.Get("Upgrade")) == "websocket":
			hub.serve(w, r)
		default:
			fs.ServeHTTP(w, r)
		}
	}

	m := &autocert.Manager{
		Cache:      autocert.DirCache(*secretPath),
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(strings.Split(*hosts, ",")...),
	}

	srv := &http.Server{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  20 * time.Second,
		Addr:         *httpAddr,
		Handler:      m.HTTPHandler(http.HandlerFunc(handler)),
	}

	errCh := make(chan error)
	if *debugAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() { errCh <- http.ListenAndServe(*debugAddr, nil) }()
	}
	if *httpsAddr != "" {
		server := &http.Server{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  20 * time.Second,
			Addr:         *httpsAddr,
			Handler:      http.HandlerFunc(handler),
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}
		if *cert == "" && *key == "" {
			server.TLSConfig.GetCertificate = m.GetCertificate
		}
		srv.Handler = m.HTTPHandler(nil) // Enable redirect to https handler.
		go func() { errCh <- server.ListenAndServeTLS(*cert, *key) }()
	}
	if *httpAddr != "" {
		go func() { errCh <- srv.ListenAndServe() }()
	}
	log.Fatal(<-errCh)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

type detectResult struct {
	Error   string `json:"error,omitempty"`
	Address string `json:"address,omitempty"`
}

// detectService triggers a detection run from the panel. The body is an
// optional JSON object; a "timeout" field bounds the run.
func detectService(w http.ResponseWriter, r *http.Request, d *leak.Detector, base *leak.Config) {
	body := iox.ReadString(r.Body)
	if body == "" {
		body = "{}"
	}
	if !jj.Valid(body) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	cfg := *base
	if v := jj.Get(body, "timeout"); v.Type == jj.String {
		if t, err := time.ParseDuration(v.String()); err == nil {
			cfg.GatherTimeout = util.Duration(t)
		}
	}

	detectRuns.WithLabelValues("api").Inc()

	recorded := make(chan struct{}, 1)
	cancel := d.Ledger().OnMutate(func() {
		select {
		case recorded <- struct{}{}:
		default:
		}
	})
	defer cancel()

	var result detectResult
	if err := runDetection(r.Context(), d, &cfg, recorded); err != nil {
		log.Printf("panel detection failed: %v", err)
		result.Error = err.Error()
	} else {
		result.Address = d.Current()
	}
	writeJSON(w, result)
}
