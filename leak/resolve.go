package leak

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/bingoohuang/jj"
	"github.com/go-resty/resty/v2"
)

// Resolver asks the lookup service about addresses. It never raises to
// the pipeline: any failure is logged and yields a nil Metadata.
type Resolver struct {
	client *resty.Client
	base   string
	token  string
	now    func() time.Time
}

func NewResolver(cfg *Config) *Resolver {
	return &Resolver{
		client: resty.New().SetTimeout(cfg.LookupTimeout.D()),
		base:   strings.TrimSuffix(cfg.LookupURL, "/"),
		token:  cfg.LookupToken,
		now:    time.Now,
	}
}

// lookupRsp mirrors the optional fields of the lookup service's body.
type lookupRsp struct {
	IP       string `json:"ip"`
	Country  string `json:"country"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Hostname string `json:"hostname"`
	Bogon    bool   `json:"bogon"`
}

// Resolve issues a single GET <base>/<addr>?token=<key> for addr. On
// transport failure, a malformed body or a service-reported error it
// returns nil; the service reporting an error is data ("no data"), not a
// fault, and nothing is retried. On success, missing fields become the
// Unknown sentinel, the country code expands to a display name, and the
// bogon flag maps to VPNSuspected. Bogon ranges are a best-effort
// anonymization heuristic, not authoritative.
func (r *Resolver) Resolve(ctx context.Context, addr string) *Metadata {
	req := r.client.R().SetContext(ctx)
	if r.token != "" {
		req.SetQueryParam("token", r.token)
	}

	rsp, err := req.Get(r.base + "/" + addr)
	if err != nil {
		log.Printf("lookup %s failed: %v", addr, err)
		return nil
	}

	body := string(rsp.Body())
	if !jj.Valid(body) {
		log.Printf("lookup %s returned a malformed body", addr)
		return nil
	}
	if msg := jj.Get(body, "error.message"); msg.Type == jj.String {
		log.Printf("lookup %s rejected: %s", addr, msg.String())
		return nil
	}
	if rsp.IsError() {
		log.Printf("lookup %s returned status %s", addr, rsp.Status())
		return nil
	}

	var data lookupRsp
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		log.Printf("lookup %s decode failed: %v", addr, err)
		return nil
	}

	return &Metadata{
		Address:      addr,
		Country:      CountryName(data.Country),
		Region:       orUnknown(data.Region),
		City:         orUnknown(data.City),
		Coordinates:  orUnknown(data.Loc),
		Organization: orUnknown(data.Org),
		Hostname:     orUnknown(data.Hostname),
		VPNSuspected: data.Bogon,
		ResolvedAt:   r.now(),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
