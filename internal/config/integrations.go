package config

import (
	"context"
	"sort"
	"strings"
)

// Integration is an optional dependency the server can run without.
type Integration string

const (
	IntegrationAuth     Integration = "auth"
	IntegrationCache    Integration = "cache"
	IntegrationUpstream Integration = "upstream"
	IntegrationIngest   Integration = "ingest"
)

// Integrations is the set of optional dependencies detected at startup.
type Integrations map[Integration]bool

// Has reports whether i was detected.
func (s Integrations) Has(i Integration) bool {
	return s[i]
}

func (s Integrations) String() string {
	names := make([]string, 0, len(s))
	for i, ok := range s {
		if ok {
			names = append(names, string(i))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Pinger checks a dependency is reachable.
type Pinger func(ctx context.Context) error

// DetectIntegrations decides once which optional integrations are usable.
// cachePing may be nil when no cache address is configured.
func DetectIntegrations(ctx context.Context, cfg Config, cachePing Pinger) Integrations {
	set := Integrations{
		IntegrationAuth:     cfg.Auth0Issuer != "" && cfg.Auth0Audience != "",
		IntegrationUpstream: cfg.UpstreamURL != "",
		IntegrationIngest:   cfg.IngestToken != "",
	}
	if cfg.RedisAddr != "" && cachePing != nil {
		set[IntegrationCache] = cachePing(ctx) == nil
	}
	return set
}
