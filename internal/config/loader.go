package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CREST_CONFIG is set
//  3. env (prefix CREST_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("CREST_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: CREST_ADDR, CREST_METADATA_TTL_HOURS, ...
	// Map env keys like CREST_METADATA_TTL_HOURS -> metadata_ttl_hours.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CREST_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "crest_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.MetadataTTLHours <= 0 {
		return nil, errors.New("metadata_ttl_hours must be positive")
	}
	if cfg.SourceLatencyMinMS < 0 || cfg.SourceLatencyMaxMS < cfg.SourceLatencyMinMS {
		return nil, errors.New("source latency bounds are inverted")
	}
	return &cfg, nil
}
