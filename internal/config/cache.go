package config

import (
	"strings"
	"time"
)

// Cache configures the response cache middleware. Caching is disabled when
// Enabled is false or no Redis client is available.
type Cache struct {
	Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
	Methods      []string      `envconfig:"CACHE_METHODS" default:"GET"`
	TTL          time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	KeyStrategy  string        `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
	Prefix       string        `envconfig:"CACHE_PREFIX" default:"cache"`
	MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// MethodSet returns the cacheable methods upper-cased.
func (c Cache) MethodSet() map[string]bool {
	m := map[string]bool{}
	for _, p := range c.Methods {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
