package config

import "time"

// RateLimit configures the token bucket applied to the auth routes.
type RateLimit struct {
	Enabled        bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"20"`
	RefillTokens   int           `envconfig:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
	RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"3s"`
	TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
	KeyStrategy    string        `envconfig:"RATE_LIMIT_KEY_STRATEGY" default:"ip_route"`
	Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
}

// PerSecond is the sustained refill rate, used by the in-memory fallback.
func (r RateLimit) PerSecond() float64 {
	return float64(r.RefillTokens) / r.RefillInterval.Seconds()
}

func (r *RateLimit) normalize() {
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	// keys must outlive a full refill cycle
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
}
