package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis holds connection settings. Host and Port take precedence over Addr
// when both are set.
type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Host     string `envconfig:"REDIS_HOST"`
	Port     string `envconfig:"REDIS_PORT"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	TLS      bool   `envconfig:"REDIS_TLS" default:"false"`
}

func (r Redis) Address() string {
	if r.Host != "" && r.Port != "" {
		return r.Host + ":" + r.Port
	}
	return r.Addr
}

// NewRedisClient connects and pings Redis. It returns nil when the server is
// unreachable; callers then disable caching and fall back to in-memory rate
// limiting.
func NewRedisClient(cfg Redis) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
