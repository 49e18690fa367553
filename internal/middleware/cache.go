package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// ResponseCache stores successful GET responses in Redis, namespaced per
// resource so writes can evict everything derived from that resource.
// A nil client or a disabled config turns every method into a pass-through.
type ResponseCache struct {
	cfg     config.Cache
	methods map[string]bool
	rdb     *redis.Client
	log     *zap.Logger
}

func NewResponseCache(cfg config.Cache, rdb *redis.Client, log *zap.Logger) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &ResponseCache{cfg: cfg, methods: cfg.MethodSet(), rdb: rdb, log: log.Named("cache")}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

func (rc *ResponseCache) namespace(resource string) string {
	return rc.cfg.Prefix + ":" + resource
}

// key hashes the request parts selected by the key strategy. Responses vary
// by caller for scoped resources, so the user id is always part of it.
func (rc *ResponseCache) key(resource string, c echo.Context) string {
	r := c.Request()
	parts := []string{"user", currentUserID(c)}
	switch strings.ToLower(rc.cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", c.Path())
	case "method_route":
		parts = append(parts, "method", r.Method, "route", c.Path())
	case "method_route_query":
		parts = append(parts, "method", r.Method, "route", c.Path(), "params", strings.Join(c.ParamValues(), ","), "q", r.URL.RawQuery)
	default: // route_query
		parts = append(parts, "route", c.Path(), "params", strings.Join(c.ParamValues(), ","), "q", r.URL.RawQuery)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", rc.namespace(resource), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// Cache serves cached responses for resource and stores fresh 200s.
func (rc *ResponseCache) Cache(resource string) echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.key(resource, c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						// length and encoding belong to the outer writers
						if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, echo.HeaderContentEncoding) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			// truncated bodies are never stored
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
				rc.log.Warn("cache store failed", zap.Error(err), zap.String("key", key))
			}
			return nil
		}
	}
}

// Evict drops every cached entry of the resources once the wrapped handler
// succeeds with a 2xx status.
func (rc *ResponseCache) Evict(resources ...string) echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if s := c.Response().Status; s < 200 || s >= 300 {
				return nil
			}
			for _, res := range resources {
				if err := rc.Invalidate(context.WithoutCancel(c.Request().Context()), res); err != nil {
					rc.log.Warn("cache eviction failed", zap.Error(err), zap.String("resource", res))
				}
			}
			return nil
		}
	}
}

// Invalidate deletes all keys of a resource namespace using SCAN.
func (rc *ResponseCache) Invalidate(ctx context.Context, resource string) error {
	if !rc.enabled() {
		return nil
	}
	iter := rc.rdb.Scan(ctx, 0, rc.namespace(resource)+":*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := rc.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return rc.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
