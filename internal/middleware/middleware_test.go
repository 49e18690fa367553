package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/utils"
)

const secret = "test-secret"

func newContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
	u := model.User{ID: "u-1", Username: "ann", Email: "ann@lab.edu", Role: model.RoleLabAssistant}
	tok, err := utils.NewAccessToken(secret, u, time.Hour)
	require.NoError(t, err)

	t.Run("valid token populates context", func(t *testing.T) {
		c, rec := newContext("Bearer " + tok.Token)
		require.NoError(t, JWTAuth(secret)(ok)(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		a, found := Actor(c)
		require.True(t, found)
		assert.Equal(t, model.Actor{ID: "u-1", Role: model.RoleLabAssistant}, a)
		assert.Equal(t, "ann", c.Get(KeyUsername))
		assert.Equal(t, "ann@lab.edu", c.Get(KeyEmail))
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer abc.def.ghi"},
		{"wrong secret", "Bearer " + mustToken(t, "other", u)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.header)
			err := JWTAuth(secret)(ok)(c)
			assert.True(t, errors.Is(err, errs.ErrUnauthorized), "got %v", err)
			_, found := Actor(c)
			assert.False(t, found)
		})
	}
}

func mustToken(t *testing.T, key string, u model.User) string {
	t.Helper()
	tok, err := utils.NewAccessToken(key, u, time.Hour)
	require.NoError(t, err)
	return tok.Token
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		want error
	}{
		{"assistant may write", model.RoleLabAssistant, nil},
		{"admin may write", model.RoleAdmin, nil},
		{"student may not", model.RoleStudent, errs.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("")
			c.Set(KeyUserID, "u-1")
			c.Set(KeyRole, tt.role)
			err := RequireCapability(model.CapEquipmentWrite)(ok)(c)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want))
		})
	}

	c, _ := newContext("")
	err := RequireCapability(model.CapEquipmentRead)(ok)(c)
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestMemoryRateLimiter(t *testing.T) {
	cfg := config.RateLimit{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/api/auth/login", ok, NewRateLimiter(cfg, nil, zap.NewNop()))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{}"))
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{}"))
	req.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	c, rec := newContext("")
	require.NoError(t, NewRateLimiter(config.RateLimit{Enabled: false}, nil, zap.NewNop())(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateKey(t *testing.T) {
	c, _ := newContext("")
	c.Request().RemoteAddr = "192.0.2.1:1234"
	c.SetPath("/api/auth/login")
	assert.Equal(t, "rl:ip:192.0.2.1", rateKey(config.RateLimit{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:192.0.2.1:route:GET /api/auth/login", rateKey(config.RateLimit{Prefix: "rl", KeyStrategy: "ip_route"}, c))
	c.Set(KeyUserID, "u-9")
	assert.Equal(t, "rl:user:u-9", rateKey(config.RateLimit{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestCachePassThroughWithoutRedis(t *testing.T) {
	rc := NewResponseCache(config.Cache{Enabled: true, Methods: []string{"GET"}, Prefix: "cache"}, nil, zap.NewNop())
	c, rec := newContext("")
	require.NoError(t, rc.Cache("equipment")(ok)(c))
	require.NoError(t, rc.Evict("equipment")(ok)(c))
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, rc.Invalidate(c.Request().Context(), "equipment"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"success":true}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, got.Get(echo.HeaderContentType))
	assert.Equal(t, `{"success":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestCacheKeyNamespacedPerResourceAndUser(t *testing.T) {
	rc := NewResponseCache(config.Cache{Prefix: "cache", KeyStrategy: "route_query"}, nil, zap.NewNop())
	c, _ := newContext("")
	c.SetPath("/api/equipment")
	k1 := rc.key("equipment", c)
	assert.True(t, strings.HasPrefix(k1, "cache:equipment:"))

	c.Set(KeyUserID, "u-2")
	assert.NotEqual(t, k1, rc.key("equipment", c))
}
