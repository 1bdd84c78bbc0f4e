package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/metrics"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/policy"
	"github.com/cancerinfo/cms/internal/service"
	"github.com/cancerinfo/cms/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]policy.Principal

func (f fakeTokens) AuthenticateToken(_ context.Context, token string) (policy.Principal, error) {
	if p, ok := f[token]; ok {
		return p, nil
	}
	return policy.Anonymous, service.ErrInvalidToken
}

type fakeSessions map[string]*models.Account

func (f fakeSessions) Lookup(_ context.Context, token string) (*models.Account, error) {
	if a, ok := f[token]; ok {
		return a, nil
	}
	return nil, service.ErrNotFound
}

func principalEcho(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	c.JSON(http.StatusOK, gin.H{"id": p.AccountID, "auth": p.Authenticated, "staff": p.Staff})
}

func TestBearerAuth(t *testing.T) {
	tokens := fakeTokens{"good": {AccountID: 7, Authenticated: true, Staff: true}}
	r := gin.New()
	r.GET("/open", middleware.BearerAuth(tokens), principalEcho)
	r.GET("/closed", middleware.BearerAuth(tokens), middleware.RequireAuth(), principalEcho)

	cases := []struct {
		name   string
		path   string
		header string
		code   int
	}{
		{"anonymous read", "/open", "", http.StatusOK},
		{"valid token", "/open", "Bearer good", http.StatusOK},
		{"invalid token on public route", "/open", "Bearer bad", http.StatusUnauthorized},
		{"malformed header", "/open", "Token good", http.StatusUnauthorized},
		{"anonymous on protected route", "/closed", "", http.StatusUnauthorized},
		{"valid token on protected route", "/closed", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

func TestSessionAuth(t *testing.T) {
	account := &models.Account{ID: 3, Username: "nina"}
	r := gin.New()
	r.Use(middleware.SessionAuth(fakeSessions{"live": account}, logger.Nop()))
	r.GET("/", func(c *gin.Context) {
		a := middleware.CurrentAccount(c)
		name := ""
		if a != nil {
			name = a.Username
		}
		c.String(http.StatusOK, name)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "live"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "nina", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "stale"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "", w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"=;")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(logger.Nop()))
	r.GET("/api/v1/boom", func(*gin.Context) { panic(errors.New("boom")) })
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"http://localhost:3000"}))
	r.GET("/api/v1/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsAndRequestLogger(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.Nop()), middleware.Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/4", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `route="/items/:id",status="418"`)
}

func TestRateLimiterWithoutRedisAllowsAll(t *testing.T) {
	var nilLimiter *middleware.RateLimiter
	noRedis := middleware.NewCredentialRateLimiter(nil, 1, time.Minute, logger.Nop(), nil)

	r := gin.New()
	r.POST("/a", nilLimiter.ByClientIP(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/b", noRedis.ByClientIP(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		for _, path := range []string{"/a", "/b"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := middleware.NewCredentialRateLimiter(client, 2, time.Minute, logger.Nop(), metrics.New())

	r := gin.New()
	r.POST("/login/", limiter.ByClientIP(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/", nil))
		codes = append(codes, w.Code)
		if i == 0 {
			assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	keys, err := client.Keys(context.Background(), "rate_limit:credentials:*").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, keys)
}
