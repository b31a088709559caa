package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRateLimitedRouter(t *testing.T, max int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimit(client, "test:", max, window))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r, mr
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksAfterMax(t *testing.T) {
	r, mr := newRateLimitedRouter(t, 2, time.Minute)

	assert.Equal(t, http.StatusOK, doGet(r, "/ping").Code)
	w := doGet(r, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doGet(r, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.True(t, mr.Exists("test:ratelimit:10.0.0.1"))
	assert.Greater(t, mr.TTL("test:ratelimit:10.0.0.1"), time.Duration(0))
}

func TestRateLimit_WindowResets(t *testing.T) {
	r, mr := newRateLimitedRouter(t, 1, time.Second)

	assert.Equal(t, http.StatusOK, doGet(r, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/ping").Code)

	mr.FastForward(2 * time.Second)

	assert.Equal(t, http.StatusOK, doGet(r, "/ping").Code)
}

func TestRateLimit_RedisDownAllowsRequest(t *testing.T) {
	r, mr := newRateLimitedRouter(t, 1, time.Minute)
	mr.Close()

	assert.Equal(t, http.StatusOK, doGet(r, "/ping").Code)
}

func TestRateLimit_InvalidArgsPanic(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	assert.Panics(t, func() { RateLimit(nil, "", 1, time.Second) })
	assert.Panics(t, func() { RateLimit(client, "", 0, time.Second) })
	assert.Panics(t, func() { RateLimit(client, "", 1, 0) })
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := doGet(r, "/id")
	generated := w.Header().Get(RequestIDHeader)
	require.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}
