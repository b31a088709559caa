package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	httpHandler "github.com/Kenneth-Mwenda/e-commerce-website-project/internal/handler/http"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/middleware"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository/mocks"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

func newTestRouter(t *testing.T, origin string, max int) (*gin.Engine, *mocks.Store) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := mocks.NewStore()
	store.ProductRepo.On("FindAll", mock.Anything).Return([]domain.Product{{ID: "p1", Name: "Milk"}}, nil)

	cfg := &Config{
		KeyPrefix:         "test:",
		RateLimitMax:      max,
		RateLimitWindow:   time.Minute,
		CORSAllowedOrigin: origin,
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	router := NewRouter(cfg, log, rdb, httpHandler.Handlers{
		Auth:     httpHandler.NewAuthHandler(service.NewAuthService(store, nil)),
		Products: httpHandler.NewProductHandler(service.NewProductService(store, 0)),
		Orders:   httpHandler.NewOrderHandler(service.NewOrderService(store, nil, service.PricingTrust, "KES")),
		Health:   httpHandler.NewHealthHandler(store),
	})
	return router, store
}

func TestNewRouter_MiddlewareChain(t *testing.T) {
	router, _ := newTestRouter(t, "*", 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://shop.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, "http://shop.example, http://admin.example", 100)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://admin.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://admin.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCorsConfig(t *testing.T) {
	c := corsConfig("*")
	assert.True(t, c.AllowAllOrigins)
	assert.False(t, c.AllowCredentials)

	c = corsConfig("http://a.example,http://b.example")
	assert.False(t, c.AllowAllOrigins)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.AllowOrigins)
	assert.NoError(t, c.Validate())
}

func TestResolveMongoTransactions(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	ctx := context.Background()
	calls := 0
	detector := func(ok bool, err error) func(context.Context) (bool, error) {
		return func(context.Context) (bool, error) {
			calls++
			return ok, err
		}
	}

	assert.True(t, resolveMongoTransactions(ctx, MongoTxOn, detector(false, nil), log))
	assert.False(t, resolveMongoTransactions(ctx, MongoTxOff, detector(true, nil), log))
	assert.Equal(t, 0, calls, "explicit modes skip detection")

	assert.True(t, resolveMongoTransactions(ctx, MongoTxAuto, detector(true, nil), log))
	assert.False(t, resolveMongoTransactions(ctx, MongoTxAuto, detector(false, nil), log))
	assert.False(t, resolveMongoTransactions(ctx, MongoTxAuto, detector(true, errors.New("server selection timeout")), log))
	assert.Equal(t, 3, calls)
}
