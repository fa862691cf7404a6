package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-gateway/internal/catalog"
	"github.com/angelmondragon/storefront-gateway/internal/orders"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	"github.com/angelmondragon/storefront-gateway/pkg/config"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/metrics"
	"github.com/angelmondragon/storefront-gateway/pkg/pagination"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

type stubStore struct {
	pingErr error
}

func (s stubStore) Ping(context.Context) error { return s.pingErr }

func (stubStore) Get(context.Context, string) (string, error) { return "", nil }

func (stubStore) Set(context.Context, string, any, time.Duration) error { return nil }

func (stubStore) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return true, nil
}

func (stubStore) IdempotencyKey(scope, id string) string { return "sf:idempotency:" + scope + ":" + id }

func (stubStore) Del(context.Context, ...string) error { return nil }

func (stubStore) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return true, 1, nil
}

type stubSessions map[string]*session.Session

func (s stubSessions) Get(_ context.Context, id string) (*session.Session, error) {
	if sess, ok := s[id]; ok {
		return sess, nil
	}
	return nil, session.ErrSessionNotFound
}

type stubCatalog struct {
	catalog.Service
	lastCred auth.Credential
}

func (s *stubCatalog) List(_ context.Context, cred auth.Credential, _ string, _ pagination.Params) (*types.Page[catalog.ProductDTO], error) {
	s.lastCred = cred
	return &types.Page[catalog.ProductDTO]{}, nil
}

type stubOrders struct {
	orders.Service
	statsCalls int
}

func (s *stubOrders) Statistics(context.Context, auth.Credential) (*orders.StatisticsDTO, error) {
	s.statsCalls++
	return &orders.StatisticsDTO{TotalOrders: 3}, nil
}

type fixture struct {
	handler http.Handler
	catalog *stubCatalog
	orders  *stubOrders
}

func newFixture(t *testing.T, store Store) fixture {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	sessions := stubSessions{
		"buyer":  {ID: "buyer", UserID: "u1", Roles: []enums.Role{enums.RoleBuyer}, BackendToken: "b-tok"},
		"seller": {ID: "seller", UserID: "u2", Roles: []enums.Role{enums.RoleBuyer, enums.RoleSeller}, BackendToken: "s-tok"},
	}
	f := fixture{catalog: &stubCatalog{}, orders: &stubOrders{}}
	f.handler = NewRouter(cfg, logg, store, sessions, reg, metrics.NewHTTPMetrics(reg),
		nil, f.catalog, nil, nil, nil, f.orders, nil, nil)
	return f
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t, stubStore{})

	live := do(f.handler, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, "test", live.Header().Get("X-Storefront-Env"))
	assert.NotEmpty(t, live.Header().Get("X-Request-Id"))

	assert.Equal(t, http.StatusOK, do(f.handler, http.MethodGet, "/health/ready", "").Code)

	down := newFixture(t, stubStore{pingErr: context.DeadlineExceeded})
	assert.Equal(t, http.StatusServiceUnavailable, do(down.handler, http.MethodGet, "/health/ready", "").Code)

	missing := newFixture(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(missing.handler, http.MethodGet, "/health/ready", "").Code)
}

func TestCatalogIsPublicButForwardsSession(t *testing.T) {
	f := newFixture(t, stubStore{})

	require.Equal(t, http.StatusOK, do(f.handler, http.MethodGet, "/api/products", "").Code)
	assert.True(t, f.catalog.lastCred.IsAnonymous())

	require.Equal(t, http.StatusOK, do(f.handler, http.MethodGet, "/api/products", "buyer").Code)
	assert.Equal(t, "b-tok", f.catalog.lastCred.Token)

	assert.Equal(t, http.StatusUnauthorized, do(f.handler, http.MethodGet, "/api/products", "stale").Code)
}

func TestPrivateRoutesRequireSession(t *testing.T) {
	f := newFixture(t, stubStore{})

	for _, path := range []string{"/api/cart", "/api/orders", "/api/users/me", "/api/checkout/draft"} {
		resp := do(f.handler, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestSellerRoutesRequireSellerRole(t *testing.T) {
	f := newFixture(t, stubStore{})

	assert.Equal(t, http.StatusForbidden, do(f.handler, http.MethodGet, "/api/seller/orders/statistics", "buyer").Code)
	assert.Zero(t, f.orders.statsCalls)

	resp := do(f.handler, http.MethodGet, "/api/seller/orders/statistics", "seller")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, f.orders.statsCalls)
}

func TestMetricsEndpointExposesRouteLabels(t *testing.T) {
	f := newFixture(t, stubStore{})
	do(f.handler, http.MethodGet, "/health/live", "")

	resp := do(f.handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), `route="/health/live"`))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	f := newFixture(t, stubStore{})
	assert.Equal(t, http.StatusNotFound, do(f.handler, http.MethodGet, "/api/nope", "").Code)
}
