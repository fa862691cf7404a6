package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "fake:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func submitRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/submit", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req.WithContext(WithSession(req.Context(), &session.Session{ID: "session-token-1", UserID: "u1"}))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil, CriticalIdempotencyTTL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, submitRequest("", `{}`))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil, CriticalIdempotencyTTL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":"o1"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, submitRequest("abc", `{}`))
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(idempotencyReplayHeader))

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, submitRequest("abc", `{}`))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "true", replay.Header().Get(idempotencyReplayHeader))
	assert.Equal(t, `{"data":{"order_id":"o1"}}`, replay.Body.String())
	assert.Equal(t, 1, calls)

	require.Len(t, store.data, 1)
	for key, ttl := range store.ttls {
		assert.NotContains(t, key, "session-token-1")
		assert.Equal(t, CriticalIdempotencyTTL, ttl)
	}
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	store := newFakeStore()
	status := http.StatusUnprocessableEntity
	handler := Idempotency(store, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), submitRequest("retry-me", `{}`))
	assert.Empty(t, store.data)

	status = http.StatusCreated
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest("retry-me", `{}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	for _, ttl := range store.ttls {
		assert.Equal(t, DefaultIdempotencyTTL, ttl)
	}
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil, DefaultIdempotencyTTL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), submitRequest("xyz", `{"note":"a"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest("xyz", `{"note":"b"}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))
}

func TestIdempotencyRejectsOversizedBody(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil, CriticalIdempotencyTTL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest("big", strings.Repeat("a", maxIdempotencyBodyBytes+1)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, rec))
	assert.Zero(t, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyRefusesConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	entered := make(chan struct{})
	release := make(chan struct{})
	handler := Idempotency(store, nil, CriticalIdempotencyTTL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, submitRequest("dup", `{}`))
		done <- rec.Code
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest("dup", `{}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))

	close(release)
	assert.Equal(t, http.StatusCreated, <-done)
}

func TestIdempotencyKeyLengthAndScope(t *testing.T) {
	handler := Idempotency(newFakeStore(), nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest(strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	a := scopeFor(httptest.NewRequest(http.MethodPost, "/api/orders/o1/cancel", nil))
	b := scopeFor(httptest.NewRequest(http.MethodPost, "/api/orders/o2/cancel", nil))
	assert.NotEqual(t, a, b)
}
