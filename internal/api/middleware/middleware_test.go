package middleware_test

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/middleware"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: make(map[string][]byte),
		ttls: make(map[string]int),
	}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return value, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = expirationSeconds
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func TestCacheMiddleware_MissThenHit(t *testing.T) {
	cache := newFakeCache()
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"patients":[]}`))
	})

	handler := middleware.NewCacheMiddleware(cache, nil).Middleware(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", "/api/patients", nil))
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest("GET", "/api/patients", nil))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"patients":[]}`, second.Body.String())
	assert.Equal(t, 1, calls, "handler should not run on a cache hit")
}

func TestCacheMiddleware_KeysStayReadable(t *testing.T) {
	cache := newFakeCache()
	handler := middleware.NewCacheMiddleware(cache, nil).Middleware(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients/uncle-tan-001?expand=labs", nil))

	require.Len(t, cache.data, 1)
	for key := range cache.data {
		assert.Equal(t, "http:cache:GET:/api/patients/uncle-tan-001?expand=labs", key)
	}
}

func TestCacheMiddleware_LongestPrefixWins(t *testing.T) {
	cache := newFakeCache()
	handler := middleware.NewCacheMiddleware(cache, nil).Middleware(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients/uncle-tan-001", nil))

	assert.Equal(t, 600, cache.ttls["http:cache:GET:/api/patients/uncle-tan-001"])

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))

	assert.Equal(t, 300, cache.ttls["http:cache:GET:/api/patients"])
}

func TestCacheMiddleware_SkipsWrites(t *testing.T) {
	cache := newFakeCache()
	handler := middleware.NewCacheMiddleware(cache, nil).Middleware(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/patients/uncle-tan-001/ask", nil))

	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Empty(t, cache.data)
}

func TestCacheMiddleware_SkipsUnconfiguredRoutes(t *testing.T) {
	cache := newFakeCache()
	handler := middleware.NewCacheMiddleware(cache, nil).Middleware(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/ai/status", nil))

	assert.Empty(t, cache.data)
}

func TestCacheMiddleware_NilCachePassesThrough(t *testing.T) {
	handler := middleware.NewCacheMiddleware(nil, nil).Middleware(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
}

func TestCacheMiddleware_DoesNotCacheErrors(t *testing.T) {
	cache := newFakeCache()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Patient not found"}`))
	})
	handler := middleware.NewCacheMiddleware(cache, nil).Middleware(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, cache.data)
}

func TestIPRateLimiter_RejectsBeyondBurst(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 2)
	handler := limiter.Middleware(okHandler(`{}`))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestIPRateLimiter_TracksClientsSeparately(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 1)
	handler := limiter.Middleware(okHandler(`{}`))

	first := httptest.NewRequest("GET", "/api/patients", nil)
	first.Header.Set("X-Forwarded-For", "10.0.0.1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	exhausted := httptest.NewRequest("GET", "/api/patients", nil)
	exhausted.Header.Set("X-Forwarded-For", "10.0.0.1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, exhausted)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	other := httptest.NewRequest("GET", "/api/patients", nil)
	other.Header.Set("X-Forwarded-For", "10.0.0.2")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_AllowedOriginEchoed(t *testing.T) {
	cors := middleware.NewCORSMiddleware([]string{"http://localhost:5173", "http://localhost:3000"})
	handler := cors(okHandler(`{}`))

	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORS_DisallowedOriginGetsNoHeader(t *testing.T) {
	cors := middleware.NewCORSMiddleware([]string{"http://localhost:5173"})
	handler := cors(okHandler(`{}`))

	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	cors := middleware.NewCORSMiddleware([]string{"http://localhost:5173"})
	reached := false
	handler := cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest("OPTIONS", "/api/patients/uncle-tan-001/ask", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, reached)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCompression_GzipsWhenAccepted(t *testing.T) {
	handler := middleware.Compression(okHandler(`{"answer":"eGFR of 18 indicates Stage 4 CKD."}`))

	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"eGFR of 18 indicates Stage 4 CKD."}`, string(body))
}

func TestCompression_SkippedWithoutAcceptEncoding(t *testing.T) {
	handler := middleware.Compression(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, `{}`, w.Body.String())
}

func TestETag_NotModifiedOnMatch(t *testing.T) {
	handler := middleware.ETag(okHandler(`{"stable":"body"}`))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", "/api/patients", nil))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest("GET", "/api/patients", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}

func TestCacheControl_PathAndMethodHeaders(t *testing.T) {
	handler := middleware.CacheControl(okHandler(`{}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients", nil))
	assert.Equal(t, "public, max-age=120, must-revalidate", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients/uncle-tan-001", nil))
	assert.Equal(t, "public, max-age=300, must-revalidate", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/patients/uncle-tan-001/ask", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, "private, no-cache, must-revalidate", w.Header().Get("Cache-Control"))
}
