package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(perMinute float64, burst int) (*Limiter, *time.Time) {
	l := New(Config{PerMinute: perMinute, Burst: burst, IdleTTL: time.Hour})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowBurstThenRefuse(t *testing.T) {
	l, _ := newTestLimiter(6, 2)

	r1 := l.Allow("1.2.3.4")
	assert.True(t, r1.Allowed)
	assert.Equal(t, 1, r1.Remaining)
	assert.Equal(t, 2, r1.Limit)

	assert.True(t, l.Allow("1.2.3.4").Allowed)

	r3 := l.Allow("1.2.3.4")
	assert.False(t, r3.Allowed)
	assert.Equal(t, 0, r3.Remaining)
	// six per minute: one token every ten seconds
	assert.Equal(t, 10*time.Second, r3.RetryAfter)
}

func TestRefill(t *testing.T) {
	l, now := newTestLimiter(6, 1)

	require.True(t, l.Allow("k").Allowed)
	require.False(t, l.Allow("k").Allowed)

	*now = now.Add(10 * time.Second)
	assert.True(t, l.Allow("k").Allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	assert.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed)
	assert.Equal(t, 2, l.Clients())
}

func TestDisabled(t *testing.T) {
	l, _ := newTestLimiter(0, 1)

	assert.False(t, l.Enabled())
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("k").Allowed)
	}
	assert.Equal(t, 0, l.Clients())
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	var limited int
	h := l.Middleware(func(w http.ResponseWriter, r *http.Request, res Result) {
		limited++
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do("10.0.0.1:1234")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = do("10.0.0.1:5678")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)

	rec = do("10.0.0.2:1234")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", ClientIP(req))
}
