package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func ok(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func hit(h httprouter.Handle, addr string) int {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec.Code
}

func TestLimitPerIP(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 2)
	rl.now = func() time.Time { return now }
	h := rl.Limit(ok)

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1000"), "other IPs have their own allowance")

	now = now.Add(12 * time.Second)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1003"))
}

func TestIdleVisitorsAreSwept(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 1)
	rl.now = func() time.Time { return now }
	rl.getLimiter("a")
	now = now.Add(11 * time.Minute)
	rl.getLimiter("b")
	assert.Len(t, rl.visitors, 1)
}
