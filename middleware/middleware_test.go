package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bazaar/globals"
	"bazaar/memstore"
	"bazaar/models"
	"bazaar/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func whoami(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"userId": utils.GetUserIDFromRequest(r),
		"role":   utils.GetRoleFromRequest(r),
	})
}

func serve(h httprouter.Handle, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec
}

func TestAuthenticateAcceptsRole(t *testing.T) {
	a := NewAuthenticator(secret)
	token, err := a.Issue("65f1c0a2b3d4e5f607182930", models.RoleSeller, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(a.Authenticate(whoami, models.RoleSeller), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "65f1c0a2b3d4e5f607182930", body["userId"])
	assert.Equal(t, models.RoleSeller, body["role"])
}

func TestAuthenticateRejects(t *testing.T) {
	a := NewAuthenticator(secret)
	customer, _ := a.Issue("c1", models.RoleCustomer, time.Now())
	expired, _ := a.Issue("c1", models.RoleCustomer, time.Now().Add(-4*time.Hour))
	forged, _ := NewAuthenticator([]byte("other")).Issue("c1", models.RoleSeller, time.Now())
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "c1", Role: models.RoleSeller})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing", "", http.StatusUnauthorized, "No token provided"},
		{"not bearer", "Token " + customer, http.StatusUnauthorized, "No token provided"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
		{"wrong key", "Bearer " + forged, http.StatusUnauthorized, "Invalid token"},
		{"alg none", "Bearer " + unsigned, http.StatusUnauthorized, "Invalid token"},
		{"wrong role", "Bearer " + customer, http.StatusForbidden, "Access denied"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := serve(a.Authenticate(whoami, models.RoleSeller), req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.msg)
		})
	}
}

func TestAuthenticateAnyRole(t *testing.T) {
	a := NewAuthenticator(secret)
	token, _ := a.Issue("c1", models.RoleCustomer, time.Now())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(a.Authenticate(whoami), req).Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	h := RequestLogger(zap.NewNop())(SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(globals.RequestIDKey).(string)
		w.Write([]byte(id))
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	id := rec.Header().Get("X-Request-ID")
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Body.String())
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	store := memstore.New().Repos()
	var calls int32
	h := Idempotency(store.Idempotency, zap.NewNop(), func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		n := atomic.AddInt32(&calls, 1)
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"call": n})
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders/add-order", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "k-1")
		return serve(h, req)
	}

	first := send(`{"a":1}`)
	assert.Equal(t, http.StatusCreated, first.Code)
	second := send(`{"a":1}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	conflict := send(`{"a":2}`)
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdempotencyServerErrorIsNotReplayed(t *testing.T) {
	store := memstore.New().Repos()
	var calls int32
	h := Idempotency(store.Idempotency, zap.NewNop(), func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if atomic.AddInt32(&calls, 1) == 1 {
			utils.RespondWithError(w, http.StatusInternalServerError, "transaction aborted")
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"ok": true})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders/add-order", strings.NewReader(`{"a":1}`))
		req.Header.Set("Idempotency-Key", "k-500")
		return serve(h, req)
	}

	assert.Equal(t, http.StatusInternalServerError, send().Code)
	assert.Equal(t, http.StatusCreated, send().Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// The successful response is recorded and replayed.
	assert.Equal(t, http.StatusCreated, send().Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotencyPassThroughWithoutKey(t *testing.T) {
	store := memstore.New().Repos()
	var calls int32
	h := Idempotency(store.Idempotency, zap.NewNop(), func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNoContent)
	})
	for i := 0; i < 2; i++ {
		serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotencyInFlightIsConflict(t *testing.T) {
	store := memstore.New().Repos()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	hash := computeRequestHash(req, []byte(`{}`), "")
	require.NoError(t, store.Idempotency.Insert(req.Context(), &models.IdempotencyRecord{Key: "k", RequestHash: hash}))

	req.Header.Set("Idempotency-Key", "k")
	h := Idempotency(store.Idempotency, zap.NewNop(), func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run")
	})
	assert.Equal(t, http.StatusConflict, serve(h, req).Code)
}

func TestChainOrder(t *testing.T) {
	var trail []string
	mark := func(name string) Middleware {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				trail = append(trail, name)
				next(w, r, ps)
			}
		}
	}
	h := Chain(mark("outer"), mark("inner"))(func(http.ResponseWriter, *http.Request, httprouter.Params) {
		trail = append(trail, "handler")
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trail)
}
