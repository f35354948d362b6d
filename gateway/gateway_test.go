package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, initPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "store", r.PostForm.Get("store_id"))
		assert.Equal(t, "secret", r.PostForm.Get("store_passwd"))
		assert.Equal(t, "temp_abc", r.PostForm.Get("tran_id"))
		assert.Equal(t, "1250.50", r.PostForm.Get("total_amount"))
		assert.Equal(t, "BDT", r.PostForm.Get("currency"))
		assert.Equal(t, "Dhaka", r.PostForm.Get("ship_city"))
		w.Write([]byte(`{"status":"SUCCESS","GatewayPageURL":"https://pay.example/abc","sessionkey":"SK1"}`))
	}))
	defer srv.Close()

	g := NewSSLCommerz("store", "secret", false)
	g.BaseURL = srv.URL
	sess, err := g.Init(context.Background(), Details{
		TotalAmount: 1250.5, Currency: "BDT", TranID: "temp_abc", City: "Dhaka",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", sess.GatewayPageURL)
	assert.Equal(t, "SK1", sess.SessionKey)
}

func TestInitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","failedreason":"Store Credential Error"}`))
	}))
	defer srv.Close()

	g := NewSSLCommerz("store", "bad", false)
	g.BaseURL = srv.URL
	_, err := g.Init(context.Background(), Details{TranID: "temp_x"})

	var ie *InitError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "FAILED", ie.Payload["status"])
	assert.Contains(t, err.Error(), "Store Credential Error")
}

func TestInitNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	g := NewSSLCommerz("store", "secret", true)
	assert.Equal(t, LiveURL, g.BaseURL)
	g.BaseURL = srv.URL
	_, err := g.Init(context.Background(), Details{})

	var ie *InitError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "upstream down", ie.Payload["body"])
}
