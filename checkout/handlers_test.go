package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bazaar/gateway"
	"bazaar/globals"
	"bazaar/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) router() *httprouter.Router {
	r := httprouter.New()
	r.POST("/api/orders/add-order", f.svc.AddOrder)
	r.GET("/api/payment/success", f.svc.PaymentSuccess)
	r.POST("/api/payment/success", f.svc.PaymentSuccess)
	r.POST("/api/payment/fail", f.svc.PaymentFail)
	r.POST("/api/payment/cancel", f.svc.PaymentCancel)
	r.POST("/api/payment/ipn", f.svc.PaymentIPN)
	return r
}

func (f *fixture) orderBody(method string) string {
	p := f.products[0]
	return `{
  "paymentMethod": "` + method + `",
  "fullName": "Rahim Uddin",
  "phoneNumber": "+8801700000000",
  "email": "rahim@example.com",
  "addressLine1": "House 12, Road 5",
  "city": "Dhaka",
  "zipCode": "1207",
  "country": "Bangladesh",
  "checkoutPayload": {
    "products": [{"productId": "` + p.ID.Hex() + `", "quantity": 1, "price": 100}],
    "subtotal": 100,
    "shipping": 60,
    "total": 160
  }
}`
}

func (f *fixture) post(body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders/add-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, f.customer.Hex()))
	}
	rec := httptest.NewRecorder()
	f.router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAddOrderCOD(t *testing.T) {
	f := newFixture(t)
	rec := f.post(f.orderBody(models.PaymentCOD), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Orders created successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["orders"], 1)
	summary := data["orderSummary"].(map[string]interface{})
	assert.Equal(t, 1.0, summary["totalOrders"])
	assert.Equal(t, 160.0, summary["total"])
}

func TestAddOrderGateway(t *testing.T) {
	f := newFixture(t)
	rec := f.post(f.orderBody(models.PaymentGateway), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Payment session created", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "https://pay.example/"+f.tranID(t), data["paymentUrl"])
	assert.Equal(t, "SK-"+f.tranID(t), data["sessionkey"])
}

func TestAddOrderRejections(t *testing.T) {
	f := newFixture(t)

	rec := f.post(f.orderBody(models.PaymentCOD), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer ID is required", decode(t, rec)["message"])

	rec = f.post(`{"paymentMethod":"cod"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	noAddr := strings.Replace(f.orderBody(models.PaymentCOD), `"city": "Dhaka",`, ``, 1)
	rec = f.post(noAddr, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Address details are required when addressId is not provided", decode(t, rec)["message"])

	assert.Empty(t, f.orders(t))
}

func TestAddOrderGatewayFailureCarriesPayload(t *testing.T) {
	f := newFixture(t)
	f.gw.err = &gateway.InitError{Payload: map[string]interface{}{"status": "FAILED"}}
	rec := f.post(f.orderBody(models.PaymentGateway), true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Failed to create payment session", body["message"])
	assert.Equal(t, "FAILED", body["error"].(map[string]interface{})["status"])
}

func TestPaymentCallbacksRedirect(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.post(f.orderBody(models.PaymentGateway), true).Code)
	tranID := f.tranID(t)

	form := url.Values{"tran_id": {tranID}, "status": {"VALID"}}
	req := httptest.NewRequest(http.MethodPost, "/api/payment/success", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://shop.example/payment/success?tran_id="+tranID, rec.Header().Get("Location"))
	assert.Equal(t, models.PaymentPaid, f.orders(t)[0].PaymentStatus)

	req = httptest.NewRequest(http.MethodPost, "/api/payment/cancel?tran_id="+tranID, nil)
	rec = httptest.NewRecorder()
	f.router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://shop.example/payment/fail?tran_id="+tranID, rec.Header().Get("Location"))
	assert.Len(t, f.orders(t), 1, "paid orders survive a late cancel")
}

func TestPaymentIPNAcknowledges(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"tran_id": {"temp_x"}, "status": {"VALID"}}
	req := httptest.NewRequest(http.MethodPost, "/api/payment/ipn", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
