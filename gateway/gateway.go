// Package gateway talks to the hosted-checkout payment gateway.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	SandboxURL = "https://sandbox.sslcommerz.com"
	LiveURL    = "https://securepay.sslcommerz.com"

	initPath = "/gwprocess/v4/api.php"
)

// Gateway opens hosted payment sessions.
type Gateway interface {
	Init(ctx context.Context, d Details) (*Session, error)
}

// Details is the payment session request.
type Details struct {
	TotalAmount     float64
	Currency        string
	TranID          string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	ProductName     string
	ProductCategory string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	AddressLine1  string
	AddressLine2  string
	City          string
	State         string
	PostCode      string
	Country       string
}

// Values encodes d in the gateway's form field names.
func (d Details) Values() url.Values {
	v := url.Values{}
	v.Set("total_amount", strconv.FormatFloat(d.TotalAmount, 'f', 2, 64))
	v.Set("currency", d.Currency)
	v.Set("tran_id", d.TranID)
	v.Set("success_url", d.SuccessURL)
	v.Set("fail_url", d.FailURL)
	v.Set("cancel_url", d.CancelURL)
	v.Set("ipn_url", d.IPNURL)
	v.Set("shipping_method", "Courier")
	v.Set("product_name", d.ProductName)
	v.Set("product_category", d.ProductCategory)
	v.Set("product_profile", "general")

	v.Set("cus_name", d.CustomerName)
	v.Set("cus_email", d.CustomerEmail)
	v.Set("cus_add1", d.AddressLine1)
	v.Set("cus_add2", d.AddressLine2)
	v.Set("cus_city", d.City)
	v.Set("cus_state", d.State)
	v.Set("cus_postcode", d.PostCode)
	v.Set("cus_country", d.Country)
	v.Set("cus_phone", d.CustomerPhone)
	v.Set("cus_fax", "")

	v.Set("ship_name", d.CustomerName)
	v.Set("ship_add1", d.AddressLine1)
	v.Set("ship_add2", d.AddressLine2)
	v.Set("ship_city", d.City)
	v.Set("ship_state", d.State)
	v.Set("ship_postcode", d.PostCode)
	v.Set("ship_country", d.Country)
	return v
}

// Session is a successfully opened payment session.
type Session struct {
	GatewayPageURL string
	SessionKey     string
}

// InitError is returned when the gateway answers without a payment page.
// Payload is the gateway's decoded response.
type InitError struct {
	Payload map[string]interface{}
}

func (e *InitError) Error() string {
	if reason, ok := e.Payload["failedreason"].(string); ok && reason != "" {
		return "payment gateway rejected session: " + reason
	}
	return "payment gateway rejected session"
}

// SSLCommerz is the SSLCommerz v4 hosted checkout client.
type SSLCommerz struct {
	StoreID       string
	StorePassword string
	BaseURL       string
	HTTP          *http.Client
}

func NewSSLCommerz(storeID, storePassword string, live bool) *SSLCommerz {
	base := SandboxURL
	if live {
		base = LiveURL
	}
	return &SSLCommerz{
		StoreID:       storeID,
		StorePassword: storePassword,
		BaseURL:       base,
		HTTP:          &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SSLCommerz) Init(ctx context.Context, d Details) (*Session, error) {
	form := d.Values()
	form.Set("store_id", s.StoreID)
	form.Set("store_passwd", s.StorePassword)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+initPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read payment gateway response: %w", err)
	}

	payload := map[string]interface{}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &InitError{Payload: map[string]interface{}{
			"status": resp.Status,
			"body":   string(body),
		}}
	}

	pageURL, _ := payload["GatewayPageURL"].(string)
	if pageURL == "" {
		return nil, &InitError{Payload: payload}
	}
	sessionKey, _ := payload["sessionkey"].(string)
	return &Session{GatewayPageURL: pageURL, SessionKey: sessionKey}, nil
}
