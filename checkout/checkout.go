package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"bazaar/apperr"
	"bazaar/cart"
	"bazaar/gateway"
	"bazaar/models"
	"bazaar/mq"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// stage names the last step a checkout completed.
type stage string

const (
	stageValidating        stage = "validating"
	stageAddressesResolved stage = "addresses_resolved"
	stageShippingCreated   stage = "shipping_created"
	stageOrdersCreated     stage = "orders_created"
	stageCommitted         stage = "committed"
	stagePaymentPending    stage = "payment_pending"
)

type AddressRefs struct {
	Primary  primitive.ObjectID  `json:"primary"`
	Optional *primitive.ObjectID `json:"optional"`
}

type OrderSummary struct {
	TotalOrders int     `json:"totalOrders"`
	Subtotal    float64 `json:"subtotal"`
	Shipping    float64 `json:"shipping"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// Placed is the result of a committed cash-on-delivery checkout.
type Placed struct {
	Orders       []models.Order       `json:"orders"`
	ShippingInfo *models.ShippingInfo `json:"shippingInfo"`
	Addresses    AddressRefs          `json:"addresses"`
	OrderSummary OrderSummary         `json:"orderSummary"`
}

// PaymentSession is the result of a gateway checkout.
type PaymentSession struct {
	PaymentURL string `json:"paymentUrl"`
	SessionKey string `json:"sessionkey"`
}

// Outcome holds exactly one of Placed or Session.
type Outcome struct {
	Placed  *Placed
	Session *PaymentSession
}

// txResult is rebuilt on every attempt of the transaction body.
type txResult struct {
	stage    stage
	addrs    resolvedAddresses
	shipping *models.ShippingInfo
	orders   []models.Order
	temp     *models.TempOrder
}

// Checkout places the orders described by req for customerID.
func (s *Service) Checkout(ctx context.Context, customerID primitive.ObjectID, req *Request) (*Outcome, error) {
	if customerID.IsZero() {
		return nil, apperr.Validation("Customer ID is required")
	}
	if len(req.Payload.Products) == 0 {
		return nil, apperr.Validation("Products are required in checkout payload")
	}
	for _, l := range req.Payload.Products {
		if l.ProductID.IsZero() || l.Quantity < 1 || l.Price < 0 {
			return nil, apperr.Validation("Each product must have productId, quantity, and price")
		}
	}
	if req.PaymentMethod != models.PaymentCOD && req.PaymentMethod != models.PaymentGateway {
		return nil, apperr.Validation("Unsupported payment method")
	}
	if err := checkAddressInput(req); err != nil {
		return nil, err
	}

	res, err := s.runCheckoutTx(ctx, customerID, req)
	if errors.Is(err, repo.ErrDuplicateKey) {
		s.Log.Warn("checkout hit duplicate identifier, retrying", zap.String("customer_id", customerID.Hex()))
		res, err = s.runCheckoutTx(ctx, customerID, req)
	}
	if err != nil {
		s.Metrics.Checkout(req.PaymentMethod, "error")
		s.Log.Error("checkout failed",
			zap.String("customer_id", customerID.Hex()),
			zap.String("stage", string(res.stage)),
			zap.Error(err))
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Transaction(err)
	}

	s.publish(ctx, mq.OrderPlaced, customerID, res.orders, map[string]interface{}{"paymentMethod": req.PaymentMethod})

	if req.PaymentMethod == models.PaymentCOD {
		s.Metrics.Checkout(req.PaymentMethod, "ok")
		return &Outcome{Placed: &Placed{
			Orders:       res.orders,
			ShippingInfo: res.shipping,
			Addresses:    AddressRefs{Primary: res.addrs.Primary.ID, Optional: res.addrs.optionalID()},
			OrderSummary: OrderSummary{
				TotalOrders: len(res.orders),
				Subtotal:    req.Payload.Subtotal,
				Shipping:    req.Payload.Shipping,
				Tax:         req.Payload.Tax,
				Total:       req.Payload.Total,
			},
		}}, nil
	}

	sess, err := s.openPaymentSession(ctx, req, res)
	if err != nil {
		s.Metrics.Checkout(req.PaymentMethod, "gateway_error")
		return nil, err
	}
	s.Metrics.Checkout(req.PaymentMethod, "ok")
	return &Outcome{Session: sess}, nil
}

// runCheckoutTx performs every write of the checkout in one transaction.
// The returned result is never nil so its stage can be logged on failure.
func (s *Service) runCheckoutTx(ctx context.Context, customerID primitive.ObjectID, req *Request) (*txResult, error) {
	res := &txResult{stage: stageValidating}
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		*res = txResult{stage: stageValidating}

		addrs, err := s.resolveAddresses(ctx, customerID, req)
		if err != nil {
			return err
		}
		res.addrs = addrs
		res.stage = stageAddressesResolved

		si, err := s.createShipping(ctx, customerID, req, addrs)
		if err != nil {
			return err
		}
		res.shipping = si
		res.stage = stageShippingCreated

		orders, err := s.createOrders(ctx, customerID, si.ID, req.PaymentMethod, req.Payload.Products)
		if err != nil {
			return err
		}
		res.orders = orders
		res.stage = stageOrdersCreated

		if req.PaymentMethod == models.PaymentCOD {
			if err := cart.Reconcile(ctx, s.Store.Carts, customerID, productIDs(req.Payload.Products)); err != nil {
				return err
			}
			res.stage = stageCommitted
			return nil
		}

		temp := &models.TempOrder{
			ID:             primitive.NewObjectID(),
			CustomerID:     customerID,
			Orders:         orderObjectIDs(orders),
			ShippingInfoID: si.ID,
			AddressIDs: models.TempAddressRefs{
				Primary:        addrs.Primary.ID,
				Optional:       addrs.optionalID(),
				PrimaryCreated: addrs.PrimaryCreated,
			},
			CheckoutPayload: req.Payload,
			Products:        req.Payload.Products,
			CreatedAt:       s.Now(),
		}
		if err := s.Store.TempOrders.Insert(ctx, temp); err != nil {
			return fmt.Errorf("insert temp order: %w", err)
		}
		res.temp = temp
		res.stage = stagePaymentPending
		return nil
	})
	return res, err
}

// openPaymentSession runs after commit. A failure leaves the temp order in
// place for the fail callback or the TTL monitor to clear.
func (s *Service) openPaymentSession(ctx context.Context, req *Request, res *txResult) (*PaymentSession, error) {
	tranID := "temp_" + res.temp.ID.Hex()
	q := "?tran_id=" + url.QueryEscape(tranID)
	base := s.Config.BackendURL + "/api/payment"
	a := res.addrs.Primary

	d := gateway.Details{
		TotalAmount:     req.Payload.Total,
		Currency:        s.Config.Currency,
		TranID:          tranID,
		SuccessURL:      base + "/success" + q,
		FailURL:         base + "/fail" + q,
		CancelURL:       base + "/cancel" + q,
		IPNURL:          base + "/ipn",
		ProductName:     fmt.Sprintf("Order for %d items", len(res.orders)),
		ProductCategory: "Electronic",
		CustomerName:    req.FullName,
		CustomerEmail:   req.Email,
		CustomerPhone:   req.PhoneNumber,
		AddressLine1:    a.AddressLine,
		AddressLine2:    req.Address.AddressLine2,
		City:            a.City,
		State:           a.State,
		PostCode:        a.ZipCode,
		Country:         a.Country,
	}

	sess, err := s.Gateway.Init(ctx, d)
	if err != nil {
		s.Log.Error("payment session init failed", zap.String("tran_id", tranID), zap.Error(err))
		var ie *gateway.InitError
		if errors.As(err, &ie) {
			return nil, apperr.External("Failed to create payment session", ie.Payload)
		}
		return nil, apperr.External("Failed to create payment session", map[string]interface{}{"error": err.Error()})
	}
	return &PaymentSession{PaymentURL: sess.GatewayPageURL, SessionKey: sess.SessionKey}, nil
}

func (s *Service) publish(ctx context.Context, kind string, customerID primitive.ObjectID, orders []models.Order, data map[string]interface{}) {
	if s.Events == nil {
		return
	}
	ev := mq.Event{Type: kind, CustomerID: customerID.Hex(), Data: data}
	for _, o := range orders {
		ev.OrderIDs = append(ev.OrderIDs, o.OrderID)
	}
	mq.Emit(ctx, s.Events, s.Log, ev)
}

func productIDs(lines []models.LineItem) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ProductID)
	}
	return out
}

func orderObjectIDs(orders []models.Order) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}
