package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bazaar/activity"
	"bazaar/cart"
	"bazaar/models"
	"bazaar/mq"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const tranIDPrefix = "temp_"

var errTempOrderGone = errors.New("temp order not found")

// parseTranID extracts the temp order id from a temp_<hex> transaction id.
func parseTranID(tranID string) (primitive.ObjectID, bool) {
	if !strings.HasPrefix(tranID, tranIDPrefix) {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimPrefix(tranID, tranIDPrefix))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func (s *Service) successURL(tranID string) string {
	return s.Config.FrontendURL + "/payment/success?tran_id=" + url.QueryEscape(tranID)
}

func (s *Service) failURL(tranID string) string {
	return s.Config.FrontendURL + "/payment/fail?tran_id=" + url.QueryEscape(tranID)
}

// lock takes the per-transaction callback lock. ok is false when another
// delivery of the same tran_id holds it. A Locker error is logged and the
// callback proceeds, relying on the transaction to stay consistent.
func (s *Service) lock(ctx context.Context, tranID string) (release func(), ok bool) {
	if s.Locker == nil {
		return func() {}, true
	}
	got, err := s.Locker.Acquire(ctx, tranID, callbackLockTTL)
	if err != nil {
		s.Log.Warn("callback lock unavailable", zap.String("tran_id", tranID), zap.Error(err))
		return func() {}, true
	}
	if !got {
		return nil, false
	}
	return func() {
		if err := s.Locker.Release(context.WithoutCancel(ctx), tranID); err != nil {
			s.Log.Warn("callback lock release failed", zap.String("tran_id", tranID), zap.Error(err))
		}
	}, true
}

// ConfirmPayment confirms a gateway checkout and returns the redirect target.
func (s *Service) ConfirmPayment(ctx context.Context, tranID string) string {
	id, ok := parseTranID(tranID)
	if !ok {
		s.Metrics.Callback("success", "invalid")
		return s.failURL("invalid")
	}
	release, ok := s.lock(ctx, tranID)
	if !ok {
		s.Metrics.Callback("success", "duplicate")
		return s.failURL(tranID)
	}
	defer release()

	var temp *models.TempOrder
	var orders []models.Order
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		temp, orders = nil, nil
		t, err := s.Store.TempOrders.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return errTempOrderGone
		}
		if err != nil {
			return fmt.Errorf("load temp order: %w", err)
		}

		if err := s.Store.Orders.SetPaymentStatus(ctx, t.Orders, models.PaymentPaid); err != nil {
			return fmt.Errorf("mark orders paid: %w", err)
		}
		paid, err := s.Store.Orders.FindByIDs(ctx, t.Orders)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		for _, o := range paid {
			if err := s.notifyPaid(ctx, o); err != nil {
				return err
			}
		}
		if err := cart.Reconcile(ctx, s.Store.Carts, t.CustomerID, productIDs(t.Products)); err != nil {
			return err
		}
		if err := s.Store.TempOrders.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete temp order: %w", err)
		}
		temp, orders = t, paid
		return nil
	})
	if err != nil {
		if errors.Is(err, errTempOrderGone) {
			s.Log.Warn("payment success for unknown temp order", zap.String("tran_id", tranID))
			s.Metrics.Callback("success", "not_found")
		} else {
			s.Log.Error("payment success processing failed", zap.String("tran_id", tranID), zap.Error(err))
			s.Metrics.Callback("success", "error")
		}
		return s.failURL(tranID)
	}

	s.Metrics.Callback("success", "ok")
	s.publish(ctx, mq.PaymentReceived, temp.CustomerID, orders, map[string]interface{}{"tranId": tranID})
	return s.successURL(tranID)
}

func (s *Service) notifyPaid(ctx context.Context, o models.Order) error {
	product, err := s.Store.Products.FindByID(ctx, o.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if product.SellerID.IsZero() {
		return nil
	}
	desc := fmt.Sprintf("Payment received for order #%s", o.OrderID)
	return s.Activity.NotifySeller(ctx, product.SellerID, o.ID, activity.PaymentReceived, desc)
}

// RollbackPayment rolls back a gateway checkout that failed or was cancelled and
// returns the redirect target, which is always the fail page.
func (s *Service) RollbackPayment(ctx context.Context, tranID, kind string) string {
	target := s.failURL(tranID)
	id, ok := parseTranID(tranID)
	if !ok {
		s.Metrics.Callback(kind, "invalid")
		return target
	}
	release, ok := s.lock(ctx, tranID)
	if !ok {
		s.Metrics.Callback(kind, "duplicate")
		return target
	}
	defer release()

	var temp *models.TempOrder
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		temp = nil
		t, err := s.Store.TempOrders.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load temp order: %w", err)
		}
		if err := s.Store.Orders.DeleteMany(ctx, t.Orders); err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		if err := s.Store.Shipping.Delete(ctx, t.ShippingInfoID); err != nil {
			return fmt.Errorf("delete shipping info: %w", err)
		}
		if t.AddressIDs.PrimaryCreated {
			if err := s.Store.Addresses.Delete(ctx, t.AddressIDs.Primary); err != nil {
				return fmt.Errorf("delete primary address: %w", err)
			}
		}
		if t.AddressIDs.Optional != nil {
			if err := s.Store.Addresses.Delete(ctx, *t.AddressIDs.Optional); err != nil {
				return fmt.Errorf("delete optional address: %w", err)
			}
		}
		if err := s.Store.TempOrders.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete temp order: %w", err)
		}
		temp = t
		return nil
	})
	switch {
	case err != nil:
		s.Log.Error("payment rollback failed", zap.String("tran_id", tranID), zap.String("kind", kind), zap.Error(err))
		s.Metrics.Callback(kind, "error")
	case temp == nil:
		s.Metrics.Callback(kind, "not_found")
	default:
		s.Metrics.Callback(kind, "ok")
		s.publish(ctx, mq.PaymentFailed, temp.CustomerID, nil, map[string]interface{}{"tranId": tranID, "reason": kind})
	}
	return target
}
