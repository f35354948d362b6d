package orders

import (
	"context"
	"errors"
	"fmt"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/models"
	"bazaar/mq"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BuyAgain is accepted in place of a status and reorders the same line.
const BuyAgain = "buy again"

// Actor is the authenticated user changing an order.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

type StatusResult struct {
	Order *models.Order
	// Reordered is set instead of Order for BuyAgain.
	Reordered *models.Order
}

// UpdateStatus moves an order to status on behalf of its customer or the
// seller of its product. BuyAgain leaves the order untouched and creates a
// pending copy with fresh identifiers.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, actor Actor, status string) (*StatusResult, error) {
	if status != BuyAgain && !models.ValidOrderStatus(status) {
		return nil, apperr.Validation("Invalid order status")
	}

	var (
		res  StatusResult
		prev string
	)
	run := func() error {
		return s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
			res = StatusResult{}
			o, err := s.Store.Orders.FindByID(ctx, orderID)
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("Order not found.")
			}
			if err != nil {
				return fmt.Errorf("load order: %w", err)
			}
			sellerID, err := s.authorize(ctx, o, actor)
			if err != nil {
				return err
			}

			if status == BuyAgain {
				clone, err := s.reorder(ctx, o)
				if err != nil {
					return err
				}
				res.Reordered = clone
				return nil
			}

			prev = o.OrderStatus
			if err := s.Store.Orders.SetOrderStatus(ctx, o.ID, status); err != nil {
				return fmt.Errorf("set order status: %w", err)
			}
			o.OrderStatus = status
			o.UpdatedAt = s.Now()

			line := fmt.Sprintf("Your order #%s has been %s", o.OrderID, status)
			if err := s.Activity.OrderActivity(ctx, o.CustomerID, o.ID, activity.OrderUpdated, line); err != nil {
				return err
			}
			if actor.Role == models.RoleCustomer && !sellerID.IsZero() {
				desc := fmt.Sprintf("Order #%s has been %s by the customer.", o.OrderID, status)
				if err := s.Activity.NotifySeller(ctx, sellerID, o.ID, activity.StatusChanged, desc); err != nil {
					return err
				}
			}
			res.Order = o
			return nil
		})
	}
	err := run()
	if errors.Is(err, repo.ErrDuplicateKey) {
		s.Log.Warn("reorder hit duplicate identifier, retrying", zap.String("order_id", orderID.Hex()))
		err = run()
	}
	if err != nil {
		return nil, err
	}

	if res.Reordered != nil {
		s.publish(ctx, mq.OrderPlaced, res.Reordered, map[string]interface{}{"reorderOf": orderID.Hex()})
	} else {
		s.publish(ctx, mq.OrderStatusChanged, res.Order, map[string]interface{}{
			"from": prev,
			"to":   status,
			"by":   actor.Role,
		})
	}
	return &res, nil
}

// authorize checks that actor may change o and returns the seller of its
// product, zero when the product is gone.
func (s *Service) authorize(ctx context.Context, o *models.Order, actor Actor) (primitive.ObjectID, error) {
	forbidden := apperr.Forbidden("You are not authorized to update this order.")
	p, err := s.Store.Products.FindByID(ctx, o.ProductID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return primitive.NilObjectID, fmt.Errorf("load product: %w", err)
	}
	var sellerID primitive.ObjectID
	if err == nil {
		sellerID = p.SellerID
	}

	switch actor.Role {
	case models.RoleSeller:
		if sellerID.IsZero() || sellerID != actor.ID {
			return primitive.NilObjectID, forbidden
		}
	case models.RoleCustomer:
		if o.CustomerID != actor.ID {
			return primitive.NilObjectID, forbidden
		}
	default:
		return primitive.NilObjectID, apperr.Unauthorized("Unauthorized request.")
	}
	return sellerID, nil
}

func (s *Service) reorder(ctx context.Context, o *models.Order) (*models.Order, error) {
	orderID, err := s.IDs.OrderID(ctx, s.Store.Orders.ExistsOrderID)
	if err != nil {
		return nil, err
	}
	txnID, err := s.IDs.TransactionID(ctx, s.Store.Orders.ExistsTransactionID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	clone := *o
	clone.ID = primitive.NewObjectID()
	clone.OrderID = orderID
	clone.TransactionID = txnID
	clone.OrderStatus = models.OrderPending
	clone.PaymentStatus = models.PaymentPending
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if err := s.Store.Orders.Insert(ctx, &clone); err != nil {
		return nil, fmt.Errorf("insert order %s: %w", orderID, err)
	}
	line := fmt.Sprintf("Your order #%s has been placed", clone.OrderID)
	if err := s.Activity.OrderActivity(ctx, clone.CustomerID, clone.ID, activity.OrderAdded, line); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (s *Service) publish(ctx context.Context, kind string, o *models.Order, data map[string]interface{}) {
	if s.Events == nil || o == nil {
		return
	}
	mq.Emit(ctx, s.Events, s.Log, mq.Event{
		Type:       kind,
		CustomerID: o.CustomerID.Hex(),
		OrderIDs:   []string{o.OrderID},
		Data:       data,
	})
}
