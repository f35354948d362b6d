package checkout

import (
	"context"
	"errors"
	"fmt"

	"bazaar/activity"
	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createOrders writes one pending order per line item, notifying the seller of
// each product and logging the order in the customer's feed.
func (s *Service) createOrders(ctx context.Context, customerID, shippingID primitive.ObjectID, method string, lines []models.LineItem) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(lines))
	for _, line := range lines {
		orderID, err := s.IDs.OrderID(ctx, s.Store.Orders.ExistsOrderID)
		if err != nil {
			return nil, err
		}
		txnID, err := s.IDs.TransactionID(ctx, s.Store.Orders.ExistsTransactionID)
		if err != nil {
			return nil, err
		}

		now := s.Now()
		o := models.Order{
			ID:             primitive.NewObjectID(),
			OrderID:        orderID,
			TransactionID:  txnID,
			CustomerID:     customerID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			Price:          line.Price,
			PaymentMethod:  method,
			ShippingInfoID: shippingID,
			PaymentStatus:  models.PaymentPending,
			OrderStatus:    models.OrderPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.Store.Orders.Insert(ctx, &o); err != nil {
			return nil, fmt.Errorf("insert order %s: %w", orderID, err)
		}

		product, err := s.Store.Products.FindByID(ctx, line.ProductID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("load product: %w", err)
		case !product.SellerID.IsZero():
			desc := fmt.Sprintf("An order has been placed for '%s'", product.Title)
			if err := s.Activity.NotifySeller(ctx, product.SellerID, o.ID, activity.OrderPlaced, desc); err != nil {
				return nil, err
			}
		}

		status := fmt.Sprintf("Your order #%s has been placed", o.OrderID)
		if err := s.Activity.OrderActivity(ctx, customerID, o.ID, activity.OrderAdded, status); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
