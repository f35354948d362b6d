package cart

import (
	"context"
	"fmt"

	"bazaar/repo"
	"bazaar/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reconcile removes ordered products from every cart of the customer. A cart
// left empty is deleted. Call it with a transaction ctx so it commits or rolls
// back with the order writes.
func Reconcile(ctx context.Context, carts repo.CartRepo, customerID primitive.ObjectID, ordered []primitive.ObjectID) error {
	if len(ordered) == 0 {
		return nil
	}
	list, err := carts.ListByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("list carts: %w", err)
	}
	for _, c := range list {
		remaining := utils.WithoutIDs(c.ProductIDs, ordered)
		switch {
		case len(remaining) == len(c.ProductIDs):
			continue
		case len(remaining) == 0:
			if err := carts.Delete(ctx, c.ID); err != nil {
				return fmt.Errorf("delete cart %s: %w", c.ID.Hex(), err)
			}
		default:
			if err := carts.UpdateProducts(ctx, c.ID, remaining); err != nil {
				return fmt.Errorf("update cart %s: %w", c.ID.Hex(), err)
			}
		}
	}
	return nil
}
