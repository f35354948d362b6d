// Package wishlist keeps titled product lists per customer. Products later
// move from a wishlist into the cart of the same title.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bazaar/activity"
	"bazaar/apperr"
	"bazaar/models"
	"bazaar/repo"
	"bazaar/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultTitle names the wishlist a product lands in when none is given.
const DefaultTitle = "My Wishlist"

type Service struct {
	Store    repo.Store
	Activity *activity.Recorder
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(store repo.Store, log *zap.Logger) *Service {
	return &Service{Store: store, Activity: activity.NewRecorder(store), Log: log, Now: time.Now}
}

type AddInput struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
}

// Add puts one product into the titled wishlist, creating it on first use.
// A product sits in at most one of the customer's wishlists.
func (s *Service) Add(ctx context.Context, customerID primitive.ObjectID, in AddInput) (*models.Wishlist, error) {
	if in.ProductID == "" {
		return nil, apperr.Validation("Product ID is required")
	}
	pid, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return nil, apperr.Validation("invalid productId")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	var out *models.Wishlist
	err = s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.Store.Products.FindByID(ctx, pid)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if _, err := s.Store.Wishlists.FindContaining(ctx, customerID, pid); err == nil {
			return apperr.Conflict("Product already in wishlist")
		} else if !errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("check wishlist: %w", err)
		}

		wl, err := s.Store.Wishlists.FindByCustomerAndTitle(ctx, customerID, title)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			now := s.Now()
			wl = &models.Wishlist{
				ID:         primitive.NewObjectID(),
				CustomerID: customerID,
				Title:      title,
				ProductIDs: []primitive.ObjectID{pid},
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := s.Store.Wishlists.Insert(ctx, wl); err != nil {
				return fmt.Errorf("insert wishlist: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load wishlist: %w", err)
		default:
			wl.ProductIDs = append(wl.ProductIDs, pid)
			if err := s.Store.Wishlists.UpdateProducts(ctx, wl.ID, wl.ProductIDs); err != nil {
				return fmt.Errorf("update wishlist: %w", err)
			}
		}
		out = wl
		return s.Activity.WishlistActivity(ctx, customerID, wl.ID, activity.WishlistAdded,
			fmt.Sprintf("You added '%s' to your wishlist", p.Title))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ProductView struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	Price  float64            `json:"price"`
	Stock  int                `json:"stock"`
	Colour string             `json:"colour"`
	Model  string             `json:"model"`
}

type View struct {
	ID       primitive.ObjectID `json:"_id"`
	Title    string             `json:"title"`
	Products []ProductView      `json:"products"`
}

// List projects every wishlist of the customer. Products that no longer
// exist are dropped.
func (s *Service) List(ctx context.Context, customerID primitive.ObjectID) ([]View, error) {
	lists, err := s.Store.Wishlists.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	var ids []primitive.ObjectID
	for _, wl := range lists {
		ids = append(ids, wl.ProductIDs...)
	}
	products, err := s.Store.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]View, 0, len(lists))
	for _, wl := range lists {
		v := View{ID: wl.ID, Title: wl.Title, Products: []ProductView{}}
		for _, pid := range wl.ProductIDs {
			if p, ok := byID[pid]; ok {
				v.Products = append(v.Products, ProductView{ID: p.ID, Title: p.Title, Price: p.Price, Stock: p.Quantity, Colour: p.Colour, Model: p.Model})
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// Remove drops productIDs from the wishlist, or every product when none are
// named. An emptied wishlist is deleted. It reports whether that happened.
func (s *Service) Remove(ctx context.Context, customerID, wishlistID primitive.ObjectID, productIDs []primitive.ObjectID) (bool, error) {
	var deleted bool
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		wl, err := s.Store.Wishlists.FindByID(ctx, wishlistID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && wl.CustomerID != customerID) {
			return apperr.NotFound("Item not found in wishlist")
		}
		if err != nil {
			return fmt.Errorf("load wishlist: %w", err)
		}

		removed := productIDs
		if len(removed) == 0 {
			removed = wl.ProductIDs
		}
		var hit []primitive.ObjectID
		for _, pid := range removed {
			if utils.ContainsID(wl.ProductIDs, pid) {
				hit = append(hit, pid)
			}
		}
		if len(hit) == 0 && len(wl.ProductIDs) > 0 {
			return apperr.NotFound("Item not found in wishlist")
		}

		remaining := utils.WithoutIDs(wl.ProductIDs, hit)
		deleted = len(remaining) == 0
		if deleted {
			err = s.Store.Wishlists.Delete(ctx, wl.ID)
		} else {
			err = s.Store.Wishlists.UpdateProducts(ctx, wl.ID, remaining)
		}
		if err != nil {
			return fmt.Errorf("update wishlist: %w", err)
		}

		for _, pid := range hit {
			title := "the product"
			if p, err := s.Store.Products.FindByID(ctx, pid); err == nil {
				title = p.Title
			}
			if err := s.Activity.WishlistActivity(ctx, customerID, wl.ID, activity.WishlistRemoved,
				fmt.Sprintf("You removed '%s' from your wishlist", title)); err != nil {
				return err
			}
		}
		return nil
	})
	return deleted, err
}
