// Package products manages seller listings and product search.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bazaar/apperr"
	"bazaar/models"
	"bazaar/repo"
	"bazaar/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	Store repo.Store
	Log   *zap.Logger
	Now   func() time.Time
}

func NewService(store repo.Store, log *zap.Logger) *Service {
	return &Service{Store: store, Log: log, Now: time.Now}
}

const createSchemaURL = "https://bazaar.local/schemas/product-create.schema.json"
const updateSchemaURL = "https://bazaar.local/schemas/product-update.schema.json"

const createSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "description", "category", "brand", "model", "storage", "colour", "ram", "conditions", "features", "price", "quantity"],
  "properties": {
    "title": {"$ref": "#/$defs/text"},
    "description": {"$ref": "#/$defs/text"},
    "category": {"$ref": "#/$defs/text"},
    "brand": {"$ref": "#/$defs/text"},
    "model": {"$ref": "#/$defs/text"},
    "storage": {"$ref": "#/$defs/text"},
    "colour": {"$ref": "#/$defs/text"},
    "ram": {"$ref": "#/$defs/text"},
    "conditions": {"$ref": "#/$defs/list"},
    "features": {"$ref": "#/$defs/list"},
    "price": {"type": "number", "minimum": 0},
    "salePrice": {"type": ["number", "null"], "minimum": 0},
    "quantity": {"type": "integer", "minimum": 0},
    "sku": {"$ref": "#/$defs/text"},
    "negotiable": {"type": "boolean"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "specifications": {"$ref": "#/$defs/specs"},
    "seoTitle": {"type": "string"},
    "seoDescription": {"type": "string"}
  },
  "$defs": {
    "text": {"type": "string", "pattern": "\\S"},
    "list": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "specs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "value"],
        "properties": {"label": {"$ref": "#/$defs/text"}, "value": {"$ref": "#/$defs/text"}}
      }
    }
  }
}`

var (
	createValidator = utils.MustCompileSchema(createSchemaURL, createSchema)
	updateValidator = utils.MustCompileSchema(updateSchemaURL, withoutRequired(createSchema))
)

// withoutRequired drops the top-level required list so an update may carry
// any subset of fields, each still checked by the create rules.
func withoutRequired(schema string) string {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(schema), &doc); err != nil {
		panic(err)
	}
	delete(doc, "required")
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// ListItem is a row of the seller's product table.
type ListItem struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	SKU    string             `json:"sku,omitempty"`
	Price  float64            `json:"price"`
	Stock  int                `json:"stock"`
	Status string             `json:"status"`
}

// SearchItem is a product search hit.
type SearchItem struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	Price  float64            `json:"price"`
	Stock  int                `json:"stock"`
	Colour string             `json:"colour"`
	Model  string             `json:"model"`
}

// Create validates body and stores a new listing owned by sellerID.
func (s *Service) Create(ctx context.Context, sellerID primitive.ObjectID, body []byte) (*models.Product, error) {
	if err := utils.ValidateJSON(createValidator, body, "product"); err != nil {
		return nil, err
	}
	var p models.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, apperr.Validation("invalid request body")
	}
	now := s.Now()
	p.ID = primitive.NewObjectID()
	p.SellerID = sellerID
	p.SKU = strings.TrimSpace(p.SKU)
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Tags = utils.SplitTags(strings.Join(p.Tags, ","))
	if err := s.Store.Products.Insert(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, apperr.Validation("SKU already exists")
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// ListBySeller returns the seller's listings with their stock status.
func (s *Service) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]ListItem, error) {
	ps, err := s.Store.Products.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]ListItem, 0, len(ps))
	for _, p := range ps {
		out = append(out, ListItem{ID: p.ID, Title: p.Title, SKU: p.SKU, Price: p.Price, Stock: p.Quantity, Status: p.StockStatus()})
	}
	return out, nil
}

// Search matches keyword against title, brand and tags, case-insensitively.
// A blank keyword matches nothing.
func (s *Service) Search(ctx context.Context, keyword, category string) ([]SearchItem, error) {
	keyword = strings.TrimSpace(keyword)
	out := []SearchItem{}
	if keyword == "" {
		return out, nil
	}
	ps, err := s.Store.Products.Search(ctx, repo.ProductFilter{Keyword: keyword, Category: strings.TrimSpace(category)})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	for _, p := range ps {
		out = append(out, SearchItem{ID: p.ID, Title: p.Title, Price: p.Price, Stock: p.Quantity, Colour: p.Colour, Model: p.Model})
	}
	return out, nil
}

// Detail is a listing with its seller's public fields.
type Detail struct {
	models.Product
	Seller *SellerRef `json:"seller,omitempty"`
}

type SellerRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// Get loads one product. A seller may only see their own listings.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID, role string, userID primitive.ObjectID) (*Detail, error) {
	p, err := s.Store.Products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if role == models.RoleSeller && p.SellerID != userID {
		return nil, apperr.NotFound("Product not found")
	}
	d := &Detail{Product: *p}
	if se, err := s.Store.Sellers.FindByID(ctx, p.SellerID); err == nil {
		d.Seller = &SellerRef{ID: se.ID, Name: se.Name, Email: se.Email}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("load seller: %w", err)
	}
	return d, nil
}

// GetMany loads the products named by ids, skipping unknown ones.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]models.Product, error) {
	oids, err := utils.ParseObjectIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(oids) == 0 {
		return nil, apperr.Validation("productIds must be a non-empty array")
	}
	ps, err := s.Store.Products.FindByIDs(ctx, oids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if ps == nil {
		ps = []models.Product{}
	}
	return ps, nil
}

// owned loads a product and checks it belongs to sellerID.
func (s *Service) owned(ctx context.Context, id, sellerID primitive.ObjectID) (*models.Product, error) {
	p, err := s.Store.Products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && p.SellerID != sellerID) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

// Update applies the fields present in body to the seller's listing.
func (s *Service) Update(ctx context.Context, id, sellerID primitive.ObjectID, body []byte) (*models.Product, error) {
	if err := utils.ValidateJSON(updateValidator, body, "product"); err != nil {
		return nil, err
	}
	var u models.ProductUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, apperr.Validation("invalid request body")
	}
	if _, err := s.owned(ctx, id, sellerID); err != nil {
		return nil, err
	}
	p, err := s.Store.Products.Update(ctx, id, u)
	if errors.Is(err, repo.ErrDuplicateKey) {
		return nil, apperr.Validation("SKU already exists")
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes the seller's listing.
func (s *Service) Delete(ctx context.Context, id, sellerID primitive.ObjectID) error {
	if _, err := s.owned(ctx, id, sellerID); err != nil {
		return err
	}
	if err := s.Store.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
