package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Specification struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// Product is a seller listing. Quantity is the stock on hand.
type Product struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	SellerID       primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description" bson:"description"`
	Category       string             `json:"category" bson:"category"`
	Brand          string             `json:"brand" bson:"brand"`
	Model          string             `json:"model" bson:"model"`
	Storage        string             `json:"storage" bson:"storage"`
	Colour         string             `json:"colour" bson:"colour"`
	RAM            string             `json:"ram" bson:"ram"`
	Conditions     []string           `json:"conditions" bson:"conditions"`
	Features       []string           `json:"features" bson:"features"`
	Specifications []Specification    `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Price          float64            `json:"price" bson:"price"`
	SalePrice      *float64           `json:"salePrice,omitempty" bson:"salePrice,omitempty"`
	Quantity       int                `json:"quantity" bson:"quantity"`
	SKU            string             `json:"sku,omitempty" bson:"sku,omitempty"`
	Negotiable     bool               `json:"negotiable" bson:"negotiable"`
	Tags           []string           `json:"tags" bson:"tags"`
	SEOTitle       string             `json:"seoTitle,omitempty" bson:"seoTitle,omitempty"`
	SEODescription string             `json:"seoDescription,omitempty" bson:"seoDescription,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// StockStatus buckets the on-hand quantity for listings.
func (p Product) StockStatus() string {
	switch {
	case p.Quantity == 0:
		return "out of stock"
	case p.Quantity <= 10:
		return "low stock"
	default:
		return "active"
	}
}

// ProductUpdate carries the optional fields of a listing edit.
type ProductUpdate struct {
	Title          *string          `json:"title" bson:"title,omitempty"`
	Description    *string          `json:"description" bson:"description,omitempty"`
	Category       *string          `json:"category" bson:"category,omitempty"`
	Brand          *string          `json:"brand" bson:"brand,omitempty"`
	Model          *string          `json:"model" bson:"model,omitempty"`
	Storage        *string          `json:"storage" bson:"storage,omitempty"`
	Colour         *string          `json:"colour" bson:"colour,omitempty"`
	RAM            *string          `json:"ram" bson:"ram,omitempty"`
	Conditions     *[]string        `json:"conditions" bson:"conditions,omitempty"`
	Features       *[]string        `json:"features" bson:"features,omitempty"`
	Specifications *[]Specification `json:"specifications" bson:"specifications,omitempty"`
	Price          *float64         `json:"price" bson:"price,omitempty"`
	SalePrice      *float64         `json:"salePrice" bson:"salePrice,omitempty"`
	Quantity       *int             `json:"quantity" bson:"quantity,omitempty"`
	SKU            *string          `json:"sku" bson:"sku,omitempty"`
	Negotiable     *bool            `json:"negotiable" bson:"negotiable,omitempty"`
	Tags           *[]string        `json:"tags" bson:"tags,omitempty"`
	SEOTitle       *string          `json:"seoTitle" bson:"seoTitle,omitempty"`
	SEODescription *string          `json:"seoDescription" bson:"seoDescription,omitempty"`
}

// Apply copies the set fields onto p.
func (u ProductUpdate) Apply(p *Product) {
	setString(&p.Title, u.Title)
	setString(&p.Description, u.Description)
	setString(&p.Category, u.Category)
	setString(&p.Brand, u.Brand)
	setString(&p.Model, u.Model)
	setString(&p.Storage, u.Storage)
	setString(&p.Colour, u.Colour)
	setString(&p.RAM, u.RAM)
	setString(&p.SKU, u.SKU)
	setString(&p.SEOTitle, u.SEOTitle)
	setString(&p.SEODescription, u.SEODescription)
	if u.Conditions != nil {
		p.Conditions = append([]string(nil), (*u.Conditions)...)
	}
	if u.Features != nil {
		p.Features = append([]string(nil), (*u.Features)...)
	}
	if u.Specifications != nil {
		p.Specifications = append([]Specification(nil), (*u.Specifications)...)
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.SalePrice != nil {
		v := *u.SalePrice
		p.SalePrice = &v
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Negotiable != nil {
		p.Negotiable = *u.Negotiable
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
