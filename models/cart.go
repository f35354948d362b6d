package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart groups product references under a title for one customer.
type Cart struct {
	ID         primitive.ObjectID   `json:"_id" bson:"_id"`
	CustomerID primitive.ObjectID   `json:"customerId" bson:"customerId"`
	Title      string               `json:"title" bson:"title"`
	ProductIDs []primitive.ObjectID `json:"productIds" bson:"productIds"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Wishlist has the same shape as a cart; products move from one to the other.
type Wishlist struct {
	ID         primitive.ObjectID   `json:"_id" bson:"_id"`
	CustomerID primitive.ObjectID   `json:"customerId" bson:"customerId"`
	Title      string               `json:"title" bson:"title"`
	ProductIDs []primitive.ObjectID `json:"productIds" bson:"productIds"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`
}
