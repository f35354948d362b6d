package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TempOrderTTLSeconds is how long an unconfirmed gateway checkout survives.
const TempOrderTTLSeconds = 3600

// EnsureIndexes creates the unique and TTL indexes the workflow relies on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		OrdersCollection: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_order_id")},
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_transaction_id")},
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "productId", Value: 1}}},
		},
		TempOrdersCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(TempOrderTTLSeconds).SetName("ttl_created_at")},
		},
		AddressesCollection: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "isDefault", Value: -1}}},
		},
		CartsCollection: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "title", Value: 1}}},
		},
		WishlistsCollection: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "title", Value: 1}}},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "sellerId", Value: 1}}},
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName("unique_sku")},
		},
		CustomersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_email")},
		},
		SellersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_email")},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		ActivitiesCollection: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		IdempotencyCollection: {
			{Keys: bson.M{"key": 1}, Options: options.Index().SetUnique(true).SetName("unique_key")},
			{Keys: bson.M{"expires_at": 1}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
		},
	}
	for coll, idxs := range specs {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
