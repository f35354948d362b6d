package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles carried in access tokens.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
)

type Customer struct {
	ID                     primitive.ObjectID  `json:"_id" bson:"_id"`
	FirstName              string              `json:"firstName" bson:"firstName"`
	LastName               string              `json:"lastName" bson:"lastName"`
	Email                  string              `json:"email" bson:"email"`
	Phone                  string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio                    string              `json:"bio,omitempty" bson:"bio,omitempty"`
	Password               string              `json:"-" bson:"password"`
	LastNotificationSeen   *primitive.ObjectID `json:"lastNotificationSeen" bson:"lastNotificationSeen"`
	LastNotificationSeenAt *time.Time          `json:"lastNotificationSeenAt,omitempty" bson:"lastNotificationSeenAt,omitempty"`
	CreatedAt              time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// CustomerUpdate carries the optional fields of a profile edit. Password is
// already hashed when it reaches the repository.
type CustomerUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"`
	Password  *string `json:"password"`
}

type Seller struct {
	ID                     primitive.ObjectID  `json:"_id" bson:"_id"`
	Name                   string              `json:"name" bson:"name"`
	Email                  string              `json:"email" bson:"email"`
	Phone                  string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Password               string              `json:"-" bson:"password"`
	LastNotificationSeen   *primitive.ObjectID `json:"lastNotificationSeen" bson:"lastNotificationSeen"`
	LastNotificationSeenAt *time.Time          `json:"lastNotificationSeenAt,omitempty" bson:"lastNotificationSeenAt,omitempty"`
	CreatedAt              time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// SellerNotification is an append-only event addressed to a seller.
type SellerNotification struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id"`
	NotificationType string             `json:"notificationType" bson:"notificationType"`
	OrderID          primitive.ObjectID `json:"orderId" bson:"orderId"`
	SellerID         primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Description      string             `json:"description" bson:"description"`
	Timestamp        time.Time          `json:"timestamp" bson:"timestamp"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

// RecentActivity is an append-only event in a customer's feed.
type RecentActivity struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id"`
	CustomerID     primitive.ObjectID  `json:"customerId" bson:"customerId"`
	WishlistID     *primitive.ObjectID `json:"wishlistId,omitempty" bson:"wishlistId,omitempty"`
	OrderID        *primitive.ObjectID `json:"orderId,omitempty" bson:"orderId,omitempty"`
	ActivityType   string              `json:"activityType" bson:"activityType"`
	ActivityStatus string              `json:"activityStatus" bson:"activityStatus"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
}
