package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods accepted at checkout.
const (
	PaymentCOD     = "cod"
	PaymentGateway = "gateway"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists every order status in display order.
var OrderStatuses = []string{OrderPending, OrderShipped, OrderDelivered, OrderCancelled}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order is one purchased product line. A checkout with N lines produces N orders
// sharing one ShippingInfo.
type Order struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	OrderID        string             `json:"orderId" bson:"orderId"`
	TransactionID  string             `json:"transactionId" bson:"transactionId"`
	CustomerID     primitive.ObjectID `json:"customerId" bson:"customerId"`
	ProductID      primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity       int                `json:"quantity" bson:"quantity"`
	Price          float64            `json:"price" bson:"price"`
	PaymentMethod  string             `json:"paymentMethod" bson:"paymentMethod"`
	ShippingInfoID primitive.ObjectID `json:"shippingInfoId" bson:"shippingInfoId"`
	PaymentStatus  string             `json:"paymentStatus" bson:"paymentStatus"`
	OrderStatus    string             `json:"orderStatus" bson:"orderStatus"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ShippingInfo holds the contact and address references for one checkout.
type ShippingInfo struct {
	ID                primitive.ObjectID  `json:"_id" bson:"_id"`
	CustomerID        primitive.ObjectID  `json:"customerId" bson:"customerId"`
	FullName          string              `json:"fullName" bson:"fullName"`
	PhoneNumber       string              `json:"phoneNumber" bson:"phoneNumber"`
	Email             string              `json:"email" bson:"email"`
	AddressID         primitive.ObjectID  `json:"addressId" bson:"addressId"`
	OptionalAddressID *primitive.ObjectID `json:"optionalAddressId" bson:"optionalAddressId"`
	CreatedAt         time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Address belongs to a customer. At most one address per customer is default.
type Address struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	CustomerID  primitive.ObjectID `json:"customerId" bson:"customerId"`
	Name        string             `json:"name" bson:"name"`
	AddressLine string             `json:"addressLine" bson:"addressLine"`
	City        string             `json:"city" bson:"city"`
	ZipCode     string             `json:"zipCode" bson:"zipCode"`
	Country     string             `json:"country" bson:"country"`
	State       string             `json:"state" bson:"state"`
	IsDefault   bool               `json:"isDefault" bson:"isDefault"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AddressUpdate carries the optional fields of an address edit.
type AddressUpdate struct {
	Name        *string `json:"name"`
	AddressLine *string `json:"addressLine"`
	City        *string `json:"city"`
	ZipCode     *string `json:"zipCode"`
	Country     *string `json:"country"`
	State       *string `json:"state"`
}

// LineItem is one product line of a checkout payload.
type LineItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
}

// CheckoutPayload is the client-computed basket echoed back in the order summary.
type CheckoutPayload struct {
	Products []LineItem `json:"products" bson:"products"`
	Subtotal float64    `json:"subtotal" bson:"subtotal"`
	Shipping float64    `json:"shipping" bson:"shipping"`
	Tax      float64    `json:"tax" bson:"tax"`
	Total    float64    `json:"total" bson:"total"`
}

// TempAddressRefs records which addresses a gateway checkout touched.
// PrimaryCreated is false when the primary address was selected by id.
type TempAddressRefs struct {
	Primary        primitive.ObjectID  `json:"primary" bson:"primary"`
	Optional       *primitive.ObjectID `json:"optional" bson:"optional"`
	PrimaryCreated bool                `json:"primaryCreated" bson:"primaryCreated"`
}

// TempOrder bridges order creation and gateway confirmation. The collection
// carries a TTL index on CreatedAt.
type TempOrder struct {
	ID              primitive.ObjectID   `json:"_id" bson:"_id"`
	CustomerID      primitive.ObjectID   `json:"customerId" bson:"customerId"`
	Orders          []primitive.ObjectID `json:"orders" bson:"orders"`
	ShippingInfoID  primitive.ObjectID   `json:"shippingInfoId" bson:"shippingInfoId"`
	AddressIDs      TempAddressRefs      `json:"addressIds" bson:"addressIds"`
	CheckoutPayload CheckoutPayload      `json:"checkoutPayload" bson:"checkoutPayload"`
	Products        []LineItem           `json:"products" bson:"products"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
}
