package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Only admins move an order through these states.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// OrderItem is a snapshot of a cart line at checkout time. PriceAtTime is
// the book price read when the order was created and is never recalculated.
type OrderItem struct {
	Book        primitive.ObjectID `bson:"book" json:"book"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	PriceAtTime float64            `bson:"priceAtTime" json:"priceAtTime"`
}

// Order represents a user's order. Items and TotalAmount are immutable after
// creation; only Status and PaymentStatus change afterwards.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress Address            `bson:"shippingAddress,omitempty" json:"shippingAddress"`
	Status          string             `bson:"status" json:"status"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"` // reserved for Stripe integration
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsValidOrderStatus reports whether s is a member of the order status enum.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
