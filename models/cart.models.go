package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents a line in the cart
type CartItem struct {
	Book     primitive.ObjectID `bson:"book" json:"book"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Cart represents a user's shopping cart. A cart is created lazily on the
// first read or write and is only ever emptied, never deleted.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedCartItem is a cart line with the book document resolved,
// the shape returned by GET /api/cart.
type PopulatedCartItem struct {
	Book     Book `json:"book"`
	Quantity int  `json:"quantity"`
}

// PopulatedCart is a cart with every line's book resolved.
type PopulatedCart struct {
	ID        primitive.ObjectID  `json:"_id,omitempty"`
	User      primitive.ObjectID  `json:"user"`
	Items     []PopulatedCartItem `json:"items"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
