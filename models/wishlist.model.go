package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem is a wishlist entry. Title and Price are copied from the book
// at add time for display and can go stale if the book changes later.
type WishlistItem struct {
	BookID  primitive.ObjectID `bson:"bookId" json:"bookId"`
	Title   string             `bson:"title,omitempty" json:"title,omitempty"`
	Price   float64            `bson:"price,omitempty" json:"price,omitempty"`
	AddedAt time.Time          `bson:"addedAt" json:"addedAt"`
}

// Wishlist represents a user's wishlist. Entries are unique per book.
type Wishlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []WishlistItem     `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
