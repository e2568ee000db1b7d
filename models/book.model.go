package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a single review left by a user on a book
type Rating struct {
	User   primitive.ObjectID `bson:"user" json:"user"`
	Rating int                `bson:"rating" json:"rating"`
	Review string             `bson:"review,omitempty" json:"review,omitempty"`
}

// Book represents a book in the catalog
type Book struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Author        string             `bson:"author" json:"author"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	ISBN          string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	Category      []string           `bson:"category,omitempty" json:"category,omitempty"`
	PublishYear   int                `bson:"publishYear" json:"publishYear"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Ratings       []Rating           `bson:"ratings" json:"ratings"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
