package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a user's shipping address
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// User represents a user in the system
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password,omitempty" json:"-"`
	Role                 string             `bson:"role" json:"role"` // "admin" or "customer"
	Address              Address            `bson:"address,omitempty" json:"address"`
	Verified             bool               `bson:"verified" json:"verified"`
	VerificationToken    string             `bson:"verificationToken,omitempty" json:"-"`
	VerificationExpires  time.Time          `bson:"verificationExpires,omitempty" json:"-"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires time.Time          `bson:"resetPasswordExpires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
}

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
