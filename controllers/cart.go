package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lahiruanushka/bookstore-api/middleware"
	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Carts *mongo.Collection
	Books *mongo.Collection
}

// NewCartController creates a new CartController
func NewCartController(db *mongo.Database) *CartController {
	return &CartController{
		Carts: db.Collection("carts"),
		Books: db.Collection("books"),
	}
}

// GetCart retrieves the user's cart, creating an empty one on first read.
// Each line's book is resolved for display.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	err := cc.Carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		cart = models.Cart{
			User:      userID,
			Items:     []models.CartItem{},
			UpdatedAt: time.Now(),
		}
		result, err := cc.Carts.InsertOne(ctx, cart)
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Error creating cart")
			return
		}
		cart.ID = result.InsertedID.(primitive.ObjectID)
	} else if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	populated := models.PopulatedCart{
		ID:        cart.ID,
		User:      cart.User,
		Items:     []models.PopulatedCartItem{},
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		var book models.Book
		if err := cc.Books.FindOne(ctx, bson.M{"_id": item.Book}).Decode(&book); err != nil {
			// Book was deleted since it was added; drop the line from the view.
			continue
		}
		populated.Items = append(populated.Items, models.PopulatedCartItem{
			Book:     book,
			Quantity: item.Quantity,
		})
	}

	utils.WriteJSON(w, http.StatusOK, populated)
}

// AddToCart adds a book to the user's cart, merging quantities when the
// book is already in it
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		BookID   string `json:"bookId"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if req.Quantity <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var book models.Book
	if err := cc.Books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Book not found")
		return
	}

	var cart models.Cart
	err = cc.Carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		cart = models.Cart{
			User:      userID,
			Items:     []models.CartItem{{Book: bookID, Quantity: req.Quantity}},
			UpdatedAt: time.Now(),
		}
		result, err := cc.Carts.InsertOne(ctx, cart)
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Error creating cart")
			return
		}
		cart.ID = result.InsertedID.(primitive.ObjectID)
		utils.WriteJSON(w, http.StatusOK, cart)
		return
	} else if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cart.Items = mergeCartItem(cart.Items, bookID, req.Quantity)
	if !cc.saveItems(ctx, w, &cart) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, cart)
}

// UpdateCartItemQuantity sets the quantity of a cart line. A quantity of
// zero or less removes the line.
func (cc *CartController) UpdateCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := cc.Carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Cart not found")
		return
	}

	items, found := setCartItemQuantity(cart.Items, bookID, req.Quantity)
	if !found {
		utils.WriteError(w, http.StatusNotFound, "Item not found in cart")
		return
	}
	cart.Items = items
	if !cc.saveItems(ctx, w, &cart) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, cart)
}

// RemoveFromCart removes a book from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := cc.Carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Cart not found")
		return
	}

	cart.Items = removeCartItem(cart.Items, bookID)
	if !cc.saveItems(ctx, w, &cart) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, cart)
}

// ClearCart empties the cart. The cart document itself is kept.
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := cc.Carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Cart not found")
		return
	}

	cart.Items = []models.CartItem{}
	if !cc.saveItems(ctx, w, &cart) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared successfully"})
}

func (cc *CartController) saveItems(ctx context.Context, w http.ResponseWriter, cart *models.Cart) bool {
	cart.UpdatedAt = time.Now()
	_, err := cc.Carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{
		"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error updating cart")
		return false
	}
	return true
}

// mergeCartItem adds quantity to an existing line or appends a new one.
func mergeCartItem(items []models.CartItem, bookID primitive.ObjectID, quantity int) []models.CartItem {
	for i, item := range items {
		if item.Book == bookID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{Book: bookID, Quantity: quantity})
}

// setCartItemQuantity replaces a line's quantity, removing the line when the
// quantity drops to zero or below. The second return reports whether the
// line existed.
func setCartItemQuantity(items []models.CartItem, bookID primitive.ObjectID, quantity int) ([]models.CartItem, bool) {
	for i, item := range items {
		if item.Book == bookID {
			if quantity <= 0 {
				return append(items[:i], items[i+1:]...), true
			}
			items[i].Quantity = quantity
			return items, true
		}
	}
	return items, false
}

func removeCartItem(items []models.CartItem, bookID primitive.ObjectID) []models.CartItem {
	updated := []models.CartItem{}
	for _, item := range items {
		if item.Book != bookID {
			updated = append(updated, item)
		}
	}
	return updated
}

// userIDFromRequest extracts the authenticated user's ObjectID, writing the
// 401 itself when the claims are missing or malformed.
func userIDFromRequest(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return primitive.NilObjectID, false
	}
	return userID, true
}
