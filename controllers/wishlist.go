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

	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// WishlistController handles wishlist-related requests
type WishlistController struct {
	Wishlists *mongo.Collection
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(db *mongo.Database) *WishlistController {
	return &WishlistController{
		Wishlists: db.Collection("wishlists"),
	}
}

// GetWishlist retrieves the user's wishlist
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wishlist models.Wishlist
	err := wc.Wishlists.FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"items": []models.WishlistItem{},
		})
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, wishlist)
}

// AddToWishlist adds a book to the wishlist. Title and price are copied
// from the request at add time and never refreshed.
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		BookID string  `json:"bookId"`
		Title  string  `json:"title"`
		Price  float64 `json:"price"`
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

	item := models.WishlistItem{
		BookID:  bookID,
		Title:   req.Title,
		Price:   req.Price,
		AddedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wishlist models.Wishlist
	err = wc.Wishlists.FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		now := time.Now()
		wishlist = models.Wishlist{
			UserID:    userID,
			Items:     []models.WishlistItem{item},
			CreatedAt: now,
			UpdatedAt: now,
		}
		result, err := wc.Wishlists.InsertOne(ctx, wishlist)
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Error creating wishlist")
			return
		}
		wishlist.ID = result.InsertedID.(primitive.ObjectID)
		utils.WriteJSON(w, http.StatusOK, wishlist)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, existing := range wishlist.Items {
		if existing.BookID == bookID {
			utils.WriteError(w, http.StatusBadRequest, "Item already in wishlist")
			return
		}
	}

	wishlist.Items = append(wishlist.Items, item)
	if !wc.saveItems(ctx, w, &wishlist) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, wishlist)
}

// RemoveFromWishlist removes a book from the wishlist. Removing a book that
// is not in it is a no-op returning the unchanged list.
func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
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

	var wishlist models.Wishlist
	if err := wc.Wishlists.FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Wishlist not found")
		return
	}

	items := []models.WishlistItem{}
	for _, item := range wishlist.Items {
		if item.BookID != bookID {
			items = append(items, item)
		}
	}
	wishlist.Items = items
	if !wc.saveItems(ctx, w, &wishlist) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, wishlist)
}

func (wc *WishlistController) saveItems(ctx context.Context, w http.ResponseWriter, wishlist *models.Wishlist) bool {
	wishlist.UpdatedAt = time.Now()
	_, err := wc.Wishlists.UpdateOne(ctx, bson.M{"_id": wishlist.ID}, bson.M{
		"$set": bson.M{"items": wishlist.Items, "updatedAt": wishlist.UpdatedAt},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error updating wishlist")
		return false
	}
	return true
}
