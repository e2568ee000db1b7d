package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/lahiruanushka/bookstore-api/models"
)

func wishlistDoc(userID, bookID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "userId", Value: userID},
		{Key: "items", Value: bson.A{
			bson.D{
				{Key: "bookId", Value: bookID},
				{Key: "title", Value: "Kept Book"},
				{Key: "price", Value: 9.99},
				{Key: "addedAt", Value: time.Now()},
			},
		}},
		{Key: "createdAt", Value: time.Now()},
		{Key: "updatedAt", Value: time.Now()},
	}
}

func TestRemoveFromWishlist(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("removing an absent entry returns the unchanged list", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		keptBook := primitive.NewObjectID()
		absentBook := primitive.NewObjectID()

		wc := &WishlistController{Wishlists: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "bookstore.wishlists", mtest.FirstBatch, wishlistDoc(userID, keptBook)),
			mtest.CreateSuccessResponse(),
		)

		req := customerRequest(http.MethodDelete, "/api/wishlist/remove/"+absentBook.Hex(), nil, userID)
		req = mux.SetURLVars(req, map[string]string{"bookId": absentBook.Hex()})
		rr := httptest.NewRecorder()

		wc.RemoveFromWishlist(rr, req)

		require.Equal(mt.T, http.StatusOK, rr.Code)

		var wishlist models.Wishlist
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &wishlist))
		require.Len(mt.T, wishlist.Items, 1)
		assert.Equal(mt.T, keptBook, wishlist.Items[0].BookID)
	})

	mt.Run("removing a present entry drops it", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		keptBook := primitive.NewObjectID()

		wc := &WishlistController{Wishlists: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "bookstore.wishlists", mtest.FirstBatch, wishlistDoc(userID, keptBook)),
			mtest.CreateSuccessResponse(),
		)

		req := customerRequest(http.MethodDelete, "/api/wishlist/remove/"+keptBook.Hex(), nil, userID)
		req = mux.SetURLVars(req, map[string]string{"bookId": keptBook.Hex()})
		rr := httptest.NewRecorder()

		wc.RemoveFromWishlist(rr, req)

		require.Equal(mt.T, http.StatusOK, rr.Code)

		var wishlist models.Wishlist
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &wishlist))
		assert.Empty(mt.T, wishlist.Items)
	})
}

func TestAddToWishlistDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate entry is rejected", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		bookID := primitive.NewObjectID()

		wc := &WishlistController{Wishlists: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "bookstore.wishlists", mtest.FirstBatch, wishlistDoc(userID, bookID)),
		)

		body, _ := json.Marshal(map[string]interface{}{
			"bookId": bookID.Hex(),
			"title":  "Kept Book",
			"price":  9.99,
		})
		req := customerRequest(http.MethodPost, "/api/wishlist/add", bytes.NewReader(body), userID)
		rr := httptest.NewRecorder()

		wc.AddToWishlist(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(mt.T, "Item already in wishlist", resp["message"])
	})
}

func TestGetWishlistMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no wishlist yet yields the empty shape", func(mt *mtest.T) {
		wc := &WishlistController{Wishlists: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.wishlists", mtest.FirstBatch))

		req := customerRequest(http.MethodGet, "/api/wishlist", nil, primitive.NewObjectID())
		rr := httptest.NewRecorder()

		wc.GetWishlist(rr, req)

		require.Equal(mt.T, http.StatusOK, rr.Code)

		var resp struct {
			Items []models.WishlistItem `json:"items"`
		}
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(mt.T, resp.Items)
	})
}
