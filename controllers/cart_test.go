package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/lahiruanushka/bookstore-api/models"
)

func TestMergeCartItem(t *testing.T) {
	bookA := primitive.NewObjectID()
	bookB := primitive.NewObjectID()

	items := []models.CartItem{}
	items = mergeCartItem(items, bookA, 1)
	items = mergeCartItem(items, bookA, 2)

	require.Len(t, items, 1, "adding the same book twice must merge, not duplicate")
	assert.Equal(t, 3, items[0].Quantity)

	items = mergeCartItem(items, bookB, 1)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestSetCartItemQuantity(t *testing.T) {
	bookA := primitive.NewObjectID()
	bookB := primitive.NewObjectID()
	items := []models.CartItem{
		{Book: bookA, Quantity: 2},
		{Book: bookB, Quantity: 1},
	}

	updated, found := setCartItemQuantity(items, bookA, 5)
	require.True(t, found)
	assert.Equal(t, 5, updated[0].Quantity)

	updated, found = setCartItemQuantity(updated, bookA, 0)
	require.True(t, found, "quantity zero still targets an existing line")
	require.Len(t, updated, 1, "quantity zero removes the line")
	assert.Equal(t, bookB, updated[0].Book)

	_, found = setCartItemQuantity(updated, primitive.NewObjectID(), 1)
	assert.False(t, found)
}

func TestRemoveCartItem(t *testing.T) {
	bookA := primitive.NewObjectID()
	bookB := primitive.NewObjectID()
	items := []models.CartItem{
		{Book: bookA, Quantity: 2},
		{Book: bookB, Quantity: 1},
	}

	items = removeCartItem(items, bookA)
	require.Len(t, items, 1)
	assert.Equal(t, bookB, items[0].Book)

	// Removing a book that is not in the cart changes nothing.
	items = removeCartItem(items, bookA)
	require.Len(t, items, 1)
}

func TestAddToCartMergesQuantity(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("same book twice increments the line", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		bookID := primitive.NewObjectID()
		cartID := primitive.NewObjectID()

		cc := &CartController{
			Carts: mt.DB.Collection("carts"),
			Books: mt.DB.Collection("books"),
		}

		bookDoc := bson.D{
			{Key: "_id", Value: bookID},
			{Key: "title", Value: "The Go Programming Language"},
			{Key: "author", Value: "Donovan & Kernighan"},
			{Key: "price", Value: 39.99},
			{Key: "stockQuantity", Value: 10},
			{Key: "publishYear", Value: 2015},
			{Key: "createdAt", Value: time.Now()},
		}
		cartDoc := bson.D{
			{Key: "_id", Value: cartID},
			{Key: "user", Value: userID},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "book", Value: bookID}, {Key: "quantity", Value: 1}},
			}},
			{Key: "updatedAt", Value: time.Now()},
		}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "bookstore.books", mtest.FirstBatch, bookDoc),
			mtest.CreateCursorResponse(0, "bookstore.carts", mtest.FirstBatch, cartDoc),
			mtest.CreateSuccessResponse(),
		)

		body, _ := json.Marshal(map[string]interface{}{
			"bookId":   bookID.Hex(),
			"quantity": 2,
		})
		req := customerRequest(http.MethodPost, "/api/cart/add", bytes.NewReader(body), userID)
		rr := httptest.NewRecorder()

		cc.AddToCart(rr, req)

		require.Equal(mt.T, http.StatusOK, rr.Code)

		var cart models.Cart
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &cart))
		require.Len(mt.T, cart.Items, 1)
		assert.Equal(mt.T, 3, cart.Items[0].Quantity)
	})

	mt.Run("unknown book is rejected", func(mt *mtest.T) {
		cc := &CartController{
			Carts: mt.DB.Collection("carts"),
			Books: mt.DB.Collection("books"),
		}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.books", mtest.FirstBatch))

		body, _ := json.Marshal(map[string]interface{}{
			"bookId":   primitive.NewObjectID().Hex(),
			"quantity": 1,
		})
		req := customerRequest(http.MethodPost, "/api/cart/add", bytes.NewReader(body), primitive.NewObjectID())
		rr := httptest.NewRecorder()

		cc.AddToCart(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)
	})

	mt.Run("non-positive quantity is rejected", func(mt *mtest.T) {
		cc := &CartController{
			Carts: mt.DB.Collection("carts"),
			Books: mt.DB.Collection("books"),
		}

		body, _ := json.Marshal(map[string]interface{}{
			"bookId":   primitive.NewObjectID().Hex(),
			"quantity": 0,
		})
		req := customerRequest(http.MethodPost, "/api/cart/add", bytes.NewReader(body), primitive.NewObjectID())
		rr := httptest.NewRecorder()

		cc.AddToCart(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)
	})
}
