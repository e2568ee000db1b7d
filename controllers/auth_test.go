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
	"golang.org/x/crypto/bcrypt"

	"github.com/lahiruanushka/bookstore-api/utils"
)

func mockUserDoc(id primitive.ObjectID, email, password string, verified bool) bson.D {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Jane Doe"},
		{Key: "email", Value: email},
		{Key: "password", Value: string(hash)},
		{Key: "role", Value: "customer"},
		{Key: "verified", Value: verified},
		{Key: "createdAt", Value: time.Now()},
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email is rejected", func(mt *mtest.T) {
		ac := &AuthController{Users: mt.Coll}

		// CountDocuments sees one matching user.
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "bookstore.users", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}}))

		body, _ := json.Marshal(map[string]string{
			"name":     "Jane Doe",
			"email":    "jane@example.com",
			"password": "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		ac.Register(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(mt.T, "User already exists", resp["message"])
	})

	mt.Run("missing fields are rejected", func(mt *mtest.T) {
		ac := &AuthController{Users: mt.Coll}

		body, _ := json.Marshal(map[string]string{"email": "jane@example.com"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		ac.Register(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)
	})
}

func TestLogin(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unverified account gets 401 with verified false", func(mt *mtest.T) {
		ac := &AuthController{Users: mt.Coll}

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "bookstore.users", mtest.FirstBatch,
			mockUserDoc(primitive.NewObjectID(), "jane@example.com", "secret123", false)))

		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		ac.Login(rr, req)

		assert.Equal(mt.T, http.StatusUnauthorized, rr.Code)

		var resp map[string]interface{}
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(mt.T, false, resp["verified"])
	})

	mt.Run("wrong password gets 400", func(mt *mtest.T) {
		ac := &AuthController{Users: mt.Coll}

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "bookstore.users", mtest.FirstBatch,
			mockUserDoc(primitive.NewObjectID(), "jane@example.com", "secret123", true)))

		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "wrong-password",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		ac.Login(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(mt.T, "Invalid credentials", resp["message"])
	})

	mt.Run("verified account gets a usable token", func(mt *mtest.T) {
		ac := &AuthController{Users: mt.Coll}

		userID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "bookstore.users", mtest.FirstBatch,
			mockUserDoc(userID, "jane@example.com", "secret123", true)))

		body, _ := json.Marshal(map[string]string{
			"email":    "jane@example.com",
			"password": "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		ac.Login(rr, req)

		require.Equal(mt.T, http.StatusOK, rr.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				ID   string `json:"id"`
				Role string `json:"role"`
			} `json:"user"`
		}
		require.NoError(mt.T, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotEmpty(mt.T, resp.Token)

		claims, err := utils.ParseJWT(resp.Token)
		require.NoError(mt.T, err)
		assert.Equal(mt.T, userID.Hex(), claims.UserID)
		assert.Equal(mt.T, "customer", claims.Role)
	})

	mt.Run("unknown email gets 400", func(mt *mtest.T) {
		ac := &AuthController{Users: mt.Coll}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.users", mtest.FirstBatch))

		body, _ := json.Marshal(map[string]string{
			"email":    "nobody@example.com",
			"password": "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		ac.Login(rr, req)

		assert.Equal(mt.T, http.StatusBadRequest, rr.Code)
	})
}
