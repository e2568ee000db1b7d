package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lahiruanushka/bookstore-api/middleware"
	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// authedRequest builds a request carrying the claims AuthMiddleware would
// have attached for the given user.
func authedRequest(method, target string, body io.Reader, userID primitive.ObjectID, role string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	claims := &utils.Claims{UserID: userID.Hex(), Role: role}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func customerRequest(method, target string, body io.Reader, userID primitive.ObjectID) *http.Request {
	return authedRequest(method, target, body, userID, models.RoleCustomer)
}
