package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	protected := AuthMiddleware(okHandler())

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		token, err := utils.GenerateJWT("abc123", models.RoleCustomer)
		require.NoError(t, err)

		var got *utils.Claims
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		AuthMiddleware(inner).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, got)
		assert.Equal(t, "abc123", got.UserID)
		assert.Equal(t, models.RoleCustomer, got.Role)
	})
}

func TestAdminMiddleware(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	adminOnly := AuthMiddleware(AdminMiddleware(okHandler()))

	t.Run("no token gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		rr := httptest.NewRecorder()
		adminOnly.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("customer token gets 403", func(t *testing.T) {
		token, err := utils.GenerateJWT("abc123", models.RoleCustomer)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		adminOnly.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin token passes", func(t *testing.T) {
		token, err := utils.GenerateJWT("abc123", models.RoleAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		adminOnly.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
