package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lahiruanushka/bookstore-api/controllers"
	"github.com/lahiruanushka/bookstore-api/middleware"
)

// RegisterRoutes sets up all the routes for the application under /api
func RegisterRoutes(
	router *mux.Router,
	authController *controllers.AuthController,
	bookController *controllers.BookController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	wishlistController *controllers.WishlistController,
	userController *controllers.UserController,
	profileController *controllers.ProfileController,
	dashboardController *controllers.DashboardController,
) {
	api := router.PathPrefix("/api").Subrouter()

	// Auth: public routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authController.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", authController.Login).Methods(http.MethodPost)
	auth.HandleFunc("/verify-email/{token}", authController.VerifyEmail).Methods(http.MethodGet)
	auth.HandleFunc("/resend-verification", authController.ResendVerification).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", authController.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password/{token}", authController.ValidateResetToken).Methods(http.MethodGet)
	auth.HandleFunc("/reset-password/{token}", authController.ResetPassword).Methods(http.MethodPost)

	// Auth: token check behind the middleware
	authSession := api.PathPrefix("/auth").Subrouter()
	authSession.Use(middleware.AuthMiddleware)
	authSession.HandleFunc("/verify-token", authController.VerifyToken).Methods(http.MethodGet)

	// Books: public catalog
	books := api.PathPrefix("/books").Subrouter()
	books.HandleFunc("", bookController.GetBooks).Methods(http.MethodGet)
	books.HandleFunc("/{id}", bookController.GetBookByID).Methods(http.MethodGet)

	// Books: ratings require a login
	booksAuth := api.PathPrefix("/books").Subrouter()
	booksAuth.Use(middleware.AuthMiddleware)
	booksAuth.HandleFunc("/{id}/rating", bookController.AddRating).Methods(http.MethodPost)

	// Books: admin management
	booksAdmin := api.PathPrefix("/books").Subrouter()
	booksAdmin.Use(middleware.AuthMiddleware)
	booksAdmin.Use(middleware.AdminMiddleware)
	booksAdmin.HandleFunc("", bookController.CreateBook).Methods(http.MethodPost)
	booksAdmin.HandleFunc("/{id}", bookController.UpdateBook).Methods(http.MethodPut)
	booksAdmin.HandleFunc("/{id}", bookController.DeleteBook).Methods(http.MethodDelete)

	// Cart
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(middleware.AuthMiddleware)
	cart.HandleFunc("", cartController.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("/add", cartController.AddToCart).Methods(http.MethodPost)
	cart.HandleFunc("/item/{bookId}", cartController.UpdateCartItemQuantity).Methods(http.MethodPut)
	cart.HandleFunc("/item/{bookId}", cartController.RemoveFromCart).Methods(http.MethodDelete)
	cart.HandleFunc("/clear", cartController.ClearCart).Methods(http.MethodDelete)

	// Orders
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.AuthMiddleware)
	orders.HandleFunc("", orderController.CreateOrder).Methods(http.MethodPost)
	orders.HandleFunc("/my-orders", orderController.GetMyOrders).Methods(http.MethodGet)

	ordersAdmin := api.PathPrefix("/orders").Subrouter()
	ordersAdmin.Use(middleware.AuthMiddleware)
	ordersAdmin.Use(middleware.AdminMiddleware)
	ordersAdmin.HandleFunc("", orderController.GetAllOrders).Methods(http.MethodGet)
	ordersAdmin.HandleFunc("/{id}/status", orderController.UpdateOrderStatus).Methods(http.MethodPut)

	// Wishlist
	wishlist := api.PathPrefix("/wishlist").Subrouter()
	wishlist.Use(middleware.AuthMiddleware)
	wishlist.HandleFunc("", wishlistController.GetWishlist).Methods(http.MethodGet)
	wishlist.HandleFunc("/add", wishlistController.AddToWishlist).Methods(http.MethodPost)
	wishlist.HandleFunc("/remove/{bookId}", wishlistController.RemoveFromWishlist).Methods(http.MethodDelete)

	// Users: public name lookup
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/{id}", userController.GetUserByID).Methods(http.MethodGet)

	// Users: admin management
	usersAdmin := api.PathPrefix("/users").Subrouter()
	usersAdmin.Use(middleware.AuthMiddleware)
	usersAdmin.Use(middleware.AdminMiddleware)
	usersAdmin.HandleFunc("", userController.GetUsers).Methods(http.MethodGet)
	usersAdmin.HandleFunc("", userController.CreateUser).Methods(http.MethodPost)
	usersAdmin.HandleFunc("/{id}", userController.UpdateUser).Methods(http.MethodPut)
	usersAdmin.HandleFunc("/{id}", userController.DeleteUser).Methods(http.MethodDelete)

	// Profile
	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(middleware.AuthMiddleware)
	profile.HandleFunc("/me", profileController.GetMyProfile).Methods(http.MethodGet)
	profile.HandleFunc("/me", profileController.UpdateMyProfile).Methods(http.MethodPut)
	profile.HandleFunc("/change-password", profileController.ChangePassword).Methods(http.MethodPut)
	profile.HandleFunc("/update-email", profileController.UpdateEmail).Methods(http.MethodPut)
	profile.HandleFunc("/address", profileController.UpdateAddress).Methods(http.MethodPut)
	profile.HandleFunc("/delete-account", profileController.DeleteMyAccount).Methods(http.MethodDelete)

	// Dashboard
	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(middleware.AuthMiddleware)
	dashboard.Use(middleware.AdminMiddleware)
	dashboard.HandleFunc("/stats", dashboardController.GetStats).Methods(http.MethodGet)
}
