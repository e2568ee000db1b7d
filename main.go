package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lahiruanushka/bookstore-api/config"
	"github.com/lahiruanushka/bookstore-api/controllers"
	"github.com/lahiruanushka/bookstore-api/routes"
	"github.com/lahiruanushka/bookstore-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}

	utils.JwtKey = []byte(cfg.JWTSecret)

	client, err := connectDB(cfg.MongoURI)
	if err != nil {
		logrus.Fatalf("Error connecting to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logrus.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	logrus.Info("Connected to MongoDB")

	db := client.Database(cfg.Database)

	emailService := utils.NewEmailService(cfg.SMTP, cfg.FrontendURL)
	if err := emailService.VerifyConnection(); err != nil {
		logrus.WithError(err).Warn("Email connection verification failed")
	} else {
		logrus.Info("Email connection verified successfully")
	}

	authController := controllers.NewAuthController(db, emailService)
	bookController := controllers.NewBookController(db)
	cartController := controllers.NewCartController(db)
	orderController := controllers.NewOrderController(db, emailService)
	wishlistController := controllers.NewWishlistController(db)
	userController := controllers.NewUserController(db)
	profileController := controllers.NewProfileController(db)
	dashboardController := controllers.NewDashboardController(db)

	router := mux.NewRouter()
	routes.RegisterRoutes(router,
		authController,
		bookController,
		cartController,
		orderController,
		wishlistController,
		userController,
		profileController,
		dashboardController,
	)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.FrontendURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	logrus.Infof("App is listening to port: %s", cfg.Port)
	logrus.Fatal(http.ListenAndServe(":"+cfg.Port, cors(router)))
}

func connectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}
