package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// DashboardController serves the admin dashboard statistics
type DashboardController struct {
	Books  *mongo.Collection
	Users  *mongo.Collection
	Orders *mongo.Collection
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(db *mongo.Database) *DashboardController {
	return &DashboardController{
		Books:  db.Collection("books"),
		Users:  db.Collection("users"),
		Orders: db.Collection("orders"),
	}
}

type recentOrderUser struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

type recentOrder struct {
	models.Order
	User recentOrderUser `json:"user"`
}

// GetStats returns store-wide counts, revenue over fulfilled orders and the
// five most recent orders with their users resolved (Admin only)
func (dc *DashboardController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totalBooks, err := dc.Books.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalUsers, err := dc.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalOrders, err := dc.Orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pendingOrders, err := dc.Orders.CountDocuments(ctx, bson.M{"status": models.OrderStatusPending})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	revenue, err := dc.revenue(ctx)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recentOrders, err := dc.recentOrders(ctx)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totalBooks":    totalBooks,
		"totalUsers":    totalUsers,
		"totalOrders":   totalOrders,
		"pendingOrders": pendingOrders,
		"revenue":       revenue,
		"recentOrders":  recentOrders,
	})
}

// revenue sums totalAmount over orders that have left the warehouse.
func (dc *DashboardController) revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status": bson.M{"$in": []string{models.OrderStatusShipped, models.OrderStatusDelivered}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalAmount"},
		}}},
	}

	cursor, err := dc.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (dc *DashboardController) recentOrders(ctx context.Context) ([]recentOrder, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(5)
	cursor, err := dc.Orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	recent := []recentOrder{}
	for _, order := range orders {
		entry := recentOrder{Order: order}
		var user models.User
		err := dc.Users.FindOne(ctx, bson.M{"_id": order.User},
			options.FindOne().SetProjection(bson.M{"name": 1, "email": 1})).Decode(&user)
		if err == nil {
			entry.User = recentOrderUser{ID: user.ID, Name: user.Name, Email: user.Email}
		} else {
			entry.User = recentOrderUser{ID: order.User}
		}
		recent = append(recent, entry)
	}
	return recent, nil
}
