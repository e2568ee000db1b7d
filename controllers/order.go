package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders       *mongo.Collection
	Carts        *mongo.Collection
	Books        *mongo.Collection
	Users        *mongo.Collection
	EmailService *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(db *mongo.Database, emailService *utils.EmailService) *OrderController {
	return &OrderController{
		Orders:       db.Collection("orders"),
		Carts:        db.Collection("carts"),
		Books:        db.Collection("books"),
		Users:        db.Collection("users"),
		EmailService: emailService,
	}
}

// CreateOrder converts the user's cart into an order. Each line is priced at
// the current book price, frozen into the order as priceAtTime, and the cart
// is emptied afterwards. The order insert and cart clear are two independent
// writes with no transaction around them.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		ShippingAddress models.Address `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := oc.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	var cart models.Cart
	err := oc.Carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err != nil || len(cart.Items) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		var book models.Book
		if err := oc.Books.FindOne(ctx, bson.M{"_id": item.Book}).Decode(&book); err != nil {
			utils.WriteError(w, http.StatusBadRequest,
				fmt.Sprintf("Book with ID %s not found", item.Book.Hex()))
			return
		}
		items = append(items, models.OrderItem{
			Book:        book.ID,
			Quantity:    item.Quantity,
			PriceAtTime: book.Price,
		})
	}

	order := models.Order{
		User:            userID,
		Items:           items,
		TotalAmount:     orderTotal(items),
		ShippingAddress: req.ShippingAddress,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		CreatedAt:       time.Now(),
	}

	result, err := oc.Orders.InsertOne(ctx, order)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	order.ID = result.InsertedID.(primitive.ObjectID)

	// Empty the cart. If this write fails the order already exists and the
	// cart keeps its items; there is no compensation.
	_, err = oc.Carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{
		"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	if oc.EmailService != nil {
		go func(email, name string, order models.Order) {
			if err := oc.EmailService.SendOrderConfirmationEmail(email, name, order); err != nil {
				logrus.WithError(err).Errorf("Failed to send order confirmation to %s", email)
			}
		}(user.Email, user.Name, order)
	}

	utils.WriteJSON(w, http.StatusCreated, order)
}

// GetMyOrders retrieves the authenticated user's orders, newest first
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	oc.listOrders(ctx, w, bson.M{"user": userID})
}

// GetAllOrders retrieves every order, newest first (Admin only)
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	oc.listOrders(ctx, w, bson.M{})
}

func (oc *OrderController) listOrders(ctx context.Context, w http.ResponseWriter, filter bson.M) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := oc.Orders.Find(ctx, filter, opts)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error decoding orders")
		return
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus moves an order through its status enum (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if !models.IsValidOrderStatus(req.Status) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Order
	err = oc.Orders.FindOneAndUpdate(ctx, bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": req.Status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.WriteError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

// orderTotal sums priceAtTime x quantity over the order's lines. The sum is
// carried in decimal so repeated float addition cannot drift, then stored in
// the float64 the document schema uses.
func orderTotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.PriceAtTime).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.InexactFloat64()
}
