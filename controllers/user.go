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
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// UserController handles the public name lookup and the admin user management
type UserController struct {
	Users *mongo.Collection
}

// NewUserController creates a new UserController
func NewUserController(db *mongo.Database) *UserController {
	return &UserController{
		Users: db.Collection("users"),
	}
}

// GetUserByID returns only a user's display name, for attributing ratings
func (uc *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err = uc.Users.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"name": 1})).Decode(&user)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"name": user.Name})
}

// GetUsers retrieves all users with passwords stripped (Admin only)
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := uc.Users.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error decoding users")
		return
	}

	utils.WriteJSON(w, http.StatusOK, users)
}

// CreateUser creates a user directly, already verified (Admin only)
func (uc *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Role     string         `json:"role"`
		Address  models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleCustomer {
		utils.WriteError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := uc.Users.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if count > 0 {
		utils.WriteError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      req.Role,
		Address:   req.Address,
		Verified:  true,
		CreatedAt: time.Now(),
	}
	result, err := uc.Users.InsertOne(ctx, user)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error creating user")
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	user.Password = ""

	utils.WriteJSON(w, http.StatusCreated, user)
}

// UpdateUser updates a user's name, email or role (Admin only)
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleCustomer {
			utils.WriteError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		update["role"] = req.Role
	}
	if len(update) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated models.User
	err = uc.Users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0})).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error updating user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

// DeleteUser deletes a user (Admin only)
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := uc.Users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if result.DeletedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
