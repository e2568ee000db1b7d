package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// ProfileController handles the authenticated user's own account
type ProfileController struct {
	Users *mongo.Collection
}

// NewProfileController creates a new ProfileController
func NewProfileController(db *mongo.Database) *ProfileController {
	return &ProfileController{
		Users: db.Collection("users"),
	}
}

// GetMyProfile returns the user's profile with the account age attached
func (pc *ProfileController) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := pc.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.WriteError(w, http.StatusNotFound, "User profile not found")
		return
	}

	address := user.Address
	if address == (models.Address{}) {
		address = models.Address{
			Street:  "Not provided",
			City:    "Not provided",
			State:   "Not provided",
			ZipCode: "Not provided",
			Country: "Not provided",
		}
	}

	accountAgeDays := int(time.Since(user.CreatedAt).Hours() / 24)

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"_id":            user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"role":           user.Role,
		"createdAt":      user.CreatedAt,
		"accountAgeDays": accountAgeDays,
		"address":        address,
	})
}

// UpdateMyProfile updates the user's name and/or address
func (pc *ProfileController) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Name    string          `json:"name"`
		Address *models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Address != nil {
		update["address"] = req.Address
	}
	if len(update) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated models.User
	err := pc.Users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": update},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0})).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.WriteError(w, http.StatusNotFound, "User profile not found")
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error updating profile")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

// ChangePassword verifies the current password before setting a new one
func (pc *ProfileController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.CurrentPassword == "" || req.NewPassword == "" {
		utils.WriteError(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, ok := pc.verifyPassword(ctx, w, userID, req.CurrentPassword, "Current password is incorrect")
	if !ok {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = pc.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"password": string(hashedPassword)}})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error changing password")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// UpdateEmail changes the account email after re-verifying the password
func (pc *ProfileController) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		NewEmail string `json:"newEmail"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.NewEmail == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "New email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var existing models.User
	err := pc.Users.FindOne(ctx, bson.M{"email": req.NewEmail}).Decode(&existing)
	if err == nil && existing.ID != userID {
		utils.WriteError(w, http.StatusBadRequest, "Email already in use by another account")
		return
	}

	user, ok := pc.verifyPassword(ctx, w, userID, req.Password, "Password is incorrect")
	if !ok {
		return
	}

	var updated models.User
	err = pc.Users.FindOneAndUpdate(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"email": req.NewEmail}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0})).Decode(&updated)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error updating email")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email updated successfully",
		"user":    updated,
	})
}

// UpdateAddress replaces the shipping address. All fields are required.
func (pc *ProfileController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var address models.Address
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if address.Street == "" || address.City == "" || address.State == "" ||
		address.ZipCode == "" || address.Country == "" {
		utils.WriteError(w, http.StatusBadRequest, "All address fields are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"address": address}})
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error updating address")
		return
	}
	if result.MatchedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Address updated successfully",
		"address": address,
	})
}

// DeleteMyAccount deletes the user after re-verifying the password
func (pc *ProfileController) DeleteMyAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Password is required to delete account")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, ok := pc.verifyPassword(ctx, w, userID, req.Password, "Password is incorrect")
	if !ok {
		return
	}

	if _, err := pc.Users.DeleteOne(ctx, bson.M{"_id": user.ID}); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting account")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (pc *ProfileController) verifyPassword(ctx context.Context, w http.ResponseWriter, userID primitive.ObjectID, password, mismatchMsg string) (*models.User, bool) {
	var user models.User
	if err := pc.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		utils.WriteError(w, http.StatusBadRequest, mismatchMsg)
		return nil, false
	}
	return &user, true
}
