package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/lahiruanushka/bookstore-api/middleware"
	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// AuthController handles registration, login and the email token flows
type AuthController struct {
	Users        *mongo.Collection
	EmailService *utils.EmailService
}

// NewAuthController creates a new AuthController
func NewAuthController(db *mongo.Database, emailService *utils.EmailService) *AuthController {
	return &AuthController{
		Users:        db.Collection("users"),
		EmailService: emailService,
	}
}

// Register handles user registration
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := ac.Users.CountDocuments(ctx, bson.M{"email": req.Email})
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

	token := utils.NewToken()
	user := models.User{
		Name:                req.Name,
		Email:               req.Email,
		Password:            string(hashedPassword),
		Role:                models.RoleCustomer,
		Address:             req.Address,
		Verified:            false,
		VerificationToken:   token,
		VerificationExpires: time.Now().Add(utils.VerificationTokenTTL),
		CreatedAt:           time.Now(),
	}

	if _, err := ac.Users.InsertOne(ctx, user); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	if ac.EmailService != nil {
		go func(email, token string) {
			if err := ac.EmailService.SendVerificationEmail(email, token); err != nil {
				logrus.WithError(err).Errorf("Failed to send verification email to %s", email)
			}
		}(user.Email, token)
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// Login handles user authentication
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := ac.Users.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "User not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if !user.Verified {
		utils.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"message":  "Email not verified. Please check your inbox.",
			"verified": false,
		})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// VerifyEmail handles the verification link from the email
func (ac *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.Users.FindOne(ctx, bson.M{"verificationToken": token}).Decode(&user)
	if err != nil || utils.TokenExpired(user.VerificationExpires) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}

	_, err = ac.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"verified": true},
		"$unset": bson.M{"verificationToken": "", "verificationExpires": ""},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error updating verification status")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Email verified successfully. You can now log in.",
	})
}

// ResendVerification rotates the verification token and resends the email
func (ac *AuthController) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := ac.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "User not found")
		return
	}
	if user.Verified {
		utils.WriteError(w, http.StatusBadRequest, "Email already verified")
		return
	}

	token := utils.NewToken()
	_, err := ac.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"verificationToken":   token,
			"verificationExpires": time.Now().Add(utils.VerificationTokenTTL),
		},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error updating verification token")
		return
	}

	if ac.EmailService != nil {
		go func(email, token string) {
			if err := ac.EmailService.SendVerificationEmail(email, token); err != nil {
				logrus.WithError(err).Errorf("Failed to send verification email to %s", email)
			}
		}(user.Email, token)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Verification email sent. Please check your inbox.",
	})
}

// VerifyToken confirms the bearer token and returns the user it belongs to
func (ac *AuthController) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := ac.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]string{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// ForgotPassword issues a reset token. The response never reveals whether
// the email is registered.
func (ac *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := ac.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user); err == nil {
		token := utils.NewToken()
		_, err := ac.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
			"$set": bson.M{
				"resetPasswordToken":   token,
				"resetPasswordExpires": time.Now().Add(utils.ResetTokenTTL),
			},
		})
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Error creating reset token")
			return
		}

		if ac.EmailService != nil {
			go func(email, token string) {
				if err := ac.EmailService.SendPasswordResetEmail(email, token); err != nil {
					logrus.WithError(err).Errorf("Failed to send password reset email to %s", email)
				}
			}(user.Email, token)
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a password reset link has been sent.",
	})
}

// ValidateResetToken checks a reset token before the user types a new password
func (ac *AuthController) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.Users.FindOne(ctx, bson.M{"resetPasswordToken": token}).Decode(&user)
	if err != nil || utils.TokenExpired(user.ResetPasswordExpires) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Token is valid"})
}

// ResetPassword sets a new password for a valid reset token
func (ac *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Password is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.Users.FindOne(ctx, bson.M{"resetPasswordToken": token}).Decode(&user)
	if err != nil || utils.TokenExpired(user.ResetPasswordExpires) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = ac.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": string(hashedPassword)},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully. You can now log in.",
	})
}
