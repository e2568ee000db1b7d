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

	"github.com/lahiruanushka/bookstore-api/middleware"
	"github.com/lahiruanushka/bookstore-api/models"
	"github.com/lahiruanushka/bookstore-api/utils"
)

// BookController handles catalog requests
type BookController struct {
	Books *mongo.Collection
}

// NewBookController creates a new BookController
func NewBookController(db *mongo.Database) *BookController {
	return &BookController{
		Books: db.Collection("books"),
	}
}

// GetBooks retrieves all books
func (bc *BookController) GetBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := bc.Books.Find(ctx, bson.M{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching books")
		return
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	for cursor.Next(ctx) {
		var book models.Book
		if err := cursor.Decode(&book); err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Error decoding book")
			return
		}
		books = append(books, book)
	}
	if err := cursor.Err(); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error reading books")
		return
	}

	utils.WriteJSON(w, http.StatusOK, books)
}

// GetBookByID retrieves a single book by ID
func (bc *BookController) GetBookByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var book models.Book
	if err := bc.Books.FindOne(ctx, bson.M{"_id": id}).Decode(&book); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Book not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, book)
}

// CreateBook handles adding a new book (Admin only)
func (bc *BookController) CreateBook(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if msg := validateBook(&book); msg != "" {
		utils.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	book.ID = primitive.NilObjectID
	book.CreatedAt = time.Now()
	if book.Ratings == nil {
		book.Ratings = []models.Rating{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := bc.Books.InsertOne(ctx, book)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error creating book")
		return
	}
	book.ID = result.InsertedID.(primitive.ObjectID)

	utils.WriteJSON(w, http.StatusCreated, book)
}

// UpdateBook handles updating a book (Admin only)
func (bc *BookController) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if msg := validateBook(&book); msg != "" {
		utils.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	// Ratings and createdAt are not part of the editable payload.
	update := bson.M{"$set": bson.M{
		"title":         book.Title,
		"author":        book.Author,
		"description":   book.Description,
		"isbn":          book.ISBN,
		"price":         book.Price,
		"stockQuantity": book.StockQuantity,
		"category":      book.Category,
		"publishYear":   book.PublishYear,
		"imageUrl":      book.ImageURL,
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated models.Book
	err = bc.Books.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.WriteError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error updating book")
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

// DeleteBook handles deleting a book (Admin only)
func (bc *BookController) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := bc.Books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting book")
		return
	}
	if result.DeletedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "Book not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}

// AddRating appends a rating to a book
func (bc *BookController) AddRating(w http.ResponseWriter, r *http.Request) {
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

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.WriteError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	rating := models.Rating{
		User:   userID,
		Rating: req.Rating,
		Review: req.Review,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated models.Book
	err = bc.Books.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"ratings": rating}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		utils.WriteError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Error adding rating")
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

func validateBook(book *models.Book) string {
	if book.Title == "" {
		return "Title is required"
	}
	if book.Author == "" {
		return "Author is required"
	}
	if book.Price < 0 {
		return "Price must not be negative"
	}
	if book.PublishYear == 0 {
		return "Publish year is required"
	}
	return ""
}
