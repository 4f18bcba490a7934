// Package repositories persists users, products and carts. The Mongo
// implementation is used in production; the in-memory one backs local
// development and tests.
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	// AppendReview adds the review and recomputes the general rating in one
	// atomic step.
	AppendReview(ctx context.Context, id primitive.ObjectID, review models.Review) (models.Product, error)
	// Update overwrites the descriptive fields, leaving reviews untouched.
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

// CartRepository defines persistence operations for carts.
type CartRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	// AddItem creates the cart when missing and merges qty into the line
	// item for productID, atomically.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (models.Cart, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Store groups the repositories of one backend.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Carts    CartRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend's resources.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

const (
	msgUserNotFound    = "user not found"
	msgProductNotFound = "product not found"
	msgCartNotFound    = "cart not found"
	msgNotInCart       = "product not in cart"
	msgEmailTaken      = "email already registered"
)
