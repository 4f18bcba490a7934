package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"go-storefront/apperror"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	cartsCollection    = "carts"
)

// NewMongoStore builds the Mongo-backed repositories on db. Every call is
// bounded by timeout.
func NewMongoStore(client *mongo.Client, db *mongo.Database, timeout time.Duration) *Store {
	return &Store{
		Users:    NewUserRepository(db.Collection(usersCollection), timeout),
		Products: NewProductRepository(db.Collection(productsCollection), timeout),
		Carts:    NewCartRepository(db.Collection(cartsCollection), timeout),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
}

// EnsureIndexes creates the unique indexes the repositories rely on:
// one account per email and one cart per user.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]mongo.IndexModel{
		usersCollection: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		cartsCollection: {
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_unique"),
		},
	}
	for coll, model := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}
	return nil
}

// translate classifies a driver error. notFound is the message used when
// no document matched.
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.NotFound(notFound, err)
	case mongo.IsDuplicateKeyError(err):
		return apperror.Conflict("duplicate key", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.Internal("database timeout", err)
	default:
		return apperror.Internal("database error", err)
	}
}
