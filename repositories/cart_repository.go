package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/apperror"
	"go-storefront/models"
)

// maxUpsertAttempts bounds the retries when two requests create the same
// cart at once and one of them loses on the unique user index.
const maxUpsertAttempts = 3

// MongoCartRepository stores one cart document per user
type MongoCartRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewCartRepository(collection *mongo.Collection, timeout time.Duration) *MongoCartRepository {
	return &MongoCartRepository{collection: collection, timeout: timeout}
}

func (r *MongoCartRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	return cart, translate(err, msgCartNotFound)
}

// AddItem increments the quantity of an existing line item in place, or
// pushes a new one, upserting the cart. Both paths are single-document
// atomic updates.
func (r *MongoCartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var lastErr error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		var cart models.Cart
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"user": userID, "items.product": productID},
			bson.M{"$inc": bson.M{"items.$.qty": qty}},
			after,
		).Decode(&cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return models.Cart{}, translate(err, msgCartNotFound)
		}

		err = r.collection.FindOneAndUpdate(ctx,
			bson.M{"user": userID, "items.product": bson.M{"$ne": productID}},
			bson.M{"$push": bson.M{"items": models.CartItem{ProductID: productID, Quantity: qty}}},
			options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true),
		).Decode(&cart)
		if err == nil {
			return cart, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return models.Cart{}, translate(err, msgCartNotFound)
		}
		lastErr = err
	}
	return models.Cart{}, apperror.Internal("cart update contention", lastErr)
}

func (r *MongoCartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var cart models.Cart
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"user": userID, "items.product": productID},
		bson.M{"$pull": bson.M{"items": bson.M{"product": productID}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cart)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, translate(err, msgCartNotFound)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"user": userID})
	if err != nil {
		return models.Cart{}, translate(err, msgCartNotFound)
	}
	if count == 0 {
		return models.Cart{}, apperror.NotFound(msgCartNotFound, nil)
	}
	return models.Cart{}, apperror.NotFound(msgNotInCart, nil)
}

func (r *MongoCartRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, translate(err, msgCartNotFound)
	}
	return res.DeletedCount, nil
}
