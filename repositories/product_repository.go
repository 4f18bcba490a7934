package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// MongoProductRepository stores products, with their reviews embedded
type MongoProductRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewProductRepository(collection *mongo.Collection, timeout time.Duration) *MongoProductRepository {
	return &MongoProductRepository{collection: collection, timeout: timeout}
}

func (r *MongoProductRepository) List(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, translate(err, msgProductNotFound)
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, translate(err, msgProductNotFound)
	}
	return products, nil
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	return product, translate(err, msgProductNotFound)
}

func (r *MongoProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	product.ID = primitive.NewObjectID()
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return models.Product{}, translate(err, msgProductNotFound)
	}
	return product, nil
}

// AppendReview pushes the review and recomputes generalRating inside a
// single pipeline update so concurrent reviews are never lost.
func (r *MongoProductRepository) AppendReview(ctx context.Context, id primitive.ObjectID, review models.Review) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	// $literal keeps user text starting with "$" from being read as a field path.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
			bson.A{bson.D{{Key: "$literal", Value: review}}},
		}}}}}}},
		{{Key: "$set", Value: bson.D{{Key: "generalRating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&product)
	return product, translate(err, msgProductNotFound)
}

func (r *MongoProductRepository) Update(ctx context.Context, product models.Product) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{
		"title":        product.Title,
		"description":  product.Description,
		"category":     product.Category,
		"countInStock": product.CountInStock,
		"variant":      product.Variant,
		"image":        product.Image,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": product.ID}, bson.M{"$set": set}, opts).Decode(&updated)
	return updated, translate(err, msgProductNotFound)
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var deleted models.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return deleted, translate(err, msgProductNotFound)
}
