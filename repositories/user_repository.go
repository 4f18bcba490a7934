package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/apperror"
	"go-storefront/models"
)

// MongoUserRepository stores users in a Mongo collection
type MongoUserRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewUserRepository(collection *mongo.Collection, timeout time.Duration) *MongoUserRepository {
	return &MongoUserRepository{collection: collection, timeout: timeout}
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, translate(err, msgUserNotFound)
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate(err, msgUserNotFound)
	}
	return users, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	return user, translate(err, msgUserNotFound)
}

func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, apperror.Conflict(msgEmailTaken, err)
		}
		return models.User{}, translate(err, msgUserNotFound)
	}
	return user, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	return r.findOneAndSet(ctx, bson.M{"_id": user.ID}, bson.M{
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"password":  user.Password,
		"isAdmin":   user.IsAdmin,
	})
}

func (r *MongoUserRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) (models.User, error) {
	return r.findOneAndSet(ctx, bson.M{"email": email}, bson.M{"isAdmin": isAdmin})
}

func (r *MongoUserRepository) findOneAndSet(ctx context.Context, filter, set bson.M) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if mongo.IsDuplicateKeyError(err) {
		return models.User{}, apperror.Conflict(msgEmailTaken, err)
	}
	return updated, translate(err, msgUserNotFound)
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var deleted models.User
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	return deleted, translate(err, msgUserNotFound)
}
