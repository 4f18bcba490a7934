package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant holds the purchasable attributes of a product
type Variant struct {
	Price float64 `bson:"price" json:"price" validate:"gte=0"`
	Color string  `bson:"color,omitempty" json:"color,omitempty"`
	Size  string  `bson:"size,omitempty" json:"size,omitempty"`
}

// Review is embedded in its product
type Review struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name" validate:"required"`
	Comment string             `bson:"comment" json:"comment" validate:"required"`
	Rating  float64            `bson:"rating" json:"rating" validate:"gte=0,lte=5"`
}

// Product represents a catalog entry
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title" validate:"required"`
	Description   string             `bson:"description" json:"description" validate:"required"`
	Category      string             `bson:"category" json:"category" validate:"required"`
	CountInStock  int                `bson:"countInStock" json:"countInStock" validate:"gte=0"`
	Variant       Variant            `bson:"variant" json:"variant"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	GeneralRating float64            `bson:"generalRating" json:"generalRating"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
}

// AddReview appends r and recomputes the general rating.
func (p *Product) AddReview(r Review) {
	p.Reviews = append(p.Reviews, r)
	p.GeneralRating = AverageRating(p.Reviews)
}

// AverageRating is the arithmetic mean of the review ratings, 0 when empty.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

// ProductPatch carries an administrative update. Zero values are treated
// as "not provided".
type ProductPatch struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	CountInStock int     `json:"countInStock" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	Color        string  `json:"color"`
	Size         string  `json:"size"`
}

func (p ProductPatch) Apply(prod *Product) {
	if p.Title != "" {
		prod.Title = p.Title
	}
	if p.Description != "" {
		prod.Description = p.Description
	}
	if p.Category != "" {
		prod.Category = p.Category
	}
	if p.CountInStock != 0 {
		prod.CountInStock = p.CountInStock
	}
	if p.Price != 0 {
		prod.Variant.Price = p.Price
	}
	if p.Color != "" {
		prod.Variant.Color = p.Color
	}
	if p.Size != "" {
		prod.Variant.Size = p.Size
	}
}

// ProductSummary is the projection embedded in cart views
type ProductSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
	Price float64            `json:"price"`
	Image string             `json:"image,omitempty"`
}

func (p Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Title: p.Title, Price: p.Variant.Price, Image: p.Image}
}
