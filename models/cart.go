package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a line item: one product and its quantity
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"qty" json:"qty"`
}

// Cart represents a user's shopping cart
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user" json:"user"`
	Items  []CartItem         `bson:"items" json:"items"`
}

// MergeItem adds qty of productID, summing into an existing line item
// (which keeps its position) or appending a new one.
func (c *Cart) MergeItem(productID primitive.ObjectID, qty int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: qty})
}

// RemoveItem drops the line item for productID and reports whether it existed.
func (c *Cart) RemoveItem(productID primitive.ObjectID) bool {
	kept := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(c.Items)
	c.Items = kept
	return removed
}

// CartLine is a line item with its product summary. Product is nil when the
// product no longer exists.
type CartLine struct {
	ProductID primitive.ObjectID `json:"productId"`
	Product   *ProductSummary    `json:"product"`
	Quantity  int                `json:"qty"`
}

// CartView is the API representation of a cart
type CartView struct {
	ID     primitive.ObjectID `json:"id"`
	UserID primitive.ObjectID `json:"user"`
	Items  []CartLine         `json:"items"`
}

// DeleteResult reports how many documents a delete removed
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
