package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/repositories"
	"go-storefront/utils"
)

// AddItemRequest is the body of an add-to-cart call
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty" validate:"lte=1000"`
}

// CartService maintains one cart per user
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	logger   *logrus.Logger
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, users repositories.UserRepository, logger *logrus.Logger) *CartService {
	return &CartService{carts: carts, products: products, users: users, logger: logger}
}

func (s *CartService) Get(ctx context.Context, userID string) (models.CartView, error) {
	uid, err := parseID(userID, "cart not found")
	if err != nil {
		return models.CartView{}, err
	}
	cart, err := s.carts.GetByUser(ctx, uid)
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

// AddItem merges qty of the product into the user's cart, creating the cart
// on first use. qty below 1 counts as 1 and a single add is capped at 1000.
// Unknown users or products are rejected as bad input.
func (s *CartService) AddItem(ctx context.Context, userID string, req AddItemRequest) (models.CartView, error) {
	if err := utils.Validate(req); err != nil {
		return models.CartView{}, err
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.CartView{}, apperror.BadRequest("invalid user id", err)
	}
	pid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return models.CartView{}, apperror.Invalid("Invalid Request", map[string]string{"productId": "must be a valid id"}, err)
	}
	if req.Qty < 1 {
		req.Qty = 1
	}

	if _, err := s.users.GetByID(ctx, uid); err != nil {
		return models.CartView{}, asBadRequest(err, "user does not exist")
	}
	if _, err := s.products.GetByID(ctx, pid); err != nil {
		return models.CartView{}, asBadRequest(err, "product does not exist")
	}

	cart, err := s.carts.AddItem(ctx, uid, pid, req.Qty)
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (models.CartView, error) {
	uid, err := parseID(userID, "cart not found")
	if err != nil {
		return models.CartView{}, err
	}
	pid, err := parseID(productID, "product not in cart")
	if err != nil {
		return models.CartView{}, err
	}
	cart, err := s.carts.RemoveItem(ctx, uid, pid)
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

// Delete removes the cart. Deleting a missing cart is not an error.
func (s *CartService) Delete(ctx context.Context, userID string) (models.DeleteResult, error) {
	uid, err := parseID(userID, "cart not found")
	if err != nil {
		return models.DeleteResult{}, err
	}
	n, err := s.carts.DeleteByUser(ctx, uid)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return models.DeleteResult{DeletedCount: n}, nil
}

// view joins the line items with their product summaries.
func (s *CartService) view(ctx context.Context, cart models.Cart) (models.CartView, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return models.CartView{}, err
	}
	byID := make(map[primitive.ObjectID]models.ProductSummary, len(products))
	for _, p := range products {
		byID[p.ID] = p.Summary()
	}

	view := models.CartView{ID: cart.ID, UserID: cart.UserID, Items: make([]models.CartLine, 0, len(cart.Items))}
	for _, item := range cart.Items {
		line := models.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
		if summary, ok := byID[item.ProductID]; ok {
			line.Product = &summary
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

func asBadRequest(err error, msg string) error {
	if apperror.Is(err, apperror.KindNotFound) {
		return apperror.BadRequest(msg, err)
	}
	return err
}
