package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperror"
	"go-storefront/models"
)

// memoryDB keeps every collection behind one lock. Records are copied on
// the way in and out so callers never share slices with the store.
type memoryDB struct {
	mu       sync.RWMutex
	users    []models.User
	products []models.Product
	carts    []models.Cart
}

// NewMemoryStore returns a Store that keeps everything in process memory.
func NewMemoryStore() *Store {
	db := &memoryDB{}
	return &Store{
		Users:    &MemoryUserRepository{db: db},
		Products: &MemoryProductRepository{db: db},
		Carts:    &MemoryCartRepository{db: db},
	}
}

type MemoryUserRepository struct{ db *memoryDB }

func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return append([]models.User{}, r.db.users...), nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if i := r.db.userIndex(func(u models.User) bool { return u.ID == id }); i >= 0 {
		return r.db.users[i], nil
	}
	return models.User{}, apperror.NotFound(msgUserNotFound, nil)
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if i := r.db.userIndex(byEmail(email)); i >= 0 {
		return r.db.users[i], nil
	}
	return models.User{}, apperror.NotFound(msgUserNotFound, nil)
}

func (r *MemoryUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.userIndex(byEmail(user.Email)) >= 0 {
		return models.User{}, apperror.Conflict(msgEmailTaken, nil)
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	r.db.users = append(r.db.users, user)
	return user, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.userIndex(func(u models.User) bool { return u.ID == user.ID })
	if i < 0 {
		return models.User{}, apperror.NotFound(msgUserNotFound, nil)
	}
	if j := r.db.userIndex(byEmail(user.Email)); j >= 0 && j != i {
		return models.User{}, apperror.Conflict(msgEmailTaken, nil)
	}
	user.CreatedAt = r.db.users[i].CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.db.users[i] = user
	return user, nil
}

func (r *MemoryUserRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.userIndex(byEmail(email))
	if i < 0 {
		return models.User{}, apperror.NotFound(msgUserNotFound, nil)
	}
	r.db.users[i].IsAdmin = isAdmin
	r.db.users[i].UpdatedAt = time.Now().UTC()
	return r.db.users[i], nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, apperror.NotFound(msgUserNotFound, nil)
	}
	deleted := r.db.users[i]
	r.db.users = append(r.db.users[:i], r.db.users[i+1:]...)
	return deleted, nil
}

func (db *memoryDB) userIndex(match func(models.User) bool) int {
	for i, u := range db.users {
		if match(u) {
			return i
		}
	}
	return -1
}

func byEmail(email string) func(models.User) bool {
	return func(u models.User) bool { return strings.EqualFold(u.Email, email) }
}

type MemoryProductRepository struct{ db *memoryDB }

func (r *MemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.Product, 0, len(r.db.products))
	for _, p := range r.db.products {
		out = append(out, copyProduct(p))
	}
	return out, nil
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if i := r.db.productIndex(id); i >= 0 {
		return copyProduct(r.db.products[i]), nil
	}
	return models.Product{}, apperror.NotFound(msgProductNotFound, nil)
}

func (r *MemoryProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Product{}
	for _, id := range ids {
		if i := r.db.productIndex(id); i >= 0 {
			out = append(out, copyProduct(r.db.products[i]))
		}
	}
	return out, nil
}

func (r *MemoryProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	product.ID = primitive.NewObjectID()
	product = copyProduct(product)
	r.db.products = append(r.db.products, product)
	return copyProduct(product), nil
}

func (r *MemoryProductRepository) AppendReview(ctx context.Context, id primitive.ObjectID, review models.Review) (models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.productIndex(id)
	if i < 0 {
		return models.Product{}, apperror.NotFound(msgProductNotFound, nil)
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	r.db.products[i].AddReview(review)
	return copyProduct(r.db.products[i]), nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, product models.Product) (models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.productIndex(product.ID)
	if i < 0 {
		return models.Product{}, apperror.NotFound(msgProductNotFound, nil)
	}
	stored := &r.db.products[i]
	stored.Title = product.Title
	stored.Description = product.Description
	stored.Category = product.Category
	stored.CountInStock = product.CountInStock
	stored.Variant = product.Variant
	stored.Image = product.Image
	return copyProduct(*stored), nil
}

func (r *MemoryProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.productIndex(id)
	if i < 0 {
		return models.Product{}, apperror.NotFound(msgProductNotFound, nil)
	}
	deleted := r.db.products[i]
	r.db.products = append(r.db.products[:i], r.db.products[i+1:]...)
	return deleted, nil
}

func (db *memoryDB) productIndex(id primitive.ObjectID) int {
	for i, p := range db.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func copyProduct(p models.Product) models.Product {
	p.Reviews = append([]models.Review{}, p.Reviews...)
	return p
}

type MemoryCartRepository struct{ db *memoryDB }

func (r *MemoryCartRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if i := r.db.cartIndex(userID); i >= 0 {
		return copyCart(r.db.carts[i]), nil
	}
	return models.Cart{}, apperror.NotFound(msgCartNotFound, nil)
}

func (r *MemoryCartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.cartIndex(userID)
	if i < 0 {
		r.db.carts = append(r.db.carts, models.Cart{ID: primitive.NewObjectID(), UserID: userID})
		i = len(r.db.carts) - 1
	}
	r.db.carts[i].MergeItem(productID, qty)
	return copyCart(r.db.carts[i]), nil
}

func (r *MemoryCartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (models.Cart, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.cartIndex(userID)
	if i < 0 {
		return models.Cart{}, apperror.NotFound(msgCartNotFound, nil)
	}
	if !r.db.carts[i].RemoveItem(productID) {
		return models.Cart{}, apperror.NotFound(msgNotInCart, nil)
	}
	return copyCart(r.db.carts[i]), nil
}

func (r *MemoryCartRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	i := r.db.cartIndex(userID)
	if i < 0 {
		return 0, nil
	}
	r.db.carts = append(r.db.carts[:i], r.db.carts[i+1:]...)
	return 1, nil
}

func (db *memoryDB) cartIndex(userID primitive.ObjectID) int {
	for i, c := range db.carts {
		if c.UserID == userID {
			return i
		}
	}
	return -1
}

func copyCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return c
}
