package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/repositories"
	"go-storefront/storage"
	"go-storefront/utils"
)

type fixture struct {
	store    *repositories.Store
	tokens   *utils.TokenIssuer
	users    *UserService
	products *ProductService
	carts    *CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	images, err := storage.NewLocalStore(t.TempDir(), "/uploads/")
	require.NoError(t, err)

	store := repositories.NewMemoryStore()
	tokens := utils.NewTokenIssuer("test-secret", 30*24*time.Hour)
	return &fixture{
		store:    store,
		tokens:   tokens,
		users:    NewUserService(store.Users, store.Carts, tokens, utils.NopMailer{}, logger),
		products: NewProductService(store.Products, images, 1<<20, logger),
		carts:    NewCartService(store.Carts, store.Products, store.Users, logger),
	}
}

func (f *fixture) register(t *testing.T, email string) models.AuthResult {
	t.Helper()
	res, err := f.users.Register(context.Background(), models.Registration{
		FirstName: "test", LastName: "test", Email: email, Password: "abcdef",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) product(t *testing.T, title string) models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), models.Product{
		Title: title, Description: "description of " + title, Category: "category x",
		CountInStock: 10, Variant: models.Variant{Price: 100, Color: "black", Size: "large"},
	}, pngUpload())
	require.NoError(t, err)
	return p
}

func pngUpload() *Upload {
	return &Upload{Filename: "x.png", Size: 3, ContentType: "image/png", Body: strings.NewReader("png")}
}

func TestRegisterAndSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg := f.register(t, "Test@Gmail.com")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "test@gmail.com", reg.Email)

	signed, err := f.users.SignIn(ctx, models.Credentials{Email: "test@gmail.com", Password: "abcdef"})
	require.NoError(t, err)
	assert.NotEmpty(t, signed.Token)
	claims, err := f.tokens.Verify(signed.Token)
	require.NoError(t, err)
	assert.Equal(t, "test@gmail.com", claims.Email)

	stored, err := f.store.Users.GetByEmail(ctx, "test@gmail.com")
	require.NoError(t, err)
	assert.NotEqual(t, "abcdef", stored.Password)
}

func TestSignInFailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	f.register(t, "test@gmail.com")

	_, wrongPassword := f.users.SignIn(context.Background(), models.Credentials{Email: "test@gmail.com", Password: "nope!!"})
	_, unknownEmail := f.users.SignIn(context.Background(), models.Credentials{Email: "who@gmail.com", Password: "abcdef"})

	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(wrongPassword))
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(context.Background(), models.Registration{Email: "test@gmail.com", Password: "abc"})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	f.register(t, "test@gmail.com")
	_, err = f.users.Register(context.Background(), models.Registration{
		FirstName: "a", LastName: "b", Email: "test@gmail.com", Password: "abcdef",
	})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestUpdateUserFalsyMeansOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "test@gmail.com")

	updated, err := f.users.Update(ctx, reg.ID.Hex(), models.UserPatch{FirstName: "Ada", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "test", updated.LastName)
	assert.Equal(t, "test@gmail.com", updated.Email)

	_, err = f.users.SignIn(ctx, models.Credentials{Email: "test@gmail.com", Password: "newpass"})
	assert.NoError(t, err)

	_, err = f.users.Update(ctx, primitive.NewObjectID().Hex(), models.UserPatch{FirstName: "x"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteUserRemovesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "test@gmail.com")
	p := f.product(t, "lamp")
	_, err := f.carts.AddItem(ctx, reg.ID.Hex(), AddItemRequest{ProductID: p.ID.Hex(), Qty: 1})
	require.NoError(t, err)

	_, err = f.users.Delete(ctx, reg.ID.Hex())
	require.NoError(t, err)

	_, err = f.carts.Get(ctx, reg.ID.Hex())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = f.users.Get(ctx, reg.ID.Hex())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateProductRequiresFieldsAndImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.Create(ctx, models.Product{Title: "lamp"}, pngUpload())
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	draft := models.Product{Title: "lamp", Description: "d", Category: "c"}
	_, err = f.products.Create(ctx, draft, nil)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = f.products.Create(ctx, draft, &Upload{Filename: "x.exe", Size: 1, Body: strings.NewReader("x")})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	p, err := f.products.Create(ctx, draft, pngUpload())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Image, "/uploads/"))
	assert.Zero(t, p.GeneralRating)
	assert.Empty(t, p.Reviews)
}

func TestAddReviewAverages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "lamp")

	_, err := f.products.AddReview(ctx, p.ID.Hex(), models.Review{Name: "a", Comment: "great", Rating: 5})
	require.NoError(t, err)
	got, err := f.products.AddReview(ctx, p.ID.Hex(), models.Review{Name: "b", Comment: "ok", Rating: 3})
	require.NoError(t, err)

	assert.Equal(t, 4.0, got.GeneralRating)
	assert.Len(t, got.Reviews, 2)
}

func TestAddReviewOutOfRangeLeavesProductUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "lamp")

	_, err := f.products.AddReview(ctx, p.ID.Hex(), models.Review{Name: "a", Comment: "wow", Rating: 10})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	stored, err := f.products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.Reviews)
	assert.Zero(t, stored.GeneralRating)

	_, err = f.products.AddReview(ctx, primitive.NewObjectID().Hex(), models.Review{Name: "a", Comment: "b", Rating: 1})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUpdateProductFalsyMeansOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "lamp")

	updated, err := f.products.Update(ctx, p.ID.Hex(), models.ProductPatch{Title: "", CountInStock: 0, Price: 0, Color: "white"})
	require.NoError(t, err)
	assert.Equal(t, "lamp", updated.Title)
	assert.Equal(t, 10, updated.CountInStock)
	assert.Equal(t, 100.0, updated.Variant.Price)
	assert.Equal(t, "white", updated.Variant.Color)

	_, err = f.products.Update(ctx, "not-an-id", models.ProductPatch{Title: "x"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "lamp")

	deleted, err := f.products.Delete(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = f.products.Delete(ctx, p.ID.Hex())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCartMergeByAddition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "test@gmail.com").ID.Hex()
	p := f.product(t, "lamp")

	cart, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "lamp", cart.Items[0].Product.Title)
	assert.Equal(t, 100.0, cart.Items[0].Product.Price)
}

func TestCartAddItemDefaultsAndReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "test@gmail.com").ID.Hex()
	p := f.product(t, "lamp")

	cart, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	_, err = f.carts.AddItem(ctx, user, AddItemRequest{ProductID: primitive.NewObjectID().Hex(), Qty: 1})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = f.carts.AddItem(ctx, user, AddItemRequest{ProductID: "garbage", Qty: 1})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = f.carts.AddItem(ctx, primitive.NewObjectID().Hex(), AddItemRequest{ProductID: p.ID.Hex(), Qty: 1})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestCartAddItemQuantityLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "test@gmail.com").ID.Hex()
	p := f.product(t, "lamp")

	_, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 5e18})
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindBadRequest, appErr.Kind)
	assert.Contains(t, appErr.Details, "qty")

	cart, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1000, cart.Items[0].Quantity)

	_, err = f.carts.AddItem(ctx, user, AddItemRequest{})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestCartRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "test@gmail.com").ID.Hex()
	lamp, desk, chair := f.product(t, "lamp"), f.product(t, "desk"), f.product(t, "chair")

	for _, p := range []models.Product{lamp, desk} {
		_, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 2})
		require.NoError(t, err)
	}

	_, err := f.carts.RemoveItem(ctx, user, chair.ID.Hex())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	cart, err := f.carts.RemoveItem(ctx, user, lamp.ID.Hex())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, desk.ID, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	_, err = f.carts.RemoveItem(ctx, primitive.NewObjectID().Hex(), lamp.ID.Hex())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCartDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "test@gmail.com").ID.Hex()
	p := f.product(t, "lamp")
	_, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 1})
	require.NoError(t, err)

	res, err := f.carts.Delete(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	_, err = f.carts.Get(ctx, user)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	res, err = f.carts.Delete(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, res.DeletedCount)
}

func TestCartViewKeepsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "test@gmail.com").ID.Hex()
	p := f.product(t, "lamp")
	_, err := f.carts.AddItem(ctx, user, AddItemRequest{ProductID: p.ID.Hex(), Qty: 1})
	require.NoError(t, err)
	_, err = f.products.Delete(ctx, p.ID.Hex())
	require.NoError(t, err)

	cart, err := f.carts.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Nil(t, cart.Items[0].Product)
}
