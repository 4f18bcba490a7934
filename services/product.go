package services

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/repositories"
	"go-storefront/storage"
	"go-storefront/utils"
)

// Upload is an image received with a product
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// ProductService manages the catalog
type ProductService struct {
	products      repositories.ProductRepository
	images        storage.ImageStore
	maxUploadSize int64
	logger        *logrus.Logger
}

func NewProductService(products repositories.ProductRepository, images storage.ImageStore, maxUploadSize int64, logger *logrus.Logger) *ProductService {
	return &ProductService{products: products, images: images, maxUploadSize: maxUploadSize, logger: logger}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	oid, err := parseID(id, "product not found")
	if err != nil {
		return models.Product{}, err
	}
	return s.products.GetByID(ctx, oid)
}

// Create validates the draft, stores the image and persists the product.
// The image is removed again if the product cannot be saved.
func (s *ProductService) Create(ctx context.Context, draft models.Product, image *Upload) (models.Product, error) {
	draft.Reviews = []models.Review{}
	draft.GeneralRating = 0
	if err := utils.Validate(draft); err != nil {
		return models.Product{}, err
	}
	if image == nil {
		return models.Product{}, apperror.Invalid("Invalid Request", map[string]string{"image": "is required"}, nil)
	}
	if err := storage.ValidateImage(image.Filename, image.Size, s.maxUploadSize); err != nil {
		return models.Product{}, apperror.Invalid("Invalid Request", map[string]string{"image": err.Error()}, err)
	}

	ref, err := s.images.Save(ctx, image.Filename, image.Body, image.Size, image.ContentType)
	if err != nil {
		return models.Product{}, apperror.Internal("Error saving image", err)
	}
	draft.Image = ref

	product, err := s.products.Create(ctx, draft)
	if err != nil {
		s.removeImage(ref)
		return models.Product{}, err
	}
	return product, nil
}

// AddReview appends a review and returns the product with its new rating.
func (s *ProductService) AddReview(ctx context.Context, id string, review models.Review) (models.Product, error) {
	oid, err := parseID(id, "product not found")
	if err != nil {
		return models.Product{}, err
	}
	if err := utils.Validate(review); err != nil {
		return models.Product{}, err
	}
	return s.products.AppendReview(ctx, oid, review)
}

// Update applies the non-zero fields of patch.
func (s *ProductService) Update(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	oid, err := parseID(id, "product not found")
	if err != nil {
		return models.Product{}, err
	}
	if err := utils.Validate(patch); err != nil {
		return models.Product{}, err
	}

	product, err := s.products.GetByID(ctx, oid)
	if err != nil {
		return models.Product{}, err
	}
	patch.Apply(&product)
	return s.products.Update(ctx, product)
}

// Delete removes the product and, best effort, its image.
func (s *ProductService) Delete(ctx context.Context, id string) (models.Product, error) {
	oid, err := parseID(id, "product not found")
	if err != nil {
		return models.Product{}, err
	}
	deleted, err := s.products.Delete(ctx, oid)
	if err != nil {
		return models.Product{}, err
	}
	if deleted.Image != "" {
		s.removeImage(deleted.Image)
	}
	return deleted, nil
}

func (s *ProductService) removeImage(ref string) {
	if err := s.images.Delete(context.Background(), ref); err != nil {
		s.logger.WithError(err).WithField("image", ref).Warn("failed to delete product image")
	}
}
