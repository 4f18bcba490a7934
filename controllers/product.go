package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// multipart bodies may carry the image plus a little form data
const multipartOverhead = 1 << 16

// ProductController handles product-related requests
type ProductController struct {
	Products      *services.ProductService
	Respond       *utils.Responder
	MaxUploadSize int64
}

// NewProductController creates a new ProductController
func NewProductController(products *services.ProductService, respond *utils.Responder, maxUploadSize int64) *ProductController {
	return &ProductController{Products: products, Respond: respond, MaxUploadSize: maxUploadSize}
}

// List retrieves all products
func (pc *ProductController) List(w http.ResponseWriter, r *http.Request) {
	products, err := pc.Products.List(r.Context())
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	pc.Respond.JSON(w, http.StatusOK, products)
}

// Get retrieves a single product by ID
func (pc *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	product, err := pc.Products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	pc.Respond.JSON(w, http.StatusOK, product)
}

// Create handles adding a new product from a multipart form (Admin only)
func (pc *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, pc.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(pc.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			pc.Respond.Error(w, r, apperror.Invalid("Invalid Request", map[string]string{"image": "file size exceeds maximum allowed size"}, err))
			return
		}
		pc.Respond.Error(w, r, apperror.BadRequest("Invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	draft, err := productFromForm(r)
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}

	var upload *services.Upload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		upload = &services.Upload{
			Filename:    header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	case !errors.Is(err, http.ErrMissingFile):
		pc.Respond.Error(w, r, apperror.BadRequest("Invalid image", err))
		return
	}

	product, err := pc.Products.Create(r.Context(), draft, upload)
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	pc.Respond.JSON(w, http.StatusOK, product)
}

func productFromForm(r *http.Request) (models.Product, error) {
	details := map[string]string{}
	field := func(name string) string { return strings.TrimSpace(r.FormValue(name)) }

	var price float64
	if raw := field("price"); raw == "" {
		details["price"] = "is required"
	} else {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			details["price"] = "must be a number"
		}
		price = v
	}

	var stock int
	if raw := field("countInStock"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			details["countInStock"] = "must be an integer"
		}
		stock = v
	}

	draft := models.Product{
		Title:        field("title"),
		Description:  field("description"),
		Category:     field("category"),
		CountInStock: stock,
		Variant: models.Variant{
			Price: price,
			Color: field("color"),
			Size:  field("size"),
		},
	}
	if len(details) > 0 {
		return models.Product{}, apperror.Invalid("Invalid Request", details, nil)
	}
	return draft, nil
}

// AddReview appends a review to a product
func (pc *ProductController) AddReview(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if err := decodeJSON(w, r, &review); err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	product, err := pc.Products.AddReview(r.Context(), mux.Vars(r)["id"], review)
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	pc.Respond.JSON(w, http.StatusOK, product)
}

// Update handles updating a product (Admin only)
func (pc *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	product, err := pc.Products.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	pc.Respond.JSON(w, http.StatusOK, product)
}

// Delete handles deleting a product (Admin only)
func (pc *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := pc.Products.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		pc.Respond.Error(w, r, err)
		return
	}
	pc.Respond.Logger.WithFields(logrus.Fields{
		"request_id": utils.RequestID(r.Context()),
		"product_id": deleted.ID.Hex(),
		"title":      deleted.Title,
	}).Info("product deleted")
	pc.Respond.NoContent(w)
}
