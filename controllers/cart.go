package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"go-storefront/services"
	"go-storefront/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Carts   *services.CartService
	Respond *utils.Responder
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService, respond *utils.Responder) *CartController {
	return &CartController{Carts: carts, Respond: respond}
}

// Get retrieves the user's cart
func (cc *CartController) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := cc.Carts.Get(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		cc.Respond.Error(w, r, err)
		return
	}
	cc.Respond.JSON(w, http.StatusOK, cart)
}

// AddItem adds a product to the user's cart
func (cc *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req services.AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		cc.Respond.Error(w, r, err)
		return
	}
	cart, err := cc.Carts.AddItem(r.Context(), mux.Vars(r)["userId"], req)
	if err != nil {
		cc.Respond.Error(w, r, err)
		return
	}
	cc.Respond.JSON(w, http.StatusOK, cart)
}

// RemoveItem removes a product from the user's cart
func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cart, err := cc.Carts.RemoveItem(r.Context(), vars["userId"], vars["productId"])
	if err != nil {
		cc.Respond.Error(w, r, err)
		return
	}
	cc.Respond.JSON(w, http.StatusOK, cart)
}

// Delete removes the user's cart; a missing cart is not an error
func (cc *CartController) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := cc.Carts.Delete(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		cc.Respond.Error(w, r, err)
		return
	}
	cc.Respond.Logger.WithFields(logrus.Fields{
		"request_id":    utils.RequestID(r.Context()),
		"user_id":       mux.Vars(r)["userId"],
		"deleted_count": res.DeletedCount,
	}).Info("cart deleted")
	cc.Respond.NoContent(w)
}
