package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// UserController handles user-related requests
type UserController struct {
	Users   *services.UserService
	Respond *utils.Responder
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService, respond *utils.Responder) *UserController {
	return &UserController{Users: users, Respond: respond}
}

// List returns every account
func (uc *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := uc.Users.List(r.Context())
	if err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	uc.Respond.JSON(w, http.StatusOK, users)
}

// Get returns one account
func (uc *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := uc.Users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	uc.Respond.JSON(w, http.StatusOK, user)
}

// Register handles user registration and answers with a token
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	result, err := uc.Users.Register(r.Context(), reg)
	if err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	uc.Respond.JSON(w, http.StatusOK, result)
}

// SignIn handles user authentication
func (uc *UserController) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	result, err := uc.Users.SignIn(r.Context(), creds)
	if err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	uc.Respond.JSON(w, http.StatusOK, result)
}

// Update changes the provided profile fields
func (uc *UserController) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	user, err := uc.Users.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	uc.Respond.JSON(w, http.StatusOK, user)
}

// Delete removes an account
func (uc *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := uc.Users.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		uc.Respond.Error(w, r, err)
		return
	}
	uc.Respond.Logger.WithFields(logrus.Fields{
		"request_id": utils.RequestID(r.Context()),
		"user_id":    deleted.ID.Hex(),
	}).Info("user deleted")
	uc.Respond.NoContent(w)
}
