// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/utils"
)

// Controllers groups everything the router dispatches to
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Carts    *controllers.CartController
	Health   *controllers.HealthController
}

// Options configures the outer handler
type Options struct {
	Logger    *logrus.Logger
	Respond   *utils.Responder
	Gate      *middleware.Gate
	UploadDir string // served under /uploads/ when set
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, gate *middleware.Gate) {
	router.HandleFunc("/", c.Health.Root).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.Health.Healthz).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("", c.Users.List).Methods(http.MethodGet)
	users.HandleFunc("", c.Users.Register).Methods(http.MethodPost)
	users.HandleFunc("/signin", c.Users.SignIn).Methods(http.MethodPost)
	users.HandleFunc("/{id}", c.Users.Get).Methods(http.MethodGet)
	users.HandleFunc("/{id}", c.Users.Update).Methods(http.MethodPut)
	users.HandleFunc("/{id}", c.Users.Delete).Methods(http.MethodDelete)

	// Product routes
	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", c.Products.List).Methods(http.MethodGet)
	products.HandleFunc("/review/{id}", c.Products.AddReview).Methods(http.MethodPut)
	products.HandleFunc("/{id}", c.Products.Get).Methods(http.MethodGet)

	// Admin routes
	admin := func(h http.HandlerFunc) http.Handler {
		return gate.Authenticate(gate.RequireAdmin(h))
	}
	products.Handle("", admin(c.Products.Create)).Methods(http.MethodPost)
	products.Handle("/{id}", admin(c.Products.Update)).Methods(http.MethodPut)
	products.Handle("/{id}", admin(c.Products.Delete)).Methods(http.MethodDelete)

	// Cart routes
	cart := api.PathPrefix("/cart").Subrouter()
	cart.HandleFunc("/{userId}", c.Carts.Get).Methods(http.MethodGet)
	cart.HandleFunc("/{userId}", c.Carts.AddItem).Methods(http.MethodPost)
	cart.HandleFunc("/{userId}/{productId}", c.Carts.RemoveItem).Methods(http.MethodPut)
	cart.HandleFunc("/{userId}", c.Carts.Delete).Methods(http.MethodDelete)
}

// NewHandler builds the router and wraps it with the cross-cutting
// middleware. CORS sits outside the router so preflight requests never hit
// method matching.
func NewHandler(c Controllers, opts Options) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c, opts.Gate)

	if opts.UploadDir != "" {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))),
		).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts.Respond.JSON(w, http.StatusNotFound, utils.ErrorResponse{Message: "route not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts.Respond.JSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse{Message: "method not allowed"})
	})

	var h http.Handler = router
	h = middleware.Recover(opts.Respond)(h)
	h = middleware.Logger(opts.Logger)(h)
	h = middleware.RequestID(h)
	return middleware.CORS(h)
}
