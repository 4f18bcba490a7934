package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/repositories"
	"go-storefront/routes"
	"go-storefront/services"
	"go-storefront/storage"
	"go-storefront/utils"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and the backends it owns.
type Server struct {
	httpServer *http.Server
	store      *repositories.Store
	logger     *logrus.Logger
}

// OpenStore connects the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*repositories.Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}

	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")
	return repositories.NewMongoStore(client, db, cfg.DBTimeout), nil
}

// New wires configuration, storage, services and controllers together.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	handler, err := NewHandler(ctx, cfg, store, logger)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  store,
		logger: logger,
	}, nil
}

// NewHandler builds the full HTTP handler on top of store.
func NewHandler(ctx context.Context, cfg config.Config, store *repositories.Store, logger *logrus.Logger) (http.Handler, error) {
	images, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	respond := &utils.Responder{Logger: logger, ExposeErrors: !cfg.IsProduction()}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	mailer := utils.NewMailer(cfg, logger)

	userService := services.NewUserService(store.Users, store.Carts, tokens, mailer, logger)
	productService := services.NewProductService(store.Products, images, cfg.MaxUploadSize, logger)
	cartService := services.NewCartService(store.Carts, store.Products, store.Users, logger)

	gate := middleware.NewGate(tokens, userService, respond)

	opts := routes.Options{Logger: logger, Respond: respond, Gate: gate}
	if local, ok := images.(*storage.LocalStore); ok {
		opts.UploadDir = local.Dir()
	}

	return routes.NewHandler(routes.Controllers{
		Users:    controllers.NewUserController(userService, respond),
		Products: controllers.NewProductController(productService, respond, cfg.MaxUploadSize),
		Carts:    controllers.NewCartController(cartService, respond),
		Health:   controllers.NewHealthController(store, respond),
	}, opts), nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("server is running")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.store.Close(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	if cerr := s.store.Close(shutdownCtx); cerr != nil {
		s.logger.WithError(cerr).Warn("failed to close store")
	}
	return err
}
