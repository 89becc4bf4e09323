package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/carbnb/apiserver/config"
	"github.com/carbnb/apiserver/internal/db"
	"github.com/carbnb/apiserver/internal/handlers"
	"github.com/carbnb/apiserver/internal/mq"
	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/internal/services"
	"github.com/carbnb/apiserver/internal/storage"
	"github.com/carbnb/apiserver/internal/store"
)

// Server wraps the HTTP server and its backing connections.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.Queue
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := OpenStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	queue, err := OpenMQ(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	notifier := notify.NewDispatcher(queue)

	carRepo := store.NewCarRepository(dbConn)
	bookingRepo := store.NewBookingRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)
	testimonialRepo := store.NewTestimonialRepository(dbConn)

	userService := services.NewUserService(userRepo, notifier)
	carService := services.NewCarService(carRepo, userRepo, blobs, notifier)
	bookingService := services.NewBookingService(bookingRepo, carRepo, userRepo, notifier)
	testimonialService := services.NewTestimonialService(testimonialRepo)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		_ = queue.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/cars", func(r chi.Router) {
		handlers.CarRouter(r, carService, authMiddleware)
	})
	router.Route("/bookings", func(r chi.Router) {
		handlers.BookingRouter(r, bookingService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/testimonials", func(r chi.Router) {
		handlers.TestimonialRouter(r, testimonialService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
	}, nil
}

// OpenStorage creates the object storage client selected by
// STORAGE_BACKEND.
func OpenStorage(ctx context.Context, cfg config.Config) (*storage.Store, error) {
	switch cfg.StorageBackend {
	case "minio":
		backend, err := storage.NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("failed to init minio storage: %w", err)
		}
		return storage.New(backend), nil
	case "gcs":
		backend, err := storage.NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("failed to init gcs storage: %w", err)
		}
		return storage.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// OpenMQ creates the message queue client selected by MQ_BACKEND.
func OpenMQ(ctx context.Context, cfg config.Config) (*mq.Queue, error) {
	switch cfg.MQBackend {
	case "rabbitmq":
		backend, err := mq.NewRabbitBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("failed to init rabbitmq: %w", err)
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("failed to init pubsub: %w", err)
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQBackend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	return s.httpServer.Close()
}
