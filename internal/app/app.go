package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/objectstore/azstore"
	"todoTracker/internal/objectstore/s3store"
	"todoTracker/internal/repository/todo/inmemory"
	"todoTracker/internal/repository/todo/postgres"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "todo-api"

type App struct {
	config        *config.Config
	server        *http.Server
	router        *chi.Mux
	repository    service.TodoRepository
	todoService   *service.TodoService
	uploadService *service.UploadService
	shutdowns     []func() // run in reverse order on shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(logger.Options{
		Development: a.config.Logging.Development,
		File:        a.config.Logging.File,
		MaxSizeMB:   a.config.Logging.MaxSizeMB,
		MaxBackups:  a.config.Logging.MaxBackups,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	repoType, err := a.initRepository(ctx)
	if err != nil {
		a.Shutdown()
		return err
	}
	a.todoService = service.NewTodoService(a.repository, repoType)

	if err := a.initUploads(); err != nil {
		a.Shutdown()
		return err
	}

	a.initRouter()

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, serviceName),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	logger.Info("App: initialized",
		zap.String("repository", string(repoType)),
		zap.String("storage", a.config.Storage.Backend),
		zap.Bool("uploads", a.uploadService != nil))
	return nil
}

func (a *App) initRepository(ctx context.Context) (service.RepoType, error) {
	switch a.config.Repository.Type {
	case "inmemory":
		a.repository = inmemory.NewTodoStorage()
		return service.InMemoryType, nil
	default:
		if err := postgres.EnsureSchema(ctx, a.config.Database); err != nil {
			return "", fmt.Errorf("ensure schema: %w", err)
		}
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return "", fmt.Errorf("connect to database: %w", err)
		}
		a.repository = storage
		a.shutdowns = append(a.shutdowns, storage.Close)
		return service.DBType, nil
	}
}

func (a *App) initUploads() error {
	cfg := a.config.Storage

	var (
		store     service.ObjectStore
		container string
	)
	switch cfg.Backend {
	case "azblob":
		if cfg.AzureConnectionString == "" {
			logger.Warn("App: azure connection string not set, uploads disabled")
			return nil
		}
		azStore, err := azstore.New(cfg.AzureConnectionString, cfg.Timeout)
		if err != nil {
			return fmt.Errorf("init azure store: %w", err)
		}
		store, container = azStore, cfg.Bucket
	default:
		s3, err := s3store.New(s3store.Options{
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return fmt.Errorf("init s3 store: %w", err)
		}
		store, container = s3, cfg.Bucket
	}

	if container == "" {
		logger.Warn("App: storage bucket is empty, uploads will fail", zap.String("backend", cfg.Backend))
	}
	a.uploadService = service.NewUploadService(store, container)
	return nil
}

func (a *App) initRouter() {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))

	var uploads *handlers.UploadHandler
	if a.uploadService != nil {
		uploads = handlers.NewUploadHandler(a.uploadService, a.config.Storage.MaxUploadSize)
	}
	handlers.Register(r, handlers.NewTodoHandler(a.todoService), uploads)

	a.router = r
}

// Handler exposes the instrumented router.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Shutdown()
	return err
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
