package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shelfstack/api/internal/config"
	"github.com/shelfstack/api/internal/database"
	"github.com/shelfstack/api/internal/handler"
	"github.com/shelfstack/api/internal/middleware"
	"github.com/shelfstack/api/internal/repository"
	"github.com/shelfstack/api/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.DefineSchema(ctx, db); err != nil {
		slog.Error("failed to define schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	identityService := service.NewIdentityService(userRepo, bookRepo, libraryRepo, cfg.Auth.BcryptCost)
	bookService := service.NewBookService(userRepo, bookRepo, libraryRepo)
	libraryService := service.NewLibraryService(userRepo, bookRepo, libraryRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(identityService, tokenService)
	userHandler := handler.NewUserHandler(identityService)
	bookHandler := handler.NewBookHandler(bookService)
	libraryHandler := handler.NewLibraryHandler(libraryService)
	healthHandler := handler.NewHealthHandler(db)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)

	// Legacy catalog listing (public, bare-array contract)
	mux.HandleFunc("GET /api/books", bookHandler.LegacyList)

	authMiddleware := middleware.Auth(tokenService)

	// Auth endpoints (protected)
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))

	// User endpoints
	mux.Handle("GET /v1/users", authMiddleware(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /v1/users/{id}", authMiddleware(http.HandlerFunc(userHandler.Get)))
	mux.Handle("GET /v1/users/by-username/{username}", authMiddleware(http.HandlerFunc(userHandler.GetByUsername)))
	mux.Handle("DELETE /v1/users/{id}", authMiddleware(http.HandlerFunc(userHandler.Delete)))
	mux.Handle("GET /v1/users/{id}/libraries", authMiddleware(http.HandlerFunc(libraryHandler.ListByUser)))

	// Book endpoints
	mux.Handle("POST /v1/books", authMiddleware(http.HandlerFunc(bookHandler.Create)))
	mux.Handle("GET /v1/books", authMiddleware(http.HandlerFunc(bookHandler.List)))
	mux.Handle("GET /v1/books/search", authMiddleware(http.HandlerFunc(bookHandler.Search)))
	mux.Handle("GET /v1/books/{id}", authMiddleware(http.HandlerFunc(bookHandler.Get)))
	mux.Handle("PATCH /v1/books/{id}", authMiddleware(http.HandlerFunc(bookHandler.Update)))
	mux.Handle("PUT /v1/books/{id}/owner", authMiddleware(http.HandlerFunc(bookHandler.UpdateOwner)))
	mux.Handle("DELETE /v1/books/{id}", authMiddleware(http.HandlerFunc(bookHandler.Delete)))

	// Library endpoints
	mux.Handle("POST /v1/libraries", authMiddleware(http.HandlerFunc(libraryHandler.Create)))
	mux.Handle("GET /v1/libraries", authMiddleware(http.HandlerFunc(libraryHandler.List)))
	mux.Handle("GET /v1/libraries/{id}", authMiddleware(http.HandlerFunc(libraryHandler.Get)))
	mux.Handle("GET /v1/libraries/{id}/books", authMiddleware(http.HandlerFunc(libraryHandler.Books)))
	mux.Handle("GET /v1/libraries/{id}/search", authMiddleware(http.HandlerFunc(libraryHandler.Search)))
	mux.Handle("PATCH /v1/libraries/{id}", authMiddleware(http.HandlerFunc(libraryHandler.Update)))
	mux.Handle("DELETE /v1/libraries/{id}", authMiddleware(http.HandlerFunc(libraryHandler.Delete)))
	mux.Handle("PUT /v1/libraries/{id}/books/{bookID}", authMiddleware(http.HandlerFunc(libraryHandler.AddBook)))
	mux.Handle("DELETE /v1/libraries/{id}/books/{bookID}", authMiddleware(http.HandlerFunc(libraryHandler.RemoveBook)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
