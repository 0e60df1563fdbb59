package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/reelrate/reelrate-go/internal/config"
	"github.com/reelrate/reelrate-go/internal/handler"
	"github.com/reelrate/reelrate-go/internal/middleware"
	"github.com/reelrate/reelrate-go/internal/repository"
	"github.com/reelrate/reelrate-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := repository.NewDB(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = userRepo.EnsureIndexes(ctx)
	cancel()
	if err != nil {
		slog.Error("index bootstrap failed", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionTTL)
	cookies := middleware.NewSessionCookies(cfg.IsProduction(), cfg.SessionTTL)
	authHandler := handler.NewAuthHandler(authService, cookies)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(cookies, cfg.JWTSecret, authService))
			r.Get("/profile", authHandler.HandleProfile)
			r.Put("/profile", authHandler.HandleUpdateProfile)
			r.Put("/profile/ratings", authHandler.HandleRateMovie)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	if err := db.Client().Disconnect(ctx); err != nil {
		slog.Error("database disconnect failed", "error", err)
	}

	slog.Info("server stopped")
}
