package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/spotdrop/backend/internal/router"
	"github.com/anonto42/spotdrop/backend/pkg/config"
	"github.com/anonto42/spotdrop/backend/pkg/firebase"
	"github.com/anonto42/spotdrop/backend/pkg/logger"
	"github.com/anonto42/spotdrop/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		logger.New("info", false).WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize databases")
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var authClient *auth.Client
	if cfg.AuthProvider == "firebase" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize Firebase")
		}
		authClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, log)
	cleanup, err := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, authClient, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up routes")
	}
	defer cleanup()

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()
	log.WithField("port", cfg.Port).Info("Server started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Server exited")
}
