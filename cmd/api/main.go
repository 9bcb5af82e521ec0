package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon-booking-backend/config"
	_ "salon-booking-backend/docs" // Important for Swagger
	v1 "salon-booking-backend/internal/delivery/http/v1"
	"salon-booking-backend/internal/usecase"
	"salon-booking-backend/pkg/email"
	"salon-booking-backend/pkg/logger"
	"salon-booking-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Salon Booking Backend API
// @version         1.0
// @description     Receives salon booking requests and academy applications and forwards them by email.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logCloser := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	logger.Log.Info("Starting salon booking backend", "port", cfg.Port, "env", cfg.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. Setup Email Delivery
	sender := email.NewSMTPSender(cfg)
	if !sender.IsConfigured() {
		logger.Log.Warn("SMTP not fully configured - submissions will fail with a delivery error")
	}
	composer := email.NewComposer(cfg.ContactEmailTo, cfg.BusinessName)

	// 4. Setup UseCases
	submissionUC := usecase.NewSubmissionUsecase(
		validation.New(validation.WithServerChecks()),
		composer,
		sender,
	)

	// 5. Setup Router
	router, err := v1.NewRouter(v1.RouterDeps{
		SubmissionUC: submissionUC,
		HealthUC:     usecase.NewHealthUsecase(sender),
		Config:       cfg,
	})
	if err != nil {
		logger.Log.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	// 6. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
