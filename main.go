package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/devapi"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/router"
	"storefront/internal/services"
	"storefront/internal/storage"
	"storefront/internal/transport"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.LogLevel)
	log.Info().Msg("Starting storefront console")

	store, closeStore, err := storage.Open(storage.Options{
		Driver:        cfg.StorageDriver,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DBUrl:         cfg.DBUrl,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	defer closeStore()

	keys := storage.NewKeys(cfg.StoragePrefix)
	ctx := context.Background()

	sessions := services.NewSessionService(store, keys,
		transport.NewLoginClient(cfg.APIBaseURL, cfg.LoginTimeout, log), log)
	sessions.Restore(ctx)

	cart := services.NewCartService(store, keys, log)
	cart.Restore(ctx)

	orders := transport.NewOrderClient(cfg.APIBaseURL, cfg.LoginTimeout, sessions, log)
	checkout := services.NewCheckoutService(cart, orders, log)

	deps := router.Dependencies{
		Sessions:    sessions,
		Cart:        cart,
		Checkout:    checkout,
		Paths:       middleware.DefaultPaths(),
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		CORSOrigins: cfg.CORSOrigins,
	}

	if cfg.DevAPI {
		directory := devapi.NewDirectory(bcrypt.DefaultCost, log)
		if err := devapi.SeedDefaults(directory); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed dev accounts")
		}
		deps.DevAPI = devapi.NewServer(directory, devapi.NewTokenIssuer(cfg.DevJWTSecret, 24*time.Hour), log)
		log.Warn().Msg("Dev login backend enabled, do not use in production")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.SetupRouter(deps, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
