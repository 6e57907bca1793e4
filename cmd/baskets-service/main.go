package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
	"github.com/vasiliy-maslov/baskets-service/internal/config"
	"github.com/vasiliy-maslov/baskets-service/internal/db"
	basketsHttp "github.com/vasiliy-maslov/baskets-service/internal/handler/http"
	"github.com/vasiliy-maslov/baskets-service/internal/notify"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "baskets-service").Logger()

	log.Info().Msg("Baskets service starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	repo := baskets.NewRepository(dbConn.Pool)
	catalogSvc := baskets.NewCatalogService(repo)
	deliverySvc := baskets.NewDeliveryService(repo)
	orderSvc := baskets.NewOrderService(repo)
	exportSvc := baskets.NewExportService(repo)
	notifier := notify.NewLogNotifier()

	catalogHandler := basketsHttp.NewCatalogHandler(catalogSvc, notifier)
	deliveryHandler := basketsHttp.NewDeliveryHandler(deliverySvc, catalogSvc, notifier)
	orderHandler := basketsHttp.NewOrderHandler(orderSvc)
	exportHandler := basketsHttp.NewExportHandler(exportSvc)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	router.Route("/api", func(r chi.Router) {
		deliveryHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			catalogHandler.RegisterAdminRoutes(r)
			deliveryHandler.RegisterAdminRoutes(r)
			orderHandler.RegisterAdminRoutes(r)
			exportHandler.RegisterAdminRoutes(r)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	log.Info().Msg("Baskets service stopped gracefully")
}
