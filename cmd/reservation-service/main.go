package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/config"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	reservationHttp "github.com/vasiliy-maslov/equipment-reservations/internal/handler/http"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
	"github.com/vasiliy-maslov/equipment-reservations/internal/seed"
	"github.com/vasiliy-maslov/equipment-reservations/internal/stats"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

func setupLogger(cfg config.LogConfig, service string) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", service).Logger()
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.Log, cfg.App.Name)

	log.Info().
		Str("port", cfg.App.Port).
		Str("db_host", cfg.Postgres.Host).
		Str("db_name", cfg.Postgres.DBName).
		Bool("allow_past_dates", cfg.Reservations.AllowPastDates).
		Msg("Reservation service starting...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	pg, err := db.New(ctx, cfg.Postgres)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := pg.Migrate(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	equipmentRepository := equipment.NewRepository(pg.SQL)
	userRepository := user.NewRepository(pg.SQL)
	reservationRepository := reservation.NewRepository(pg.Pool)

	if cfg.SeedDemoData {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := seed.NewLoader(userRepository, equipmentRepository, reservationRepository).Load(seedCtx)
		seedCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load demo data")
		}
	}

	equipmentSvc := equipment.NewService(equipmentRepository)
	userSvc := user.NewService(userRepository)
	reservationSvc := reservation.NewService(reservationRepository, userSvc, equipmentSvc, reservation.Options{
		AllowPastDates:  cfg.Reservations.AllowPastDates,
		MaxSaveAttempts: cfg.Reservations.MaxSaveAttempts,
	})
	statsSvc := stats.NewService(reservationRepository, equipmentSvc, userSvc)

	router := reservationHttp.NewRouter(reservationHttp.Handlers{
		Equipment:    reservationHttp.NewEquipmentHandler(equipmentSvc),
		Users:        reservationHttp.NewUserHandler(userSvc),
		Reservations: reservationHttp.NewReservationHandler(reservationSvc),
		Stats:        reservationHttp.NewStatsHandler(statsSvc),
	}, cfg.App.StaticDir)

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

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Reservation service stopped gracefully.")
}
