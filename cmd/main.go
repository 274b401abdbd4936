package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/mytournaments/config"
	"github.com/Dosada05/mytournaments/controllers"
	"github.com/Dosada05/mytournaments/db"
	"github.com/Dosada05/mytournaments/handlers"
	"github.com/Dosada05/mytournaments/middleware"
	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	api "github.com/Dosada05/mytournaments/routes"
	"github.com/Dosada05/mytournaments/scheduler"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/storage"
	"github.com/Dosada05/mytournaments/views"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title MyTournaments API
// @version 1.0
// @description Games, teams, players, sponsors and tournaments.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)
	log.Info().Str("env", cfg.Environment).Int("port", cfg.ServerPort).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("application exited")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "mytournaments").Logger()
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBConnTimeout)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
		} else {
			log.Info().Msg("database connection closed")
		}
	}()
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("database connection established")

	if err := db.Migrate(dbConn, cfg.DatabaseDriver); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Файловое хранилище необязательно: без него загрузка логотипов отвечает 503.
	var uploader storage.FileUploader
	r2cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	}
	if r2cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2cfg)
		if err != nil {
			return fmt.Errorf("init Cloudflare R2 uploader: %w", err)
		}
		log.Info().Str("bucket", r2cfg.BucketName).Msg("Cloudflare R2 uploader initialized")
	} else {
		log.Warn().Msg("Cloudflare R2 is not configured, sponsor logo uploads are disabled")
	}

	hub := realtime.NewHub()
	notifiers := realtime.MultiNotifier{hub}
	if cfg.NATSURL != "" {
		nc, err := realtime.ConnectNATS(cfg.NATSURL, cfg.NATSToken)
		if err != nil {
			return fmt.Errorf("connect NATS: %w", err)
		}
		defer nc.Close()
		notifiers = append(notifiers, nc)
		log.Info().Str("url", cfg.NATSURL).Msg("NATS publisher connected")
	}

	clock := clockwork.NewRealClock()
	stores := repositories.NewStoreFactory(dbConn)

	gameService := services.NewGameService(stores, notifiers)
	teamService := services.NewTeamService(stores, notifiers)
	playerService := services.NewPlayerService(stores, notifiers)
	sponsorService := services.NewSponsorService(stores, uploader)
	tournamentService := services.NewTournamentService(stores, notifiers, clock)
	authService := services.NewAuthService(stores, cfg.JWTSecretKey, cfg.JWTTTL, clock)

	renderer, err := views.New()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	router := api.SetupRoutes(
		api.Controllers{
			Games:       controllers.NewGameController(renderer, gameService),
			Teams:       controllers.NewTeamController(renderer, teamService, gameService),
			Players:     controllers.NewPlayerController(renderer, playerService),
			Sponsors:    controllers.NewSponsorController(renderer, sponsorService),
			Tournaments: controllers.NewTournamentController(renderer, tournamentService),
			Account:     controllers.NewAccountController(renderer, authService, !cfg.IsDevelopment()),
		},
		api.Handlers{
			Games:       handlers.NewGameHandler(gameService),
			Teams:       handlers.NewTeamHandler(teamService),
			Players:     handlers.NewPlayerHandler(playerService),
			Sponsors:    handlers.NewSponsorHandler(sponsorService),
			Tournaments: handlers.NewTournamentHandler(tournamentService),
			Auth:        handlers.NewAuthHandler(authService),
			WebSocket:   handlers.NewWebSocketHandler(hub, gameService, cfg.CORSAllowedOrigins),
		},
		api.Options{
			Logger:             log.Logger,
			Auth:               middleware.NewAuthenticator(cfg.JWTSecretKey),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			Health:             pingDB(dbConn),
		},
	)

	sched, err := scheduler.New()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if _, err := sched.AddTournamentStatusJob(ctx, cfg.StatusSchedule, tournamentService); err != nil {
		return fmt.Errorf("schedule tournament status job: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     stdlog.New(log.Logger.With().Str("component", "http").Logger(), "", 0),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		// Первый прогон сразу при старте, дальше по расписанию.
		if _, err := tournamentService.UpdateStatuses(log.Logger.WithContext(gctx)); err != nil {
			log.Error().Err(err).Msg("initial tournament status update failed")
		}
		sched.Start()
		<-gctx.Done()
		return sched.Stop()
	})

	g.Go(func() error {
		log.Info().Str("address", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Dur("timeout", shutdownTimeout).Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to force close server")
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info().Msg("server shutdown complete")
		return nil
	})

	return g.Wait()
}

func pingDB(conn *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return conn.PingContext(ctx)
	}
}
