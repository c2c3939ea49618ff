package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/config"
	"github.com/Kiandes/P27-firecard/internal/database"
	"github.com/Kiandes/P27-firecard/internal/handler"
	"github.com/Kiandes/P27-firecard/internal/jobs"
	"github.com/Kiandes/P27-firecard/internal/middleware"
	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/redis"
	"github.com/Kiandes/P27-firecard/internal/repository"
	"github.com/Kiandes/P27-firecard/internal/service"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}
	cancel()
	log.Info().Msg("database connected")

	// The session survives restarts when redis is configured; without it the
	// patient simply logs in again after a restart.
	var sessionStore repository.SessionStore
	var stateStore repository.AuthStateStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")

		sessionStore = repository.NewRedisSessionStore(redisClient)
		stateStore = repository.NewRedisAuthStateStore(redisClient)
	} else {
		log.Info().Msg("no REDIS_URL configured, keeping session in memory")
		sessionStore = repository.NewMemorySessionStore()
		stateStore = repository.NewMemoryAuthStateStore()
	}

	// UI collaborators watch the session through the observer contract
	// instead of polling the store.
	sessionStore.Subscribe(func(session *model.Session) {
		if session == nil {
			log.Info().Msg("session cleared")
			return
		}
		log.Info().Str("subjectId", session.SubjectID).Msg("session updated")
	})

	exportRepo := repository.NewExportedEventRepository(db.DB)
	prefsRepo := repository.NewPreferencesRepository(db.DB)

	clock := service.SystemClock()
	sessionManager := service.NewSessionManager(cfg, stateStore, sessionStore, clock)
	gateway := service.NewGateway(sessionStore, sessionManager, cfg.Issuer())
	appointmentService := service.NewAppointmentService(gateway, sessionStore, exportRepo, prefsRepo, clock)

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)

	authHandler := handler.NewAuthHandler(sessionManager, sessionStore)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	preferencesHandler := handler.NewPreferencesHandler(prefsRepo)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/preferences", preferencesHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.Handler)
			r.Mount("/appointments", appointmentHandler.Routes())
			r.Get("/calendar", appointmentHandler.Calendar)
			r.Get("/patient", appointmentHandler.Patient)
		})
	})

	syncJob := jobs.NewCalendarSyncJob(appointmentService, sessionStore, prefsRepo, cfg.SyncInterval())
	syncJob.Start()
	defer syncJob.Stop()

	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: config.ServerReadTimeout,
		IdleTimeout: config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
