package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voicescore/voicescore/internal/api"
	"github.com/voicescore/voicescore/internal/api/handler"
	"github.com/voicescore/voicescore/internal/auth"
	"github.com/voicescore/voicescore/internal/command"
	"github.com/voicescore/voicescore/internal/config"
	"github.com/voicescore/voicescore/internal/janitor"
	"github.com/voicescore/voicescore/internal/ledger"
	"github.com/voicescore/voicescore/internal/store"
	"github.com/voicescore/voicescore/internal/stream"
	"github.com/voicescore/voicescore/internal/team"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		db       *store.DB
		teamRepo team.Repository
		userRepo auth.UserRepository
	)
	if cfg.DatabaseURL != "" {
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		teamRepo = team.NewRepository(db.Pool())
		userRepo = auth.NewRepository(db.Pool())
	} else {
		slog.Warn("DATABASE_URL not set; using in-memory storage, data will not survive restarts")
		teamRepo = team.NewMemoryRepository()
		userRepo = auth.NewMemoryRepository()
	}

	lexicon := command.DefaultLexicon()
	if cfg.LexiconPath != "" {
		lexicon, err = command.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			slog.Error("failed to load command lexicon", "error", err, "path", cfg.LexiconPath)
			os.Exit(1)
		}
	}

	var verifier *auth.TelegramVerifier
	if cfg.TelegramBotToken != "" {
		verifier = auth.NewTelegramVerifier(cfg.TelegramBotToken, 24*time.Hour)
	} else {
		slog.Warn("TELEGRAM_BOT_TOKEN not set; telegram sign-in disabled")
	}

	authService := auth.NewService(userRepo, verifier, cfg.BcryptCost)
	teamService := team.NewService(teamRepo)
	broadcaster := stream.NewBroadcaster()
	interpreter := command.New(lexicon)
	led := ledger.New(teamRepo)

	sweeper := janitor.New(
		teamRepo,
		time.Duration(cfg.CleanupIntervalMin)*time.Minute,
		time.Duration(cfg.CleanupMaxAgeHours)*time.Hour,
	)
	go sweeper.Start(ctx)

	var pinger handler.DBPinger
	if db != nil {
		pinger = db
	}

	router := api.NewRouter(api.RouterDeps{
		DBPinger:        pinger,
		Version:         cfg.Version,
		AuthService:     authService,
		TeamRepo:        teamRepo,
		TeamService:     teamService,
		Interpreter:     interpreter,
		Ledger:          led,
		Broadcaster:     broadcaster,
		TelegramBotName: cfg.TelegramBotName,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting voicescore server", "port", cfg.Port, "version", cfg.Version, "locale", cfg.Locale)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
