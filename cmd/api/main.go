package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"kudos-dispatch/internal/config"
	hhttp "kudos-dispatch/internal/handler/http"
	"kudos-dispatch/internal/handler/http/functions"
	"kudos-dispatch/internal/handler/http/middleware"
	"kudos-dispatch/internal/handler/http/requestid"
	pgRepo "kudos-dispatch/internal/infra/adapter/persistence/postgres"
	"kudos-dispatch/internal/infra/db"
	"kudos-dispatch/internal/infra/sender"
	"kudos-dispatch/internal/observability/logging"
	"kudos-dispatch/internal/observability/metrics"
	"kudos-dispatch/internal/usecase/dispatch"
	"kudos-dispatch/internal/usecase/stats"
	pkgconfig "kudos-dispatch/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	serviceToken := validateServiceToken(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	handler := setupHandler(logger, database, serviceToken)
	runServer(logger, database, handler)
}

// validateServiceToken requires a sufficiently long SERVICE_TOKEN at startup
// so the function endpoints can never come up unguarded.
func validateServiceToken(logger *slog.Logger) string {
	token := os.Getenv("SERVICE_TOKEN")
	if token == "" {
		logger.Error("SERVICE_TOKEN must be set")
		os.Exit(1)
	}
	if len(token) < 32 {
		logger.Error("SERVICE_TOKEN must be at least 32 characters")
		os.Exit(1)
	}
	return token
}

// initDatabase opens the database connection and applies migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// loadChannelsConfig loads channel settings from the YAML file pointed to by
// CHANNELS_CONFIG, falling back to the built-in defaults when unset.
func loadChannelsConfig(logger *slog.Logger) *config.ChannelsConfig {
	path := os.Getenv("CHANNELS_CONFIG")
	if path == "" {
		logger.Info("CHANNELS_CONFIG not set, using default channel configuration")
		return config.DefaultChannelsConfig()
	}
	cfg, err := config.LoadChannelsConfig(path)
	if err != nil {
		logger.Error("failed to load channel configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("channel configuration loaded", slog.String("path", path))
	return cfg
}

// buildSenders constructs the delivery backends. A channel without its
// credential is downgraded to a no-op sender with a warning.
func buildSenders(logger *slog.Logger, cfg *config.ChannelsConfig) (dispatch.SlackSender, dispatch.EmailSender) {
	var slackSender dispatch.SlackSender
	botToken := os.Getenv("SLACK_BOT_TOKEN")
	if cfg.Channels.Slack.Enabled && botToken != "" {
		slackSender = sender.NewSlackSender(sender.SlackConfig{
			Enabled:  true,
			BotToken: botToken,
			APIURL:   cfg.Channels.Slack.APIURL,
			Timeout:  cfg.SlackTimeout(10 * time.Second),
		})
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		if cfg.Channels.Slack.Enabled {
			logger.Warn("SLACK_BOT_TOKEN not set, Slack channel disabled")
		} else {
			logger.Info("Slack channel disabled")
		}
		slackSender = sender.NewNoOpSlackSender()
	}

	var emailSender dispatch.EmailSender
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if cfg.Channels.Email.Enabled && apiKey != "" {
		emailSender = sender.NewSendGridSender(sender.SendGridConfig{
			Enabled:   true,
			APIKey:    apiKey,
			APIURL:    cfg.Channels.Email.APIURL,
			FromEmail: cfg.Channels.Email.FromEmail,
			FromName:  cfg.Channels.Email.FromName,
			Timeout:   cfg.EmailTimeout(10 * time.Second),
		})
		logger.Info("email channel initialized", slog.String("status", "enabled"))
	} else {
		if cfg.Channels.Email.Enabled {
			logger.Warn("SENDGRID_API_KEY not set, email channel disabled")
		} else {
			logger.Info("email channel disabled")
		}
		emailSender = sender.NewNoOpEmailSender()
	}

	return slackSender, emailSender
}

// setupHandler builds the route table and middleware chain.
func setupHandler(logger *slog.Logger, database *sql.DB, serviceToken string) http.Handler {
	channelsCfg := loadChannelsConfig(logger)
	slackSender, emailSender := buildSenders(logger, channelsCfg)

	notifRepo := pgRepo.NewNotificationRepo(database)
	svc := dispatch.NewService(
		notifRepo,
		pgRepo.NewUserRepo(database),
		pgRepo.NewKudosRepo(database),
		stats.NewAggregator(pgRepo.NewStatsRepo(database)),
		slackSender,
		emailSender,
		dispatch.Config{
			BatchSize: pkgconfig.GetEnvInt("DISPATCH_BATCH_SIZE", dispatch.DefaultBatchSize),
			AppURL:    pkgconfig.GetEnvString("APP_URL", channelsCfg.App.URL),
		},
	)

	mux := http.NewServeMux()
	functions.Register(mux, svc, notifRepo, serviceToken)
	mux.Handle("GET /healthz", &hhttp.HealthHandler{DB: database, Version: getVersion()})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Middleware chain, innermost to outermost: metrics, request id, CORS.
	// CORS sits outermost so preflight requests never touch authentication.
	var handler http.Handler = mux
	handler = middleware.Metrics(handler)
	handler = requestid.Middleware(handler)
	handler = middleware.CORS(handler)

	return handler
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, database *sql.DB, handler http.Handler) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := pkgconfig.GetEnvString("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				metrics.UpdateDBStats(database.Stats())
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second))
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
