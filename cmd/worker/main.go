package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"kudos-dispatch/internal/config"
	pgRepo "kudos-dispatch/internal/infra/adapter/persistence/postgres"
	"kudos-dispatch/internal/infra/db"
	"kudos-dispatch/internal/infra/sender"
	workerPkg "kudos-dispatch/internal/infra/worker"
	"kudos-dispatch/internal/observability/logging"
	"kudos-dispatch/internal/usecase/dispatch"
	"kudos-dispatch/internal/usecase/stats"
	pkgconfig "kudos-dispatch/pkg/config"
)

const (
	dispatchJob = "dispatch"
	reminderJob = "reminders"
)

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM notification_queue LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	if os.Getenv("LOG_FORMAT") == "text" {
		logger = logging.NewTextLogger()
	}
	slog.SetDefault(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	waitForMigrations(logger, database)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("dispatch_schedule", workerConfig.DispatchSchedule),
		slog.String("reminder_schedule", workerConfig.ReminderSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("batch_size", workerConfig.BatchSize),
		slog.Duration("dispatch_timeout", workerConfig.DispatchTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

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
			BatchSize: workerConfig.BatchSize,
			AppURL:    pkgconfig.GetEnvString("APP_URL", channelsCfg.App.URL),
		},
	)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, database, notifRepo, slackSender, emailSender)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(ctx, logger, svc, notifRepo, workerConfig, workerMetrics, healthServer)
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
// credential is downgraded to a no-op sender with a warning, so one missing
// secret never takes the whole worker down.
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

// startCronWorker starts the cron scheduler with the dispatch and reminder
// jobs and blocks until the context ends.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	svc dispatch.Service,
	repo *pgRepo.NotificationRepo,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.DispatchSchedule, func() {
		runDispatchJob(logger, svc, cfg, metrics)
	}); err != nil {
		logger.Error("failed to add dispatch job", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := c.AddFunc(cfg.ReminderSchedule, func() {
		runReminderJob(logger, repo, cfg, metrics)
	}); err != nil {
		logger.Error("failed to add reminder job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("dispatch_schedule", cfg.DispatchSchedule),
		slog.String("reminder_schedule", cfg.ReminderSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("cron jobs did not finish before shutdown deadline")
	}
	logger.Info("worker stopped")
}

// runDispatchJob executes one dispatch tick with timeout and error handling.
func runDispatchJob(logger *slog.Logger, svc dispatch.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DispatchTimeout)
	defer cancel()

	summary, err := svc.ProcessBatch(ctx)
	if err != nil {
		logger.Error("dispatch tick failed", slog.Any("error", err))
		metrics.RecordJobRun(dispatchJob, "failure")
		metrics.RecordJobDuration(dispatchJob, time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun(dispatchJob, "success")
	metrics.RecordJobDuration(dispatchJob, time.Since(startTime).Seconds())
	metrics.RecordNotificationsProcessed(summary.Processed)
	metrics.RecordLastSuccess(dispatchJob)

	if summary.Processed > 0 {
		logger.Info("dispatch tick completed",
			slog.Int("processed", summary.Processed),
			slog.Int("sent", summary.Sent),
			slog.Int("failed", summary.Failed),
			slog.Duration("duration", time.Since(startTime)))
	}
}

// runReminderJob triggers the weekly reminder fan-out procedure.
func runReminderJob(logger *slog.Logger, repo *pgRepo.NotificationRepo, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DispatchTimeout)
	defer cancel()

	if err := repo.ScheduleWeeklyReminders(ctx); err != nil {
		logger.Error("reminder scheduling failed", slog.Any("error", err))
		metrics.RecordJobRun(reminderJob, "failure")
		metrics.RecordJobDuration(reminderJob, time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun(reminderJob, "success")
	metrics.RecordJobDuration(reminderJob, time.Since(startTime).Seconds())
	metrics.RecordLastSuccess(reminderJob)
	logger.Info("weekly reminders scheduled", slog.Duration("duration", time.Since(startTime)))
}
