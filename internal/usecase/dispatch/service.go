// Package dispatch implements the notification dispatch loop: it claims a
// bounded batch of pending notifications, loads the context each one needs,
// renders a channel payload and delivers it, then finalizes every record
// with retry-safe, state-guarded writes.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/repository"
	"kudos-dispatch/internal/usecase/render"
)

// Default configuration values.
const (
	// DefaultBatchSize bounds how many pending records one invocation claims.
	DefaultBatchSize = 10

	// DefaultEmailPacing separates consecutive email sends within a batch
	// to respect the mail provider's throttling.
	DefaultEmailPacing = 1 * time.Second
)

// SlackSender delivers one rendered Slack message per call.
type SlackSender interface {
	Send(ctx context.Context, msg *render.SlackMessage) error
}

// EmailSender delivers one rendered email per call.
type EmailSender interface {
	Send(ctx context.Context, to string, content *render.EmailContent) error
}

// StatsProvider computes a user's weekly standing for weekly_reminder
// notifications.
type StatsProvider interface {
	WeeklyStats(ctx context.Context, userID string) (*entity.WeeklyStats, error)
}

// Config carries the dispatch loop's tunables, injected at construction.
type Config struct {
	// BatchSize is the maximum number of records claimed per invocation.
	BatchSize int

	// AppURL is the public base URL of the kudos web app, passed through
	// to the rendering engine for deep links.
	AppURL string

	// EmailPacing is the fixed delay between consecutive email sends in
	// one batch. Slack sends are not paced.
	EmailPacing time.Duration
}

// Summary reports what one invocation did. Per-record failures are counted,
// never propagated; only a claim-step failure surfaces as an error.
type Summary struct {
	Processed int
	Sent      int
	Failed    int
}

// Service drains a bounded slice of the pending notification queue per
// invocation, with per-item isolation so one failure never blocks or
// corrupts the others.
type Service interface {
	// ProcessBatch claims up to Config.BatchSize pending notifications and
	// processes them sequentially in claim order. An empty claim returns
	// a zero Summary and no error. The returned error is non-nil only
	// when the claim step itself failed, in which case nothing was
	// mutated and the invocation is safe to retry.
	ProcessBatch(ctx context.Context) (Summary, error)
}

type service struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	kudos         repository.KudosRepository
	stats         StatsProvider
	slack         SlackSender
	email         EmailSender
	cfg           Config

	// sleep and now are injection points for the pacing tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewService creates the dispatch loop with its collaborators. Zero-valued
// Config fields fall back to the package defaults.
func NewService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	kudos repository.KudosRepository,
	stats StatsProvider,
	slack SlackSender,
	email EmailSender,
	cfg Config,
) Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.EmailPacing <= 0 {
		cfg.EmailPacing = DefaultEmailPacing
	}

	return &service{
		notifications: notifications,
		users:         users,
		kudos:         kudos,
		stats:         stats,
		slack:         slack,
		email:         email,
		cfg:           cfg,
		sleep:         sleepContext,
		now:           time.Now,
	}
}

// ProcessBatch implements Service.ProcessBatch.
func (s *service) ProcessBatch(ctx context.Context) (Summary, error) {
	requestID := uuid.New().String()

	claimed, err := s.notifications.ClaimPending(ctx, s.cfg.BatchSize)
	if err != nil {
		RecordClaimFailure()
		slog.Error("failed to claim pending notifications",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return Summary{}, fmt.Errorf("claim pending notifications: %w", err)
	}

	RecordBatchClaimed(len(claimed))
	if len(claimed) == 0 {
		slog.Debug("no pending notifications to process",
			slog.String("request_id", requestID))
		return Summary{}, nil
	}

	slog.Info("processing claimed notifications",
		slog.String("request_id", requestID),
		slog.Int("claimed", len(claimed)))

	var summary Summary
	// Tracks whether an email already went out in this batch; the pacing
	// delay applies only between successive email sends, not before the
	// first one.
	mailSent := false

	for _, n := range claimed {
		summary.Processed++
		startTime := s.now()

		err := s.deliver(ctx, n, &mailSent)
		duration := s.now().Sub(startTime)

		if err != nil {
			summary.Failed++
			RecordFailure(string(n.Channel), duration)
			slog.Warn("notification delivery failed",
				slog.String("request_id", requestID),
				slog.String("notification_id", n.ID),
				slog.String("type", string(n.Type)),
				slog.String("channel", string(n.Channel)),
				slog.Any("error", err))
			s.finalizeFailed(ctx, requestID, n.ID, err)
			continue
		}

		summary.Sent++
		RecordSuccess(string(n.Channel), duration)
		slog.Info("notification delivered",
			slog.String("request_id", requestID),
			slog.String("notification_id", n.ID),
			slog.String("type", string(n.Type)),
			slog.String("channel", string(n.Channel)),
			slog.Duration("send_duration", duration))
		s.finalizeSent(ctx, requestID, n.ID)
	}

	return summary, nil
}

// deliver runs the per-record pipeline: context loads, render, send.
// Every error it returns is recorded on the individual record; nothing
// escapes to the invocation level.
func (s *service) deliver(ctx context.Context, n *entity.NotificationRecord, mailSent *bool) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid notification record: %w", err)
	}

	user, err := s.users.GetUser(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	settings, err := s.users.GetSettings(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	var kudosCtx *entity.KudosContext
	if n.KudosID != nil {
		kudosCtx, err = s.kudos.GetKudosWithContext(ctx, *n.KudosID)
		if err != nil {
			return fmt.Errorf("load kudos: %w", err)
		}
	}

	var weeklyStats *entity.WeeklyStats
	if n.Type == entity.TypeWeeklyReminder {
		weeklyStats, err = s.stats.WeeklyStats(ctx, n.UserID)
		if err != nil {
			return fmt.Errorf("load weekly stats: %w", err)
		}
	}

	renderCfg := render.Config{AppURL: s.cfg.AppURL}

	switch n.Channel {
	case entity.ChannelEmail:
		content, err := render.Email(n, user, kudosCtx, weeklyStats, renderCfg)
		if err != nil {
			return fmt.Errorf("render email: %w", err)
		}
		if *mailSent {
			RecordPacingWait(s.cfg.EmailPacing)
			if err := s.sleep(ctx, s.cfg.EmailPacing); err != nil {
				return fmt.Errorf("email pacing: %w", err)
			}
		}
		if err := s.email.Send(ctx, user.Email, content); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		*mailSent = true
		return nil

	case entity.ChannelSlack:
		if settings.SlackUserID == nil || *settings.SlackUserID == "" {
			return ErrNoSlackIdentity
		}
		msg, err := render.Slack(n, kudosCtx, weeklyStats, *settings.SlackUserID, renderCfg)
		if err != nil {
			return fmt.Errorf("render slack message: %w", err)
		}
		if err := s.slack.Send(ctx, msg); err != nil {
			return fmt.Errorf("send slack message: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedChannel, n.Channel)
	}
}

// finalizeSent marks a record sent. A guard miss (the record is no longer
// in processing) means another actor finalized or reclaimed it; the write
// becomes a logged no-op rather than an error or a double-send.
func (s *service) finalizeSent(ctx context.Context, requestID, id string) {
	updated, err := s.notifications.MarkSent(ctx, id, s.now())
	if err != nil {
		slog.Error("failed to finalize notification as sent",
			slog.String("request_id", requestID),
			slog.String("notification_id", id),
			slog.Any("error", err))
		return
	}
	if !updated {
		slog.Warn("notification no longer in processing, sent finalization skipped",
			slog.String("request_id", requestID),
			slog.String("notification_id", id))
	}
}

// finalizeFailed marks a record failed with the failure description,
// under the same processing guard as finalizeSent.
func (s *service) finalizeFailed(ctx context.Context, requestID, id string, cause error) {
	updated, err := s.notifications.MarkFailed(ctx, id, cause.Error())
	if err != nil {
		slog.Error("failed to finalize notification as failed",
			slog.String("request_id", requestID),
			slog.String("notification_id", id),
			slog.Any("error", err))
		return
	}
	if !updated {
		slog.Warn("notification no longer in processing, failed finalization skipped",
			slog.String("request_id", requestID),
			slog.String("notification_id", id))
	}
}

// sleepContext sleeps for d unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
