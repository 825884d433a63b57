package repository

import (
	"context"
	"time"

	"kudos-dispatch/internal/domain/entity"
)

// NotificationRepository is the data-layer contract for the notification queue.
//
// The queue table is the only shared mutable resource in the pipeline, so
// every mutation goes through a conditional, state-guarded update: claiming
// moves pending rows to processing, finalizing moves processing rows to a
// terminal state.
type NotificationRepository interface {
	// ClaimPending atomically claims up to batchSize pending notifications:
	// it transitions them to processing and returns exactly the claimed set.
	//
	// The claim must be a single atomic operation at the database so that
	// concurrent invocations never claim the same record. Implementations
	// must not do a read-then-write from the application side.
	ClaimPending(ctx context.Context, batchSize int) ([]*entity.NotificationRecord, error)

	// MarkSent transitions a claimed record to sent, records sentAt and
	// clears any previous error. The update is conditioned on the record
	// still being in processing; if the guard does not match, MarkSent
	// returns (false, nil) and the record is left untouched.
	MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error)

	// MarkFailed transitions a claimed record to failed and stores the
	// failure description. Guarded the same way as MarkSent.
	MarkFailed(ctx context.Context, id string, errMsg string) (bool, error)

	// ScheduleWeeklyReminders invokes the database procedure that enqueues
	// weekly_reminder rows for every opted-in user. The procedure owns the
	// selection logic; this call only triggers it.
	ScheduleWeeklyReminders(ctx context.Context) error
}

// QueueInspector reads aggregate queue state for monitoring. It is separate
// from NotificationRepository because consumers of one rarely need the other.
type QueueInspector interface {
	// CountByStatus returns the number of queue rows per status value.
	// Statuses with no rows are absent from the map.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// UserRepository loads recipient profiles and delivery preferences.
// Both lookups return entity.ErrNotFound when no row exists; the dispatcher
// converts that into a per-record failure.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*entity.UserContext, error)
	GetSettings(ctx context.Context, userID string) (*entity.Settings, error)
}

// KudosRepository loads the joined kudos context referenced by a notification.
type KudosRepository interface {
	// GetKudosWithContext returns the kudos event with its giver, category
	// and recipient list joined in. Returns entity.ErrNotFound when the
	// kudos row does not exist.
	GetKudosWithContext(ctx context.Context, kudosID string) (*entity.KudosContext, error)
}

// WeeklyTotals is one row of the per-user weekly aggregate view.
type WeeklyTotals struct {
	UserID        string
	Name          string
	KudosReceived int
	KudosGiven    int
	TotalPoints   int
}

// StatsRepository reads the precomputed aggregate views backing the
// weekly_reminder stats. All three reads are tolerant of missing rows.
type StatsRepository interface {
	// GetWeeklyStats returns the user's weekly totals, or nil (not an
	// error) when the user has no activity this week.
	GetWeeklyStats(ctx context.Context, userID string) (*WeeklyTotals, error)

	// GetRankedWeeklyStats returns all weekly totals ordered by total
	// points descending. Callers derive rank from position in this slice.
	GetRankedWeeklyStats(ctx context.Context) ([]WeeklyTotals, error)

	// GetTopCategory returns the user's most active category label, or
	// "" when the top-category view has no row for the user.
	GetTopCategory(ctx context.Context, userID string) (string, error)
}
