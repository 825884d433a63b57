package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/observability/metrics"
	"kudos-dispatch/internal/repository"
)

type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns the postgres-backed queue repository. The
// concrete type satisfies both repository.NotificationRepository and
// repository.QueueInspector.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var (
	_ repository.NotificationRepository = (*NotificationRepo)(nil)
	_ repository.QueueInspector         = (*NotificationRepo)(nil)
)

// ClaimPending claims up to batchSize pending notifications in one statement.
//
// The inner SELECT uses FOR UPDATE SKIP LOCKED so concurrent invocations
// racing on the same queue pick disjoint row sets; the surrounding UPDATE
// transitions them to processing and RETURNING hands back exactly the
// claimed rows. Doing this as a single statement is what makes the claim
// atomic with respect to other invocations.
func (repo *NotificationRepo) ClaimPending(ctx context.Context, batchSize int) ([]*entity.NotificationRecord, error) {
	const query = `
UPDATE notification_queue
SET status = 'processing'
WHERE id IN (
    SELECT id
    FROM notification_queue
    WHERE status = 'pending'
    ORDER BY created_at
    LIMIT $1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, type, channel, user_id, kudos_id, message, status, error, sent_at, created_at`

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, batchSize)
	metrics.RecordDBQuery("claim_pending", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("ClaimPending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	claimed := make([]*entity.NotificationRecord, 0, batchSize)
	for rows.Next() {
		var n entity.NotificationRecord
		if err := rows.Scan(&n.ID, &n.Type, &n.Channel, &n.UserID, &n.KudosID,
			&n.Message, &n.Status, &n.Error, &n.SentAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("ClaimPending: Scan: %w", err)
		}
		claimed = append(claimed, &n)
	}
	return claimed, rows.Err()
}

// MarkSent finalizes a claimed record as sent. The status guard means a
// record that is no longer in processing (already finalized, or reclaimed
// by a reconciliation sweep) is left alone and (false, nil) is returned.
func (repo *NotificationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	const query = `
UPDATE notification_queue
SET status = 'sent', sent_at = $2, error = NULL
WHERE id = $1 AND status = 'processing'`

	result, err := repo.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return false, fmt.Errorf("MarkSent: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkSent: RowsAffected: %w", err)
	}
	return affected > 0, nil
}

// MarkFailed finalizes a claimed record as failed, recording the failure
// description. Guarded on processing the same way as MarkSent.
func (repo *NotificationRepo) MarkFailed(ctx context.Context, id string, errMsg string) (bool, error) {
	const query = `
UPDATE notification_queue
SET status = 'failed', error = $2
WHERE id = $1 AND status = 'processing'`

	result, err := repo.db.ExecContext(ctx, query, id, errMsg)
	if err != nil {
		return false, fmt.Errorf("MarkFailed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkFailed: RowsAffected: %w", err)
	}
	return affected > 0, nil
}

// CountByStatus returns the number of queue rows per status value.
func (repo *NotificationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM notification_queue GROUP BY status`

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("CountByStatus: Scan: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ScheduleWeeklyReminders calls the database procedure that enqueues
// weekly_reminder rows for opted-in users.
func (repo *NotificationRepo) ScheduleWeeklyReminders(ctx context.Context) error {
	const query = `SELECT schedule_weekly_reminders()`
	if _, err := repo.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ScheduleWeeklyReminders: %w", err)
	}
	return nil
}
