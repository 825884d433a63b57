package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"kudos-dispatch/internal/domain/entity"
	pg "kudos-dispatch/internal/infra/adapter/persistence/postgres"
)

func notificationRows(records ...*entity.NotificationRecord) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "type", "channel", "user_id", "kudos_id",
		"message", "status", "error", "sent_at", "created_at",
	})
	for _, n := range records {
		rows.AddRow(n.ID, n.Type, n.Channel, n.UserID, n.KudosID,
			n.Message, n.Status, n.Error, n.SentAt, n.CreatedAt)
	}
	return rows
}

func TestNotificationRepo_ClaimPending(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	kudosID := "k-1"
	want := []*entity.NotificationRecord{
		{
			ID: "n-1", Type: entity.TypeKudosReceived, Channel: entity.ChannelSlack,
			UserID: "u-1", KudosID: &kudosID, Status: entity.StatusProcessing, CreatedAt: now,
		},
		{
			ID: "n-2", Type: entity.TypeWeeklyReminder, Channel: entity.ChannelEmail,
			UserID: "u-2", Status: entity.StatusProcessing, CreatedAt: now,
		},
	}

	// The claim must be a single statement: conditional UPDATE over a locked
	// selection, returning the claimed rows.
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notification_queue")).
		WithArgs(10).
		WillReturnRows(notificationRows(want...))

	repo := pg.NewNotificationRepo(db)
	got, err := repo.ClaimPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ClaimPending err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestNotificationRepo_ClaimPending_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notification_queue")).
		WithArgs(5).
		WillReturnRows(notificationRows())

	repo := pg.NewNotificationRepo(db)
	got, err := repo.ClaimPending(context.Background(), 5)
	if err != nil {
		t.Fatalf("ClaimPending err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty claim, got %d records", len(got))
	}
}

func TestNotificationRepo_MarkSent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	sentAt := time.Date(2026, 8, 24, 9, 0, 5, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_queue")).
		WithArgs("n-1", sentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewNotificationRepo(db)
	updated, err := repo.MarkSent(context.Background(), "n-1", sentAt)
	if err != nil {
		t.Fatalf("MarkSent err=%v", err)
	}
	if !updated {
		t.Fatal("MarkSent should report the record as updated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// A finalize whose guard no longer matches (record already sent, or
// reclaimed elsewhere) must be a no-op, not an error.
func TestNotificationRepo_MarkSent_GuardMiss(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_queue")).
		WithArgs("n-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewNotificationRepo(db)
	updated, err := repo.MarkSent(context.Background(), "n-1", time.Now())
	if err != nil {
		t.Fatalf("MarkSent err=%v", err)
	}
	if updated {
		t.Fatal("MarkSent must report a guard miss as not updated")
	}
}

func TestNotificationRepo_MarkFailed(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_queue")).
		WithArgs("n-2", "user not found").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewNotificationRepo(db)
	updated, err := repo.MarkFailed(context.Background(), "n-2", "user not found")
	if err != nil {
		t.Fatalf("MarkFailed err=%v", err)
	}
	if !updated {
		t.Fatal("MarkFailed should report the record as updated")
	}
}

func TestNotificationRepo_ScheduleWeeklyReminders(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("SELECT schedule_weekly_reminders()")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewNotificationRepo(db)
	if err := repo.ScheduleWeeklyReminders(context.Background()); err != nil {
		t.Fatalf("ScheduleWeeklyReminders err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestNotificationRepo_CountByStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM notification_queue")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 7).
			AddRow("sent", 120).
			AddRow("failed", 3))

	repo := pg.NewNotificationRepo(db)
	got, err := repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}

	want := map[string]int{"pending": 7, "sent": 120, "failed": 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}
