package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	pg "kudos-dispatch/internal/infra/adapter/persistence/postgres"
	"kudos-dispatch/internal/repository"
)

func TestStatsRepo_GetWeeklyStats(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := &repository.WeeklyTotals{
		UserID: "u-1", Name: "Alice", KudosReceived: 3, KudosGiven: 2, TotalPoints: 25,
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM kudos_stats_weekly")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "name", "kudos_received", "kudos_given", "total_points",
		}).AddRow(want.UserID, want.Name, want.KudosReceived, want.KudosGiven, want.TotalPoints))

	repo := pg.NewStatsRepo(db)
	got, err := repo.GetWeeklyStats(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetWeeklyStats err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// A user with no activity this week has no aggregate row; that is reported
// as nil, not as an error.
func TestStatsRepo_GetWeeklyStats_NoActivity(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM kudos_stats_weekly")).
		WithArgs("u-idle").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "name", "kudos_received", "kudos_given", "total_points",
		}))

	repo := pg.NewStatsRepo(db)
	got, err := repo.GetWeeklyStats(context.Background(), "u-idle")
	if err != nil {
		t.Fatalf("GetWeeklyStats err=%v", err)
	}
	if got != nil {
		t.Fatalf("expected nil totals for idle user, got %+v", got)
	}
}

func TestStatsRepo_GetRankedWeeklyStats(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := []repository.WeeklyTotals{
		{UserID: "u-2", Name: "Bob", KudosReceived: 5, KudosGiven: 1, TotalPoints: 30},
		{UserID: "u-1", Name: "Alice", KudosReceived: 3, KudosGiven: 2, TotalPoints: 25},
	}

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY total_points DESC")).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "name", "kudos_received", "kudos_given", "total_points",
		}).
			AddRow("u-2", "Bob", 5, 1, 30).
			AddRow("u-1", "Alice", 3, 2, 25))

	repo := pg.NewStatsRepo(db)
	got, err := repo.GetRankedWeeklyStats(context.Background())
	if err != nil {
		t.Fatalf("GetRankedWeeklyStats err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsRepo_GetTopCategory(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM top_kudos_recipients")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"top_category"}).AddRow("Teamwork"))

	repo := pg.NewStatsRepo(db)
	got, err := repo.GetTopCategory(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetTopCategory err=%v", err)
	}
	if got != "Teamwork" {
		t.Fatalf("GetTopCategory = %q, want %q", got, "Teamwork")
	}
}

func TestStatsRepo_GetTopCategory_Missing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM top_kudos_recipients")).
		WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows([]string{"top_category"}))

	repo := pg.NewStatsRepo(db)
	got, err := repo.GetTopCategory(context.Background(), "u-2")
	if err != nil {
		t.Fatalf("GetTopCategory err=%v", err)
	}
	if got != "" {
		t.Fatalf("expected empty category for missing row, got %q", got)
	}
}
