package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"kudos-dispatch/internal/repository"
)

type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) repository.StatsRepository {
	return &StatsRepo{db: db}
}

// GetWeeklyStats returns the user's row from the weekly aggregate view,
// or nil when the user has no activity this week. Absence is expected and
// is not an error.
func (repo *StatsRepo) GetWeeklyStats(ctx context.Context, userID string) (*repository.WeeklyTotals, error) {
	const query = `
SELECT user_id, name, kudos_received, kudos_given, total_points
FROM kudos_stats_weekly
WHERE user_id = $1
LIMIT 1`
	var totals repository.WeeklyTotals
	err := repo.db.QueryRowContext(ctx, query, userID).
		Scan(&totals.UserID, &totals.Name, &totals.KudosReceived, &totals.KudosGiven, &totals.TotalPoints)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetWeeklyStats: %w", err)
	}
	return &totals, nil
}

func (repo *StatsRepo) GetRankedWeeklyStats(ctx context.Context) ([]repository.WeeklyTotals, error) {
	const query = `
SELECT user_id, name, kudos_received, kudos_given, total_points
FROM kudos_stats_weekly
ORDER BY total_points DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GetRankedWeeklyStats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ranked := make([]repository.WeeklyTotals, 0, 64)
	for rows.Next() {
		var totals repository.WeeklyTotals
		if err := rows.Scan(&totals.UserID, &totals.Name, &totals.KudosReceived,
			&totals.KudosGiven, &totals.TotalPoints); err != nil {
			return nil, fmt.Errorf("GetRankedWeeklyStats: Scan: %w", err)
		}
		ranked = append(ranked, totals)
	}
	return ranked, rows.Err()
}

// GetTopCategory returns the user's most active category label, or "" when
// the top-category view has no row for the user.
func (repo *StatsRepo) GetTopCategory(ctx context.Context, userID string) (string, error) {
	const query = `
SELECT top_category
FROM top_kudos_recipients
WHERE user_id = $1
LIMIT 1`
	var category string
	err := repo.db.QueryRowContext(ctx, query, userID).Scan(&category)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("GetTopCategory: %w", err)
	}
	return category, nil
}
