// Package stats computes a user's weekly kudos standing from precomputed
// aggregate views. It is consumed only by the weekly_reminder renderers.
package stats

import (
	"context"
	"fmt"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/repository"
)

// Aggregator derives WeeklyStats for one user from three read-only
// aggregate sources: per-user weekly totals, the global ranking of those
// totals, and the top-category-per-user view.
type Aggregator struct {
	repo repository.StatsRepository
}

func NewAggregator(repo repository.StatsRepository) *Aggregator {
	return &Aggregator{repo: repo}
}

// WeeklyStats computes the user's standing for the current week.
//
// Missing rows are normal, not failures: a user with no activity gets zero
// counts, a user absent from the ranking gets rank 0, an empty ranking
// yields the NoLeader sentinel and a missing top-category row yields
// NoTopCategory. Only actual query errors propagate.
func (a *Aggregator) WeeklyStats(ctx context.Context, userID string) (*entity.WeeklyStats, error) {
	totals, err := a.repo.GetWeeklyStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("weekly totals: %w", err)
	}

	ranked, err := a.repo.GetRankedWeeklyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("ranked totals: %w", err)
	}

	topCategory, err := a.repo.GetTopCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("top category: %w", err)
	}

	result := &entity.WeeklyStats{
		Leader:      entity.NoLeader,
		TopCategory: entity.NoTopCategory,
	}

	if totals != nil {
		result.KudosReceived = totals.KudosReceived
		result.KudosGiven = totals.KudosGiven
		result.TotalPoints = totals.TotalPoints
	}

	// Rank is the 1-indexed position in the ranked view; ties keep the
	// view's stable order. Absent users report rank 0.
	for i, row := range ranked {
		if row.UserID == userID {
			result.Rank = i + 1
			break
		}
	}

	if len(ranked) > 0 {
		result.Leader = fmt.Sprintf("%s (%d points)", ranked[0].Name, ranked[0].TotalPoints)
	}

	if topCategory != "" {
		result.TopCategory = topCategory
	}

	return result, nil
}
