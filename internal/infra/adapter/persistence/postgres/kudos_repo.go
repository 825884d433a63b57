package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/repository"
)

type KudosRepo struct {
	db *sql.DB
}

func NewKudosRepo(db *sql.DB) repository.KudosRepository {
	return &KudosRepo{db: db}
}

// GetKudosWithContext loads a kudos event with its giver, category and
// recipient list. The recipients come from a second query; the kudos row
// itself is immutable once created, so the two reads do not need to share
// a transaction.
func (repo *KudosRepo) GetKudosWithContext(ctx context.Context, kudosID string) (*entity.KudosContext, error) {
	const kudosQuery = `
SELECT k.id, k.giver_id, g.name AS giver_name, c.name AS category_name, k.message, k.gif_url
FROM kudos k
INNER JOIN users g ON k.giver_id = g.id
INNER JOIN categories c ON k.category_id = c.id
WHERE k.id = $1
LIMIT 1`

	var kudos entity.KudosContext
	err := repo.db.QueryRowContext(ctx, kudosQuery, kudosID).
		Scan(&kudos.ID, &kudos.GiverID, &kudos.GiverName, &kudos.CategoryName,
			&kudos.Message, &kudos.GifURL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetKudosWithContext %s: %w", kudosID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetKudosWithContext: %w", err)
	}

	const recipientsQuery = `
SELECT u.id, u.name
FROM kudos_recipients kr
INNER JOIN users u ON kr.user_id = u.id
WHERE kr.kudos_id = $1
ORDER BY kr.created_at`

	rows, err := repo.db.QueryContext(ctx, recipientsQuery, kudosID)
	if err != nil {
		return nil, fmt.Errorf("GetKudosWithContext: recipients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r entity.Recipient
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("GetKudosWithContext: recipients: Scan: %w", err)
		}
		kudos.Recipients = append(kudos.Recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetKudosWithContext: recipients: %w", err)
	}
	return &kudos, nil
}
