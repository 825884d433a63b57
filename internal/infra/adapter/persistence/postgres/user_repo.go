package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/repository"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) GetUser(ctx context.Context, userID string) (*entity.UserContext, error) {
	const query = `
SELECT id, name, email, manager_id
FROM users
WHERE id = $1
LIMIT 1`
	var user entity.UserContext
	err := repo.db.QueryRowContext(ctx, query, userID).
		Scan(&user.ID, &user.Name, &user.Email, &user.ManagerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetUser %s: %w", userID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return &user, nil
}

func (repo *UserRepo) GetSettings(ctx context.Context, userID string) (*entity.Settings, error) {
	const query = `
SELECT user_id, slack_user_id, slack_channel_id, notify_by_email, notify_by_slack, reminder_opt_in
FROM settings
WHERE user_id = $1
LIMIT 1`
	var settings entity.Settings
	err := repo.db.QueryRowContext(ctx, query, userID).
		Scan(&settings.UserID, &settings.SlackUserID, &settings.SlackChannelID,
			&settings.NotifyByEmail, &settings.NotifyBySlack, &settings.ReminderOptIn)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetSettings %s: %w", userID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetSettings: %w", err)
	}
	return &settings, nil
}
