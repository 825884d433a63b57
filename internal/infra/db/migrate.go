package db

import (
	"database/sql"
)

// MigrateUp creates the tables, views and procedures the dispatch service
// depends on. Statements are idempotent so the migration can run on every
// startup.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    manager_id UUID REFERENCES users(id),
    created_at TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS settings (
    user_id          UUID PRIMARY KEY REFERENCES users(id),
    slack_user_id    TEXT,
    slack_channel_id TEXT,
    notify_by_email  BOOLEAN NOT NULL DEFAULT TRUE,
    notify_by_slack  BOOLEAN NOT NULL DEFAULT FALSE,
    reminder_opt_in  BOOLEAN NOT NULL DEFAULT TRUE
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS categories (
    id     SERIAL PRIMARY KEY,
    name   TEXT NOT NULL UNIQUE,
    points INTEGER NOT NULL DEFAULT 1
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kudos (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    giver_id    UUID NOT NULL REFERENCES users(id),
    category_id INTEGER NOT NULL REFERENCES categories(id),
    message     TEXT NOT NULL,
    gif_url     TEXT,
    created_at  TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kudos_recipients (
    kudos_id   UUID NOT NULL REFERENCES kudos(id),
    user_id    UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ DEFAULT now(),
    PRIMARY KEY (kudos_id, user_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notification_queue (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    type       TEXT NOT NULL,
    channel    TEXT NOT NULL,
    user_id    UUID NOT NULL REFERENCES users(id),
    kudos_id   UUID REFERENCES kudos(id),
    message    TEXT,
    status     TEXT NOT NULL DEFAULT 'pending',
    error      TEXT,
    sent_at    TIMESTAMPTZ,
    created_at TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	// The claim statement filters on status and orders by created_at;
	// a partial index keeps the pending scan cheap as terminal rows pile up.
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_queue_pending
		 ON notification_queue (created_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_queue_user ON notification_queue (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_kudos_recipients_user ON kudos_recipients (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_kudos_giver ON kudos (giver_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Weekly aggregate views backing the reminder stats. Receiving counts
	// come from kudos_recipients, giving counts from kudos, points from
	// the category weight of each received kudos.
	if _, err := db.Exec(`
CREATE OR REPLACE VIEW kudos_stats_weekly AS
SELECT
    u.id   AS user_id,
    u.name AS name,
    COALESCE(rcv.kudos_received, 0) AS kudos_received,
    COALESCE(gvn.kudos_given, 0)    AS kudos_given,
    COALESCE(rcv.total_points, 0)   AS total_points
FROM users u
LEFT JOIN (
    SELECT kr.user_id,
           COUNT(*)      AS kudos_received,
           SUM(c.points) AS total_points
    FROM kudos_recipients kr
    JOIN kudos k      ON kr.kudos_id = k.id
    JOIN categories c ON k.category_id = c.id
    WHERE k.created_at >= date_trunc('week', now())
    GROUP BY kr.user_id
) rcv ON rcv.user_id = u.id
LEFT JOIN (
    SELECT giver_id AS user_id, COUNT(*) AS kudos_given
    FROM kudos
    WHERE created_at >= date_trunc('week', now())
    GROUP BY giver_id
) gvn ON gvn.user_id = u.id
WHERE COALESCE(rcv.kudos_received, 0) > 0 OR COALESCE(gvn.kudos_given, 0) > 0`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE OR REPLACE VIEW top_kudos_recipients AS
SELECT DISTINCT ON (kr.user_id)
    kr.user_id,
    c.name AS top_category
FROM kudos_recipients kr
JOIN kudos k      ON kr.kudos_id = k.id
JOIN categories c ON k.category_id = c.id
WHERE k.created_at >= date_trunc('week', now())
GROUP BY kr.user_id, c.name
ORDER BY kr.user_id, COUNT(*) DESC, c.name`); err != nil {
		return err
	}

	// schedule_weekly_reminders enqueues one pending reminder per opted-in
	// user per channel they have enabled. The dedup predicate keeps repeat
	// invocations within the same week from double-enqueueing.
	if _, err := db.Exec(`
CREATE OR REPLACE FUNCTION schedule_weekly_reminders() RETURNS void AS $$
BEGIN
    INSERT INTO notification_queue (type, channel, user_id)
    SELECT 'weekly_reminder', ch.channel, s.user_id
    FROM settings s
    CROSS JOIN LATERAL (
        SELECT 'email' AS channel WHERE s.notify_by_email
        UNION ALL
        SELECT 'slack' WHERE s.notify_by_slack
    ) ch
    WHERE s.reminder_opt_in
      AND NOT EXISTS (
          SELECT 1 FROM notification_queue q
          WHERE q.user_id = s.user_id
            AND q.type = 'weekly_reminder'
            AND q.channel = ch.channel
            AND q.created_at >= date_trunc('week', now())
      );
END;
$$ LANGUAGE plpgsql`); err != nil {
		return err
	}

	return nil
}
