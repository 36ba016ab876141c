package notify

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/subtrack-cli/subtrack/internal/model"
)

const queueSchemaSQL = `
CREATE TABLE IF NOT EXISTS pending_notifications (
    subscription_id    TEXT NOT NULL,
    kind               TEXT NOT NULL,
    subscription_name  TEXT NOT NULL,
    fire_at            TEXT NOT NULL,
    enqueued_at        TEXT NOT NULL,
    PRIMARY KEY (subscription_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_pending_fire_at ON pending_notifications(fire_at);
`

// Queue is the deferred-queue strategy: pending reminders are rows in a
// local SQLite database, popped by the daemon when due. Best-effort
// timing, survives process restarts.
type Queue struct {
	db *sql.DB
}

// OpenQueue opens or creates the queue database at the given path.
func OpenQueue(dbPath string) (*Queue, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating queue dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}

	if _, err := db.Exec(queueSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating queue schema: %w", err)
	}

	return &Queue{db: db}, nil
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Schedule upserts the queue row for the pair.
func (q *Queue) Schedule(req Request) error {
	_, err := q.db.Exec(`INSERT OR REPLACE INTO pending_notifications
		(subscription_id, kind, subscription_name, fire_at, enqueued_at)
		VALUES (?, ?, ?, ?, ?)`,
		req.SubscriptionID, string(req.Kind), req.SubscriptionName,
		req.FireAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Cancel deletes the queue row for the pair. Deleting a missing row is
// a success.
func (q *Queue) Cancel(subscriptionID string, kind model.NotificationKind) error {
	_, err := q.db.Exec(
		"DELETE FROM pending_notifications WHERE subscription_id = ? AND kind = ?",
		subscriptionID, string(kind),
	)
	return err
}

// PopDue removes and returns every reminder due at or before now,
// soonest first.
func (q *Queue) PopDue(now time.Time) ([]model.Notification, error) {
	cutoff := now.UTC().Format(time.RFC3339)

	rows, err := q.db.Query(`SELECT subscription_id, kind, subscription_name
		FROM pending_notifications WHERE fire_at <= ? ORDER BY fire_at`, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var due []model.Notification
	for rows.Next() {
		var n model.Notification
		var kind string
		if err := rows.Scan(&n.SubscriptionID, &kind, &n.SubscriptionName); err != nil {
			return nil, err
		}
		n.Kind = model.NotificationKind(kind)
		due = append(due, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := q.db.Exec("DELETE FROM pending_notifications WHERE fire_at <= ?", cutoff); err != nil {
		return nil, err
	}
	return due, nil
}

// Pending returns the number of queued reminders.
func (q *Queue) Pending() (int, error) {
	var count int
	err := q.db.QueryRow("SELECT COUNT(*) FROM pending_notifications").Scan(&count)
	return count, err
}

// NextFireAt returns the soonest queued fire time, or false when the
// queue is empty.
func (q *Queue) NextFireAt() (time.Time, bool, error) {
	var raw sql.NullString
	err := q.db.QueryRow("SELECT MIN(fire_at) FROM pending_notifications").Scan(&raw)
	if err != nil {
		return time.Time{}, false, err
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	at, err := time.Parse(time.RFC3339, raw.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}
