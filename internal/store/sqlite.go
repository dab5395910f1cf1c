package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Subscribe inserts the chat or refreshes its subscribed_at timestamp.
// The last_delivered_date of an existing row is preserved, so re-subscribing
// never re-arms a delivery already made today.
func (r *SQLiteRepo) Subscribe(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscribers (chat_id, subscribed_at)
		VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			subscribed_at = excluded.subscribed_at`,
		chatID, time.Now().UTC().Unix(),
	)
	if err != nil {
		return &domain.StorageError{Op: "subscribe", Err: err}
	}
	return nil
}

// Unsubscribe deletes the chat's row if present.
func (r *SQLiteRepo) Unsubscribe(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE chat_id = ?`, chatID)
	if err != nil {
		return &domain.StorageError{Op: "unsubscribe", Err: err}
	}
	return nil
}

// Get returns the subscriber row for chatID or domain.ErrNotFound.
func (r *SQLiteRepo) Get(ctx context.Context, chatID int64) (*domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, subscribed_at, last_delivered_date
		FROM subscribers
		WHERE chat_id = ?`,
		chatID,
	)

	var (
		id       int64
		subAt    int64
		lastDate sql.NullString
	)
	if err := row.Scan(&id, &subAt, &lastDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}

	sub := &domain.Subscriber{
		ChatID:       id,
		SubscribedAt: time.Unix(subAt, 0).UTC(),
	}
	if lastDate.Valid {
		d := domain.Date(lastDate.String)
		sub.LastDelivered = &d
	}
	return sub, nil
}

// ListDue returns chat ids whose last delivery predates day (or never
// happened). The primary key guarantees each id appears once.
func (r *SQLiteRepo) ListDue(ctx context.Context, day domain.Date) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id
		FROM subscribers
		WHERE last_delivered_date IS NULL
		   OR last_delivered_date < ?
		ORDER BY chat_id ASC`,
		string(day),
	)
	if err != nil {
		return nil, &domain.StorageError{Op: "list due", Err: err}
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, &domain.StorageError{Op: "list due", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list due", Err: err}
	}
	return ids, nil
}

// MarkDelivered advances last_delivered_date to day in a single guarded
// UPDATE. ISO dates compare lexicographically, so the guard doubles as the
// monotonic check; losing a race or retrying simply reports false.
func (r *SQLiteRepo) MarkDelivered(ctx context.Context, chatID int64, day domain.Date) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET last_delivered_date = ?
		WHERE chat_id = ?
		  AND (last_delivered_date IS NULL OR last_delivered_date < ?)`,
		string(day), chatID, string(day),
	)
	if err != nil {
		return false, &domain.StorageError{Op: "mark delivered", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.StorageError{Op: "mark delivered", Err: err}
	}
	return n > 0, nil
}
