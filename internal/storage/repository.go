package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"desayunos/internal/core"
	"desayunos/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListEntries returns every entry, newest insertion first, so the
// controller's stable date sort keeps the prepend-on-record order
// within a day.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, entry_date, payer FROM entries ORDER BY rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			e       core.Entry
			rawDate string
		)
		if err := rows.Scan(&e.ID, &rawDate, &e.Payer); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		date, err := core.ParseLedgerDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", rawDate, err)
		}
		e.Date = date
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	for i := range entries {
		participants, err := r.participantsFor(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Participants = participants
	}

	return entries, nil
}

// GetEntry retrieves a single entry by id.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	var (
		e       core.Entry
		rawDate string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, entry_date, payer FROM entries WHERE id = ?", id,
	).Scan(&e.ID, &rawDate, &e.Payer)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, store.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", id, err)
	}

	date, err := core.ParseLedgerDate(rawDate)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse entry date %q: %w", rawDate, err)
	}
	e.Date = date

	e.Participants, err = r.participantsFor(ctx, id)
	if err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// CreateEntry persists a new entry, pending mirror sync, and returns the
// assigned id.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (string, error) {
	id := uuid.New().String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO entries (id, entry_date, payer, sync_pending) VALUES (?, ?, ?, 1)",
		id, e.Date.LedgerFormat(), e.Payer)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}

	for _, p := range e.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO entry_participants (entry_id, person) VALUES (?, ?)", id, p)
		if err != nil {
			return "", fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"entry_id", id,
		"date", e.Date.LedgerFormat(),
		"payer", e.Payer,
		"participants", len(e.Participants))

	return id, nil
}

// UpdateEntry replaces payer and participants of an existing entry and
// marks it pending mirror sync again. The date column is never touched.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id string, payer string, participants []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE entries SET payer = ?, sync_pending = 1, sync_error = 0 WHERE id = ?",
		payer, id)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM entry_participants WHERE entry_id = ?", id); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	for _, p := range participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_participants (entry_id, person) VALUES (?, ?)", id, p); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Entry updated in SQLite", "entry_id", id, "payer", payer)
	return nil
}

// DeleteEntry removes an entry; participants go with it via the cascade.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Entry deleted from SQLite", "entry_id", id)
	return nil
}

// GetPendingSyncEntries returns entries still waiting for the mirror,
// oldest first, up to limit. Used by the worker as a backstop when AMQP
// messages were lost.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM entries WHERE sync_pending = 1 ORDER BY rowid ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query pending entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending ids: %w", err)
	}

	entries := make([]core.Entry, 0, len(ids))
	for _, id := range ids {
		e, err := r.GetEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// MarkSynced records that an entry reached the mirror.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE entries SET sync_pending = 0, sync_error = 0 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

// MarkSyncError flags an entry whose mirror push failed; it stays
// pending so the backstop scan retries it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE entries SET sync_error = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "entry_id", id)
	return nil
}

func (r *SQLiteRepository) participantsFor(ctx context.Context, entryID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT person FROM entry_participants WHERE entry_id = ? ORDER BY rowid ASC",
		entryID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}
