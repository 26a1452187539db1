// Package store archives retrieved records in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/larkerhq/larker/internal/twitter"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// ArchivedRecord is one row of the records table.
type ArchivedRecord struct {
	RecordID  int64
	Text      string
	CreatedAt time.Time
	Raw       string
	FetchedAt time.Time
}

// Stats summarizes the archive contents.
type Stats struct {
	Total    int
	Earliest time.Time
	Latest   time.Time
}

// Open opens (or creates) the archive at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertRecord upserts one record. Re-fetching the same record id
// replaces the stored copy, so duplicate deliveries are harmless.
func (s *Store) InsertRecord(ctx context.Context, rec twitter.Record, fetchedAt time.Time) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if rec.ID == 0 {
		return errors.New("record id is required")
	}
	if fetchedAt.IsZero() {
		return errors.New("fetched_at is required")
	}

	createdAt, err := rec.Time()
	if err != nil {
		return err
	}

	var rawVal sql.NullString
	if len(rec.Raw) > 0 {
		rawVal = sql.NullString{String: string(rec.Raw), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (record_id, text, created_at, raw, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			text = excluded.text,
			created_at = excluded.created_at,
			raw = excluded.raw,
			fetched_at = excluded.fetched_at
	`,
		rec.ID,
		rec.Text,
		formatTime(createdAt),
		rawVal,
		formatTime(fetchedAt),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Recent returns up to n archived records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]ArchivedRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, text, created_at, raw, fetched_at
		FROM records
		ORDER BY created_at DESC, record_id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ArchivedRecord
	for rows.Next() {
		var (
			rec                  ArchivedRecord
			rawVal               sql.NullString
			createdAt, fetchedAt string
		)
		if err := rows.Scan(&rec.RecordID, &rec.Text, &createdAt, &rawVal, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if rawVal.Valid {
			rec.Raw = rawVal.String
		}
		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		rec.FetchedAt, err = parseTime(fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parse fetched_at: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent: %w", err)
	}

	return records, nil
}

// GetStats reports the archive size and its timestamp span.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	if s == nil || s.db == nil {
		return Stats{}, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		stats            Stats
		earliest, latest sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM records
	`).Scan(&stats.Total, &earliest, &latest)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}

	if earliest.Valid {
		stats.Earliest, err = parseTime(earliest.String)
		if err != nil {
			return Stats{}, fmt.Errorf("parse earliest: %w", err)
		}
	}
	if latest.Valid {
		stats.Latest, err = parseTime(latest.String)
		if err != nil {
			return Stats{}, fmt.Errorf("parse latest: %w", err)
		}
	}

	return stats, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}
