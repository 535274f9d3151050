package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nomadprices/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultDSN is a named, shared-cache in-memory database. It lives as long
// as the repository's connection, so nothing outlives the process.
const DefaultDSN = "file:nomadprices?mode=memory&cache=shared"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if dir := fileDir(dsn); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert implements entries.EntryWriter.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.PriceEntry) error {
	seq, err := r.queries.InsertPriceEntry(ctx, InsertPriceEntryParams{
		ID:          e.ID,
		Category:    e.Category,
		ItemName:    e.ItemName,
		Price:       e.Price,
		Currency:    e.Currency,
		Location:    e.Location,
		Country:     e.Country,
		Comment:     e.Comment,
		SubmittedAt: e.SubmittedAt.UTC().Format(time.RFC3339Nano),
		SubmittedBy: e.SubmittedBy,
	})
	if err != nil {
		return fmt.Errorf("insert price entry: %w", err)
	}

	slog.DebugContext(ctx, "Price entry saved to SQLite",
		"seq", seq,
		"id", e.ID,
		"location", e.Location,
		"category", e.Category)

	return nil
}

// All implements entries.EntryLister.
func (r *SQLiteRepository) All(ctx context.Context) ([]core.PriceEntry, error) {
	rows, err := r.queries.ListPriceEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list price entries: %w", err)
	}

	out := make([]core.PriceEntry, 0, len(rows))
	for _, row := range rows {
		submittedAt, err := time.Parse(time.RFC3339Nano, row.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("price entry %s: parse submitted_at: %w", row.ID, err)
		}
		out = append(out, core.PriceEntry{
			ID:          row.ID,
			Category:    row.Category,
			ItemName:    row.ItemName,
			Price:       row.Price,
			Currency:    row.Currency,
			Location:    row.Location,
			Country:     row.Country,
			Comment:     row.Comment,
			SubmittedAt: submittedAt,
			SubmittedBy: row.SubmittedBy,
		})
	}
	return out, nil
}

// Len implements entries.EntryLister.
func (r *SQLiteRepository) Len(ctx context.Context) (int, error) {
	n, err := r.queries.CountPriceEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("count price entries: %w", err)
	}
	return int(n), nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// fileDir returns the directory of an on-disk database, or "" for in-memory
// DSNs.
func fileDir(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
