package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// PriceEntryRow mirrors a price_entries row.
type PriceEntryRow struct {
	Seq         int64
	ID          string
	Category    string
	ItemName    string
	Price       decimal.Decimal
	Currency    string
	Location    string
	Country     string
	Comment     string
	SubmittedAt string // RFC 3339, UTC
	SubmittedBy string
}

const insertPriceEntry = `
INSERT INTO price_entries (id, category, item_name, price, currency, location, country, comment, submitted_at, submitted_by)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertPriceEntryParams struct {
	ID          string
	Category    string
	ItemName    string
	Price       decimal.Decimal
	Currency    string
	Location    string
	Country     string
	Comment     string
	SubmittedAt string
	SubmittedBy string
}

func (q *Queries) InsertPriceEntry(ctx context.Context, arg InsertPriceEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertPriceEntry,
		arg.ID,
		arg.Category,
		arg.ItemName,
		arg.Price,
		arg.Currency,
		arg.Location,
		arg.Country,
		arg.Comment,
		arg.SubmittedAt,
		arg.SubmittedBy,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Newest rows first: insertion order is the only ordering entries have.
const listPriceEntries = `
SELECT seq, id, category, item_name, price, currency, location, country, comment, submitted_at, submitted_by
FROM price_entries
ORDER BY seq DESC
`

func (q *Queries) ListPriceEntries(ctx context.Context) ([]PriceEntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listPriceEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]PriceEntryRow, 0)
	for rows.Next() {
		var i PriceEntryRow
		if err := rows.Scan(
			&i.Seq,
			&i.ID,
			&i.Category,
			&i.ItemName,
			&i.Price,
			&i.Currency,
			&i.Location,
			&i.Country,
			&i.Comment,
			&i.SubmittedAt,
			&i.SubmittedBy,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPriceEntries = `SELECT COUNT(*) FROM price_entries`

func (q *Queries) CountPriceEntries(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPriceEntries).Scan(&n)
	return n, err
}
