package dataset

import (
	"context"
	"database/sql"
	"time"

	"github.com/teranos/crossview/db"
	"github.com/teranos/crossview/errors"
)

// Layouts accepted for occurred_at. Values without an offset are read in
// the repository's location.
var storedLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Repository reads and writes transactions in SQLite
type Repository struct {
	db  *sql.DB
	loc *time.Location
}

// NewRepository creates a repository. loc is used for stored timestamps
// that carry no offset; nil means UTC.
func NewRepository(conn *sql.DB, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{db: conn, loc: loc}
}

// Insert stores r and sets its ID
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	if rec.Date.IsZero() {
		return errors.NewInvalidRequestError("transaction date is required")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (city, location, state, state_name, occupation, merchant, amount, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.City, rec.Location, rec.State, rec.StateName,
		rec.Occupation, rec.Merchant, rec.Amount,
		rec.Date.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return storeError(err, "failed to insert transaction")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to read transaction id")
	}
	rec.ID = id
	return nil
}

// InsertMany stores records in one transaction
func (r *Repository) InsertMany(ctx context.Context, records []Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (city, location, state, state_name, occupation, merchant, amount, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		if rec.Date.IsZero() {
			return errors.NewInvalidRequestError("transaction %d: date is required", i)
		}
		res, err := stmt.ExecContext(ctx,
			rec.City, rec.Location, rec.State, rec.StateName,
			rec.Occupation, rec.Merchant, rec.Amount,
			rec.Date.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return errors.Wrapf(err, "failed to insert transaction %d", i)
		}
		if id, err := res.LastInsertId(); err == nil {
			rec.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// All returns every transaction ordered by time then id
func (r *Repository) All(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, city, location, state, state_name, occupation, merchant, amount, occurred_at
		FROM transactions
		ORDER BY occurred_at, id`)
	if err != nil {
		return nil, storeError(err, "failed to query transactions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var occurred string
		if err := rows.Scan(&rec.ID, &rec.City, &rec.Location, &rec.State, &rec.StateName,
			&rec.Occupation, &rec.Merchant, &rec.Amount, &occurred); err != nil {
			return nil, errors.Wrap(err, "failed to scan transaction")
		}
		rec.Date, err = r.parseTime(occurred)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", rec.ID)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate transactions")
	}
	return records, nil
}

// Count returns the number of stored transactions
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, storeError(err, "failed to count transactions")
	}
	return n, nil
}

// Load reads every transaction into a Dataset
func (r *Repository) Load(ctx context.Context) (*Dataset, error) {
	records, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

func (r *Repository) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range storedLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unparseable occurred_at %q", s)
}

// storeError wraps err. A closed connection surfaces as db.ErrDatabaseClosed
// so callers shutting down can tell it apart from a failed query.
func storeError(err error, msg string) error {
	if db.IsDatabaseClosed(err) {
		return errors.Wrap(db.ErrDatabaseClosed, msg)
	}
	return errors.Wrap(err, msg)
}
