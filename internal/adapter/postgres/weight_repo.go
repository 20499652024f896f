package postgres

import (
	"context"
	"time"

	"trackr/internal/domain"
)

// ListEntries returns the user's entries in insertion order.
func (d *DB) ListEntries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT day, weight FROM weight_entries WHERE user_id = $1 ORDER BY id;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	items := []domain.WeightEntry{}
	for rows.Next() {
		var e domain.WeightEntry
		if err := rows.Scan(&e.Date, &e.Weight); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// AddEntry inserts an entry for the user's day.
func (d *DB) AddEntry(ctx context.Context, userID int64, date string, weight float64) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO weight_entries(user_id, day, weight, created_at) VALUES($1, $2, $3, $4);",
		userID, date, weight, time.Now().UTC(),
	)
	if uniqueViolation(err) {
		return domain.ErrEntryExists
	}
	return err
}

// DeleteEntry removes the entry for the user's day.
func (d *DB) DeleteEntry(ctx context.Context, userID int64, date string) error {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM weight_entries WHERE user_id = $1 AND day = $2;", userID, date)
	if err != nil {
		return err
	}
	return affectedOne(res.RowsAffected())
}

// ModifyEntry replaces the weight of the entry for the user's day.
func (d *DB) ModifyEntry(ctx context.Context, userID int64, date string, weight float64) error {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE weight_entries SET weight = $3 WHERE user_id = $1 AND day = $2;", userID, date, weight)
	if err != nil {
		return err
	}
	return affectedOne(res.RowsAffected())
}

func affectedOne(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
