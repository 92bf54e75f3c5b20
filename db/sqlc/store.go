package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Store provides all functions to execute db queries and transactions
type Store interface {
	Querier
	GetPresets(ctx context.Context, names []string) ([]Preset, error)
}

// SQLStore provides all functions to execute SQL queries and transactions
type SQLStore struct {
	*Queries
	db *sql.DB
}

// NewStore creates a new store
func NewStore(db *sql.DB) Store {
	return &SQLStore{
		db:      db,
		Queries: New(db),
	}
}

// execTx executes a function within a database transaction
func (store *SQLStore) execTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := store.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// GetPresets reads several presets from one snapshot. A missing name
// fails the whole lookup with sql.ErrNoRows.
func (store *SQLStore) GetPresets(ctx context.Context, names []string) ([]Preset, error) {
	result := make([]Preset, 0, len(names))
	err := store.execTx(ctx, func(q *Queries) error {
		for _, name := range names {
			p, err := q.GetPreset(ctx, name)
			if err != nil {
				return fmt.Errorf("preset %q: %w", name, err)
			}
			result = append(result, p)
		}
		return nil
	})
	return result, err
}
