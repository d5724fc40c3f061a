package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"food-ordering/internal/database"
)

// Postgres stores values in the kv_store table
type Postgres struct {
	db *database.DB
}

// NewPostgres wraps a migrated database
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(ctx, database.GetValueSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	return p.db.Exec(ctx, database.UpsertValueSQL, key, value)
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	return p.db.Exec(ctx, database.DeleteValueSQL, key)
}
