package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore Postgres 实现的 Store
// Repositories are built over DBTX so the same code serves both the plain
// connection and an open transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore 创建 Postgres Store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func reposOver(q DBTX) Repos {
	return Repos{
		Sketches:     NewPostgresSketchesRepository(q),
		Rooms:        NewPostgresRoomsRepository(q),
		Walls:        NewPostgresWallsRepository(q),
		Fixtures:     NewPostgresFixturesRepository(q),
		Measurements: NewPostgresMeasurementsRepository(q),
	}
}

// Repos returns repositories bound to the plain connection (auto-commit).
func (s *PostgresStore) Repos() Repos {
	return reposOver(s.db)
}

// WithinTx runs fn against transaction-bound repositories. Any error from fn
// rolls the whole transaction back; partial application is never a valid
// outcome for mutations, bulk operations or duplication.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if err := fn(reposOver(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}
