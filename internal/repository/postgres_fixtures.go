package repository

import (
	"context"
	"database/sql"
	"fmt"

	"homesketch-data/internal/domain"
)

// PostgresFixturesRepository 固定装置Repository实现
type PostgresFixturesRepository struct {
	db DBTX
}

// NewPostgresFixturesRepository 创建固定装置Repository
func NewPostgresFixturesRepository(db DBTX) *PostgresFixturesRepository {
	return &PostgresFixturesRepository{db: db}
}

var _ FixturesRepository = (*PostgresFixturesRepository)(nil)

const fixtureColumns = `
	fixture_id::text,
	room_id::text,
	wall_id::text,
	name,
	fixture_type,
	x,
	y,
	width,
	height,
	depth,
	unit_cost,
	installation_cost,
	total_cost,
	sort_order,
	created_at,
	updated_at`

func scanFixture(row interface{ Scan(...any) error }) (*domain.Fixture, error) {
	var f domain.Fixture
	err := row.Scan(
		&f.FixtureID,
		&f.RoomID,
		&f.WallID,
		&f.Name,
		&f.FixtureType,
		&f.X,
		&f.Y,
		&f.Width,
		&f.Height,
		&f.Depth,
		&f.UnitCost,
		&f.InstallationCost,
		&f.TotalCost,
		&f.SortOrder,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create 插入固定装置
func (r *PostgresFixturesRepository) Create(ctx context.Context, fixture *domain.Fixture) error {
	query := `
		INSERT INTO fixtures (
			fixture_id, room_id, wall_id, name, fixture_type,
			x, y, width, height, depth,
			unit_cost, installation_cost, total_cost, sort_order,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, NOW(), NOW()
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		fixture.FixtureID, fixture.RoomID, fixture.WallID,
		fixture.Name, fixture.FixtureType,
		fixture.X, fixture.Y, fixture.Width, fixture.Height, fixture.Depth,
		fixture.UnitCost, fixture.InstallationCost, fixture.TotalCost,
		fixture.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create fixture: %w", err)
	}
	return nil
}

// Get 根据 fixture_id 获取固定装置
func (r *PostgresFixturesRepository) Get(ctx context.Context, fixtureID string) (*domain.Fixture, error) {
	if fixtureID == "" {
		return nil, fmt.Errorf("fixture_id is required")
	}
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE fixture_id = $1::uuid`
	f, err := scanFixture(r.db.QueryRowContext(ctx, query, fixtureID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("fixture %s: %w", fixtureID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get fixture: %w", err)
	}
	return f, nil
}

// ListByRoom 列出房间下全部固定装置
func (r *PostgresFixturesRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE room_id = $1::uuid ORDER BY sort_order, created_at`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	defer rows.Close()

	out := []*domain.Fixture{}
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update 更新固定装置（含派生的 total_cost）
func (r *PostgresFixturesRepository) Update(ctx context.Context, fixture *domain.Fixture) error {
	query := `
		UPDATE fixtures SET
			wall_id = $2::uuid,
			name = $3,
			fixture_type = $4,
			x = $5,
			y = $6,
			width = $7,
			height = $8,
			depth = $9,
			unit_cost = $10,
			installation_cost = $11,
			total_cost = $12,
			sort_order = $13,
			updated_at = NOW()
		WHERE fixture_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query,
		fixture.FixtureID, fixture.WallID,
		fixture.Name, fixture.FixtureType,
		fixture.X, fixture.Y, fixture.Width, fixture.Height, fixture.Depth,
		fixture.UnitCost, fixture.InstallationCost, fixture.TotalCost,
		fixture.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update fixture: %w", err)
	}
	return requireRowAffected(res, "fixture", fixture.FixtureID)
}

// UpdateSortOrder 仅更新排序（不触发聚合）
func (r *PostgresFixturesRepository) UpdateSortOrder(ctx context.Context, fixtureID string, sortOrder int) error {
	query := `UPDATE fixtures SET sort_order = $2, updated_at = NOW() WHERE fixture_id = $1::uuid`
	res, err := r.db.ExecContext(ctx, query, fixtureID, sortOrder)
	if err != nil {
		return fmt.Errorf("failed to update fixture sort order: %w", err)
	}
	return requireRowAffected(res, "fixture", fixtureID)
}

// Delete 删除固定装置行
func (r *PostgresFixturesRepository) Delete(ctx context.Context, fixtureID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fixtures WHERE fixture_id = $1::uuid`, fixtureID)
	if err != nil {
		return fmt.Errorf("failed to delete fixture: %w", err)
	}
	return requireRowAffected(res, "fixture", fixtureID)
}

// DeleteByRoom 删除房间下全部固定装置（room 级联用）
func (r *PostgresFixturesRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM fixtures WHERE room_id = $1::uuid`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete fixtures of room: %w", err)
	}
	return nil
}

// DeleteByWall 删除挂在某面墙上的全部固定装置（wall 级联用）
func (r *PostgresFixturesRepository) DeleteByWall(ctx context.Context, wallID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM fixtures WHERE wall_id = $1::uuid`, wallID)
	if err != nil {
		return fmt.Errorf("failed to delete fixtures of wall: %w", err)
	}
	return nil
}
