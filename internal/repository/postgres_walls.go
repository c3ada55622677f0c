package repository

import (
	"context"
	"database/sql"
	"fmt"

	"homesketch-data/internal/domain"
)

// PostgresWallsRepository 墙体Repository实现
type PostgresWallsRepository struct {
	db DBTX
}

// NewPostgresWallsRepository 创建墙体Repository
func NewPostgresWallsRepository(db DBTX) *PostgresWallsRepository {
	return &PostgresWallsRepository{db: db}
}

var _ WallsRepository = (*PostgresWallsRepository)(nil)

const wallColumns = `
	wall_id::text,
	room_id::text,
	start_x,
	start_y,
	end_x,
	end_y,
	length,
	height,
	thickness,
	angle,
	area,
	cost_per_sq_unit,
	estimated_cost,
	sort_order,
	created_at,
	updated_at`

func scanWall(row interface{ Scan(...any) error }) (*domain.Wall, error) {
	var w domain.Wall
	err := row.Scan(
		&w.WallID,
		&w.RoomID,
		&w.StartX,
		&w.StartY,
		&w.EndX,
		&w.EndY,
		&w.Length,
		&w.Height,
		&w.Thickness,
		&w.Angle,
		&w.Area,
		&w.CostPerSqUnit,
		&w.EstimatedCost,
		&w.SortOrder,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create 插入墙体
func (r *PostgresWallsRepository) Create(ctx context.Context, wall *domain.Wall) error {
	query := `
		INSERT INTO walls (
			wall_id, room_id, start_x, start_y, end_x, end_y,
			length, height, thickness, angle, area,
			cost_per_sq_unit, estimated_cost, sort_order,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		wall.WallID, wall.RoomID,
		wall.StartX, wall.StartY, wall.EndX, wall.EndY,
		wall.Length, wall.Height, wall.Thickness, wall.Angle, wall.Area,
		wall.CostPerSqUnit, wall.EstimatedCost, wall.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create wall: %w", err)
	}
	return nil
}

// Get 根据 wall_id 获取墙体
func (r *PostgresWallsRepository) Get(ctx context.Context, wallID string) (*domain.Wall, error) {
	if wallID == "" {
		return nil, fmt.Errorf("wall_id is required")
	}
	query := `SELECT ` + wallColumns + ` FROM walls WHERE wall_id = $1::uuid`
	w, err := scanWall(r.db.QueryRowContext(ctx, query, wallID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("wall %s: %w", wallID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wall: %w", err)
	}
	return w, nil
}

// ListByRoom 列出房间下全部墙体
func (r *PostgresWallsRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Wall, error) {
	query := `SELECT ` + wallColumns + ` FROM walls WHERE room_id = $1::uuid ORDER BY sort_order, created_at`
	return r.queryWalls(ctx, query, roomID)
}

// ListBySketch 跨房间列出草图下全部墙体（聚合用，单次查询）
func (r *PostgresWallsRepository) ListBySketch(ctx context.Context, sketchID string) ([]*domain.Wall, error) {
	query := `
		SELECT
			w.wall_id::text, w.room_id::text,
			w.start_x, w.start_y, w.end_x, w.end_y,
			w.length, w.height, w.thickness, w.angle, w.area,
			w.cost_per_sq_unit, w.estimated_cost, w.sort_order,
			w.created_at, w.updated_at
		FROM walls w
		JOIN rooms rm ON rm.room_id = w.room_id
		WHERE rm.sketch_id = $1::uuid
		ORDER BY w.sort_order, w.created_at
	`
	return r.queryWalls(ctx, query, sketchID)
}

func (r *PostgresWallsRepository) queryWalls(ctx context.Context, query string, args ...any) ([]*domain.Wall, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list walls: %w", err)
	}
	defer rows.Close()

	out := []*domain.Wall{}
	for rows.Next() {
		w, err := scanWall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wall: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Update 更新墙体（含派生的 length/angle/area/estimated_cost）
func (r *PostgresWallsRepository) Update(ctx context.Context, wall *domain.Wall) error {
	query := `
		UPDATE walls SET
			start_x = $2,
			start_y = $3,
			end_x = $4,
			end_y = $5,
			length = $6,
			height = $7,
			thickness = $8,
			angle = $9,
			area = $10,
			cost_per_sq_unit = $11,
			estimated_cost = $12,
			sort_order = $13,
			updated_at = NOW()
		WHERE wall_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query,
		wall.WallID,
		wall.StartX, wall.StartY, wall.EndX, wall.EndY,
		wall.Length, wall.Height, wall.Thickness, wall.Angle, wall.Area,
		wall.CostPerSqUnit, wall.EstimatedCost, wall.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update wall: %w", err)
	}
	return requireRowAffected(res, "wall", wall.WallID)
}

// UpdateSortOrder 仅更新排序（不触发聚合）
func (r *PostgresWallsRepository) UpdateSortOrder(ctx context.Context, wallID string, sortOrder int) error {
	query := `UPDATE walls SET sort_order = $2, updated_at = NOW() WHERE wall_id = $1::uuid`
	res, err := r.db.ExecContext(ctx, query, wallID, sortOrder)
	if err != nil {
		return fmt.Errorf("failed to update wall sort order: %w", err)
	}
	return requireRowAffected(res, "wall", wallID)
}

// Delete 删除墙体行
func (r *PostgresWallsRepository) Delete(ctx context.Context, wallID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM walls WHERE wall_id = $1::uuid`, wallID)
	if err != nil {
		return fmt.Errorf("failed to delete wall: %w", err)
	}
	return requireRowAffected(res, "wall", wallID)
}

// DeleteByRoom 删除房间下全部墙体（room 级联用）
func (r *PostgresWallsRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM walls WHERE room_id = $1::uuid`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete walls of room: %w", err)
	}
	return nil
}
