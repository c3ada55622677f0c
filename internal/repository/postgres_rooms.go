package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"homesketch-data/internal/domain"
)

// PostgresRoomsRepository 房间Repository实现
// Geometry round-trips through the JSONB column; area/perimeter are stored
// alongside it so aggregation never re-parses geometry.
type PostgresRoomsRepository struct {
	db DBTX
}

// NewPostgresRoomsRepository 创建房间Repository
func NewPostgresRoomsRepository(db DBTX) *PostgresRoomsRepository {
	return &PostgresRoomsRepository{db: db}
}

var _ RoomsRepository = (*PostgresRoomsRepository)(nil)

const roomColumns = `
	room_id::text,
	sketch_id::text,
	name,
	geometry,
	area,
	perimeter,
	ceiling_height,
	cost_category,
	estimated_cost,
	sort_order,
	created_at,
	updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*domain.Room, error) {
	var room domain.Room
	var geometryRaw []byte
	err := row.Scan(
		&room.RoomID,
		&room.SketchID,
		&room.Name,
		&geometryRaw,
		&room.Area,
		&room.Perimeter,
		&room.CeilingHeight,
		&room.CostCategory,
		&room.EstimatedCost,
		&room.SortOrder,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(geometryRaw, &room.Geometry); err != nil {
		return nil, fmt.Errorf("failed to decode room geometry: %w", err)
	}
	return &room, nil
}

// Create 插入房间
func (r *PostgresRoomsRepository) Create(ctx context.Context, room *domain.Room) error {
	geometryRaw, err := json.Marshal(room.Geometry)
	if err != nil {
		return fmt.Errorf("failed to encode room geometry: %w", err)
	}
	query := `
		INSERT INTO rooms (
			room_id, sketch_id, name, geometry, area, perimeter,
			ceiling_height, cost_category, estimated_cost, sort_order,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2::uuid, $3, $4::jsonb, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
	`
	_, err = r.db.ExecContext(ctx, query,
		room.RoomID, room.SketchID, room.Name, geometryRaw,
		room.Area, room.Perimeter, room.CeilingHeight,
		room.CostCategory, room.EstimatedCost, room.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// Get 根据 room_id 获取房间
func (r *PostgresRoomsRepository) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room_id is required")
	}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_id = $1::uuid`
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, roomID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// ListBySketch 列出草图下全部房间（按 sort_order 排序）
func (r *PostgresRoomsRepository) ListBySketch(ctx context.Context, sketchID string) ([]*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE sketch_id = $1::uuid ORDER BY sort_order, created_at`
	rows, err := r.db.QueryContext(ctx, query, sketchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	out := []*domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Update 更新房间（含派生的 area/perimeter）
func (r *PostgresRoomsRepository) Update(ctx context.Context, room *domain.Room) error {
	geometryRaw, err := json.Marshal(room.Geometry)
	if err != nil {
		return fmt.Errorf("failed to encode room geometry: %w", err)
	}
	query := `
		UPDATE rooms SET
			name = $2,
			geometry = $3::jsonb,
			area = $4,
			perimeter = $5,
			ceiling_height = $6,
			cost_category = $7,
			estimated_cost = $8,
			sort_order = $9,
			updated_at = NOW()
		WHERE room_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query,
		room.RoomID, room.Name, geometryRaw,
		room.Area, room.Perimeter, room.CeilingHeight,
		room.CostCategory, room.EstimatedCost, room.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return requireRowAffected(res, "room", room.RoomID)
}

// UpdateSortOrder 仅更新排序（不触发聚合）
func (r *PostgresRoomsRepository) UpdateSortOrder(ctx context.Context, roomID string, sortOrder int) error {
	query := `UPDATE rooms SET sort_order = $2, updated_at = NOW() WHERE room_id = $1::uuid`
	res, err := r.db.ExecContext(ctx, query, roomID, sortOrder)
	if err != nil {
		return fmt.Errorf("failed to update room sort order: %w", err)
	}
	return requireRowAffected(res, "room", roomID)
}

// Delete 删除房间行
func (r *PostgresRoomsRepository) Delete(ctx context.Context, roomID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = $1::uuid`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return requireRowAffected(res, "room", roomID)
}

// DeleteBySketch 删除草图下全部房间（sketch 级联用）
func (r *PostgresRoomsRepository) DeleteBySketch(ctx context.Context, sketchID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE sketch_id = $1::uuid`, sketchID)
	if err != nil {
		return fmt.Errorf("failed to delete rooms of sketch: %w", err)
	}
	return nil
}
