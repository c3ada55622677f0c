package domain

import (
	"database/sql"
)

// Room 房间领域模型（对应 rooms 表）
// Area and Perimeter are derived from Geometry on every geometry write; caller
// supplied values are never trusted.
type Room struct {
	RoomID   string `db:"room_id"`   // UUID, PRIMARY KEY
	SketchID string `db:"sketch_id"` // FK sketches, NOT NULL

	Name     string   `db:"name"`     // NOT NULL
	Geometry Geometry `db:"geometry"` // JSONB, NOT NULL

	// Derived from Geometry (canvas-pixel units; real-world conversion is done
	// at read time through the sketch scale factor)
	Area      float64 `db:"area"`
	Perimeter float64 `db:"perimeter"`

	CeilingHeight float64        `db:"ceiling_height"` // NOT NULL, default 0
	CostCategory  sql.NullString `db:"cost_category"`
	EstimatedCost float64        `db:"estimated_cost"` // room-level material cost, no markup
	SortOrder     int            `db:"sort_order"`     // NOT NULL, default 0

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}
