package domain

import (
	"database/sql"
)

// Wall 墙体领域模型（对应 walls 表）
// Length and Angle are derived from the endpoints when those are supplied;
// Area = Length × Height and EstimatedCost = Area × CostPerSqUnit are always
// derived, never written by callers.
type Wall struct {
	WallID string `db:"wall_id"` // UUID, PRIMARY KEY
	RoomID string `db:"room_id"` // FK rooms, NOT NULL

	// Endpoints in canvas-pixel space
	StartX float64 `db:"start_x"`
	StartY float64 `db:"start_y"`
	EndX   float64 `db:"end_x"`
	EndY   float64 `db:"end_y"`

	Length    float64 `db:"length"`    // derived from endpoints when absent
	Height    float64 `db:"height"`    // NOT NULL, default 0
	Thickness float64 `db:"thickness"` // NOT NULL, default 0
	Angle     float64 `db:"angle"`     // degrees in [0, 360), derived

	Area          float64 `db:"area"`             // Length × Height
	CostPerSqUnit float64 `db:"cost_per_sq_unit"` // NOT NULL, default 0
	EstimatedCost float64 `db:"estimated_cost"`   // Area × CostPerSqUnit, no markup

	SortOrder int `db:"sort_order"` // NOT NULL, default 0

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

// Start returns the start endpoint as a Point.
func (w *Wall) Start() Point { return Point{X: w.StartX, Y: w.StartY} }

// End returns the end endpoint as a Point.
func (w *Wall) End() Point { return Point{X: w.EndX, Y: w.EndY} }
