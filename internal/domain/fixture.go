package domain

import (
	"database/sql"
)

// Fixture 固定装置领域模型（对应 fixtures 表）
// Owned by a Room; WallID is an optional non-owning reference and, when set,
// must point at a wall of the same room. TotalCost = UnitCost +
// InstallationCost, always derived.
type Fixture struct {
	FixtureID string         `db:"fixture_id"` // UUID, PRIMARY KEY
	RoomID    string         `db:"room_id"`    // FK rooms, NOT NULL
	WallID    sql.NullString `db:"wall_id"`    // FK walls, nullable; same room as RoomID

	Name        string `db:"name"`         // NOT NULL
	FixtureType string `db:"fixture_type"` // NOT NULL, default 'other'

	// Position in canvas-pixel space, physical dimensions in real units
	X      float64 `db:"x"`
	Y      float64 `db:"y"`
	Width  float64 `db:"width"`
	Height float64 `db:"height"`
	Depth  float64 `db:"depth"`

	UnitCost         float64 `db:"unit_cost"`         // material, NOT NULL, default 0
	InstallationCost float64 `db:"installation_cost"` // labor, NOT NULL, default 0
	TotalCost        float64 `db:"total_cost"`        // UnitCost + InstallationCost

	SortOrder int `db:"sort_order"` // NOT NULL, default 0

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}
