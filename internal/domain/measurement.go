package domain

import (
	"database/sql"
)

// MeasurementType 测量项类型
type MeasurementType string

const (
	MeasurementLinear MeasurementType = "linear"
	MeasurementArea   MeasurementType = "area"
	MeasurementAngle  MeasurementType = "angle"
	MeasurementRadius MeasurementType = "radius"
)

// Valid reports whether t is a known measurement type.
func (t MeasurementType) Valid() bool {
	switch t {
	case MeasurementLinear, MeasurementArea, MeasurementAngle, MeasurementRadius:
		return true
	}
	return false
}

// Measurement 独立测量项领域模型（对应 measurements 表）
// Owned by a Sketch, not a Room. The associated-entity reference is context
// only: it never participates in aggregation and is not a FK.
type Measurement struct {
	MeasurementID string `db:"measurement_id"` // UUID, PRIMARY KEY
	SketchID      string `db:"sketch_id"`      // FK sketches, NOT NULL

	Type  MeasurementType `db:"type"`  // NOT NULL
	Value float64         `db:"value"` // NOT NULL
	Unit  string          `db:"unit"`  // NOT NULL, default 'ft'

	// Optional anchor points in canvas-pixel space
	StartX sql.NullFloat64 `db:"start_x"`
	StartY sql.NullFloat64 `db:"start_y"`
	EndX   sql.NullFloat64 `db:"end_x"`
	EndY   sql.NullFloat64 `db:"end_y"`

	Label sql.NullString `db:"label"`

	// Context-only reference (room/wall/fixture)
	AssociatedEntityType sql.NullString `db:"associated_entity_type"`
	AssociatedEntityID   sql.NullString `db:"associated_entity_id"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}
