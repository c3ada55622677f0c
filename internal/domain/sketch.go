package domain

import (
	"database/sql"
)

// SketchStatus 生命周期状态（sketches.status 列）
type SketchStatus string

const (
	StatusDraft      SketchStatus = "draft"
	StatusInProgress SketchStatus = "in_progress"
	StatusCompleted  SketchStatus = "completed"
	StatusArchived   SketchStatus = "archived"
)

// Valid reports whether s is one of the four known lifecycle states.
func (s SketchStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether the status may move from s to next.
// Forward-only: draft → in_progress → completed → archived. Any non-archived
// state may jump straight to archived (archive substitutes for delete when the
// sketch is linked to a finalized estimate/invoice). No transition leaves archived.
func (s SketchStatus) CanTransition(next SketchStatus) bool {
	if s == StatusArchived {
		return false
	}
	if next == StatusArchived {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}

// Sketch 草图领域模型（对应 sketches 表）
// Totals are derived columns: recomputed from rooms/walls on every child
// mutation, never written directly by callers.
type Sketch struct {
	SketchID    string         `db:"sketch_id"` // UUID, PRIMARY KEY
	Name        string         `db:"name"`      // NOT NULL
	Description sql.NullString `db:"description"`

	// Canvas / scale
	ScaleFactor  float64 `db:"scale_factor"`  // pixels per real unit, NOT NULL, default 1
	ScaleUnit    string  `db:"scale_unit"`    // NOT NULL, default 'ft'
	CanvasWidth  float64 `db:"canvas_width"`  // NOT NULL, default 0
	CanvasHeight float64 `db:"canvas_height"` // NOT NULL, default 0

	// Derived totals (see AggregationService)
	TotalArea      float64 `db:"total_area"`
	TotalPerimeter float64 `db:"total_perimeter"`
	TotalWallArea  float64 `db:"total_wall_area"`

	// Workflow
	Status  SketchStatus `db:"status"`  // NOT NULL, default 'draft'
	Version int          `db:"version"` // NOT NULL, default 1, bumped on canvas-level changes

	// Non-owning references into the billing side
	EstimateID  sql.NullString `db:"estimate_id"`
	InvoiceID   sql.NullString `db:"invoice_id"`
	WorkOrderID sql.NullString `db:"work_order_id"`

	IsTemplate bool `db:"is_template"` // NOT NULL, default false

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

// Totals 草图三项汇总值
type Totals struct {
	TotalArea      float64
	TotalPerimeter float64
	TotalWallArea  float64
}
