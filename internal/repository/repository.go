package repository

import (
	"context"
	"database/sql"
	"errors"

	"homesketch-data/internal/domain"
)

// ErrNotFound 实体不存在
// Postgres repositories map sql.ErrNoRows onto this; services wrap it into
// their referential-error taxonomy.
var ErrNotFound = errors.New("not found")

// DBTX is the subset of database/sql used by the Postgres repositories,
// satisfied by both *sql.DB and *sql.Tx so the same repository code runs
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SketchesRepository 草图Repository接口
type SketchesRepository interface {
	Create(ctx context.Context, sketch *domain.Sketch) error
	Get(ctx context.Context, sketchID string) (*domain.Sketch, error)
	List(ctx context.Context, filters SketchFilters, page, size int) ([]*domain.Sketch, int, error)
	Update(ctx context.Context, sketch *domain.Sketch) error
	// UpdateTotals persists only the three derived totals; used by the
	// aggregation pass so it cannot clobber concurrent field edits.
	UpdateTotals(ctx context.Context, sketchID string, totals domain.Totals) error
	UpdateStatus(ctx context.Context, sketchID string, status domain.SketchStatus) error
	Delete(ctx context.Context, sketchID string) error
}

// SketchFilters 草图列表过滤器
type SketchFilters struct {
	Status     domain.SketchStatus
	IsTemplate *bool
	Search     string // fuzzy match on name
}

// RoomsRepository 房间Repository接口
type RoomsRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	ListBySketch(ctx context.Context, sketchID string) ([]*domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	UpdateSortOrder(ctx context.Context, roomID string, sortOrder int) error
	Delete(ctx context.Context, roomID string) error
	DeleteBySketch(ctx context.Context, sketchID string) error
}

// WallsRepository 墙体Repository接口
type WallsRepository interface {
	Create(ctx context.Context, wall *domain.Wall) error
	Get(ctx context.Context, wallID string) (*domain.Wall, error)
	ListByRoom(ctx context.Context, roomID string) ([]*domain.Wall, error)
	// ListBySketch crosses the rooms join; aggregation needs every wall of a
	// sketch in one pass.
	ListBySketch(ctx context.Context, sketchID string) ([]*domain.Wall, error)
	Update(ctx context.Context, wall *domain.Wall) error
	UpdateSortOrder(ctx context.Context, wallID string, sortOrder int) error
	Delete(ctx context.Context, wallID string) error
	DeleteByRoom(ctx context.Context, roomID string) error
}

// FixturesRepository 固定装置Repository接口
type FixturesRepository interface {
	Create(ctx context.Context, fixture *domain.Fixture) error
	Get(ctx context.Context, fixtureID string) (*domain.Fixture, error)
	ListByRoom(ctx context.Context, roomID string) ([]*domain.Fixture, error)
	Update(ctx context.Context, fixture *domain.Fixture) error
	UpdateSortOrder(ctx context.Context, fixtureID string, sortOrder int) error
	Delete(ctx context.Context, fixtureID string) error
	DeleteByRoom(ctx context.Context, roomID string) error
	// DeleteByWall implements the wall→fixture cascade: fixtures anchored to a
	// deleted wall go with it rather than becoming wall-less.
	DeleteByWall(ctx context.Context, wallID string) error
}

// MeasurementsRepository 测量项Repository接口
type MeasurementsRepository interface {
	Create(ctx context.Context, m *domain.Measurement) error
	Get(ctx context.Context, measurementID string) (*domain.Measurement, error)
	ListBySketch(ctx context.Context, sketchID string) ([]*domain.Measurement, error)
	Update(ctx context.Context, m *domain.Measurement) error
	Delete(ctx context.Context, measurementID string) error
	DeleteBySketch(ctx context.Context, sketchID string) error
}

// Repos 单事务内可见的各实体 Repository 集合
type Repos struct {
	Sketches     SketchesRepository
	Rooms        RoomsRepository
	Walls        WallsRepository
	Fixtures     FixturesRepository
	Measurements MeasurementsRepository
}

// Store supplies repositories plus the transaction boundary. Every mutating
// service call runs inside WithinTx: child writes first, then the ancestor
// aggregation, all committed or rolled back together.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
