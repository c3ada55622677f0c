package service

import (
	"context"
	"database/sql"
	"errors"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FixtureService 固定装置管理服务接口
// TotalCost = UnitCost + InstallationCost on every write. A wall reference,
// when present, must point at a wall of the fixture's own room.
type FixtureService interface {
	CreateFixture(ctx context.Context, req CreateFixtureRequest) (*domain.Fixture, error)
	GetFixture(ctx context.Context, fixtureID string) (*domain.Fixture, error)
	ListFixtures(ctx context.Context, roomID string) ([]*domain.Fixture, error)
	UpdateFixture(ctx context.Context, fixtureID string, req UpdateFixtureRequest) (*domain.Fixture, error)
	DeleteFixture(ctx context.Context, fixtureID string) error
}

// CreateFixtureRequest 创建固定装置请求
type CreateFixtureRequest struct {
	RoomID           string  `json:"room_id"`
	WallID           string  `json:"wall_id"` // optional; must belong to RoomID
	Name             string  `json:"name"`
	FixtureType      string  `json:"fixture_type"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Depth            float64 `json:"depth"`
	UnitCost         float64 `json:"unit_cost"`
	InstallationCost float64 `json:"installation_cost"`
	SortOrder        int     `json:"sort_order"`
}

// UpdateFixtureRequest 更新固定装置请求（nil 字段表示不修改）
type UpdateFixtureRequest struct {
	WallID           *string  `json:"wall_id"` // empty string clears the anchor
	Name             *string  `json:"name"`
	FixtureType      *string  `json:"fixture_type"`
	X                *float64 `json:"x"`
	Y                *float64 `json:"y"`
	Width            *float64 `json:"width"`
	Height           *float64 `json:"height"`
	Depth            *float64 `json:"depth"`
	UnitCost         *float64 `json:"unit_cost"`
	InstallationCost *float64 `json:"installation_cost"`
	SortOrder        *int     `json:"sort_order"`
}

// fixtureService 实现
type fixtureService struct {
	store  repository.Store
	cache  *CostCache
	logger *zap.Logger
}

// NewFixtureService 创建 FixtureService 实例
func NewFixtureService(store repository.Store, cache *CostCache, logger *zap.Logger) FixtureService {
	return &fixtureService{store: store, cache: cache, logger: logger}
}

// buildFixture validates a create request and derives the total cost. The
// wall-to-room referential check happens later, inside the transaction.
func buildFixture(req CreateFixtureRequest) (*domain.Fixture, error) {
	if req.RoomID == "" {
		return nil, validationError("room_id is required")
	}
	if req.Name == "" {
		return nil, validationError("name is required")
	}
	if req.UnitCost < 0 || req.InstallationCost < 0 {
		return nil, validationError("costs must not be negative")
	}
	fixtureType := req.FixtureType
	if fixtureType == "" {
		fixtureType = "other"
	}

	return &domain.Fixture{
		FixtureID:        uuid.NewString(),
		RoomID:           req.RoomID,
		WallID:           nullString(req.WallID),
		Name:             req.Name,
		FixtureType:      fixtureType,
		X:                req.X,
		Y:                req.Y,
		Width:            req.Width,
		Height:           req.Height,
		Depth:            req.Depth,
		UnitCost:         req.UnitCost,
		InstallationCost: req.InstallationCost,
		TotalCost:        req.UnitCost + req.InstallationCost,
		SortOrder:        req.SortOrder,
	}, nil
}

func (s *fixtureService) CreateFixture(ctx context.Context, req CreateFixtureRequest) (*domain.Fixture, error) {
	fixture, err := buildFixture(req)
	if err != nil {
		return nil, err
	}

	var sketchID string
	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		room, err := r.Rooms.Get(ctx, req.RoomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("room %s not found", req.RoomID)
			}
			return err
		}
		sketchID = room.SketchID
		if err := requireEditableSketch(ctx, r, sketchID); err != nil {
			return err
		}
		if err := checkWallBelongsToRoom(ctx, r, fixture.WallID, req.RoomID); err != nil {
			return err
		}
		return r.Fixtures.Create(ctx, fixture)
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	s.logger.Info("fixture created",
		zap.String("fixture_id", fixture.FixtureID),
		zap.String("room_id", fixture.RoomID))
	return fixture, nil
}

func (s *fixtureService) GetFixture(ctx context.Context, fixtureID string) (*domain.Fixture, error) {
	if fixtureID == "" {
		return nil, validationError("fixture_id is required")
	}
	fixture, err := s.store.Repos().Fixtures.Get(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("fixture %s not found", fixtureID)
		}
		return nil, err
	}
	return fixture, nil
}

func (s *fixtureService) ListFixtures(ctx context.Context, roomID string) ([]*domain.Fixture, error) {
	if roomID == "" {
		return nil, validationError("room_id is required")
	}
	return s.store.Repos().Fixtures.ListByRoom(ctx, roomID)
}

func (s *fixtureService) UpdateFixture(ctx context.Context, fixtureID string, req UpdateFixtureRequest) (*domain.Fixture, error) {
	if fixtureID == "" {
		return nil, validationError("fixture_id is required")
	}
	if req.Name != nil && *req.Name == "" {
		return nil, validationError("name must not be empty")
	}
	if req.UnitCost != nil && *req.UnitCost < 0 {
		return nil, validationError("unit_cost must not be negative")
	}
	if req.InstallationCost != nil && *req.InstallationCost < 0 {
		return nil, validationError("installation_cost must not be negative")
	}

	var updated *domain.Fixture
	var sketchID string
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		fixture, err := r.Fixtures.Get(ctx, fixtureID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("fixture %s not found", fixtureID)
			}
			return err
		}
		room, err := r.Rooms.Get(ctx, fixture.RoomID)
		if err != nil {
			return err
		}
		sketchID = room.SketchID
		if err := requireEditableSketch(ctx, r, sketchID); err != nil {
			return err
		}

		if req.WallID != nil {
			fixture.WallID = nullString(*req.WallID)
			if err := checkWallBelongsToRoom(ctx, r, fixture.WallID, fixture.RoomID); err != nil {
				return err
			}
		}
		if req.Name != nil {
			fixture.Name = *req.Name
		}
		if req.FixtureType != nil {
			fixture.FixtureType = *req.FixtureType
		}
		if req.X != nil {
			fixture.X = *req.X
		}
		if req.Y != nil {
			fixture.Y = *req.Y
		}
		if req.Width != nil {
			fixture.Width = *req.Width
		}
		if req.Height != nil {
			fixture.Height = *req.Height
		}
		if req.Depth != nil {
			fixture.Depth = *req.Depth
		}
		if req.UnitCost != nil {
			fixture.UnitCost = *req.UnitCost
		}
		if req.InstallationCost != nil {
			fixture.InstallationCost = *req.InstallationCost
		}
		if req.SortOrder != nil {
			fixture.SortOrder = *req.SortOrder
		}
		fixture.TotalCost = fixture.UnitCost + fixture.InstallationCost

		if err := r.Fixtures.Update(ctx, fixture); err != nil {
			return err
		}
		updated = fixture
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	return updated, nil
}

func (s *fixtureService) DeleteFixture(ctx context.Context, fixtureID string) error {
	if fixtureID == "" {
		return validationError("fixture_id is required")
	}
	var sketchID string
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		fixture, err := r.Fixtures.Get(ctx, fixtureID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("fixture %s not found", fixtureID)
			}
			return err
		}
		room, err := r.Rooms.Get(ctx, fixture.RoomID)
		if err != nil {
			return err
		}
		sketchID = room.SketchID
		return r.Fixtures.Delete(ctx, fixtureID)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	s.logger.Info("fixture deleted", zap.String("fixture_id", fixtureID))
	return nil
}

// checkWallBelongsToRoom 校验 wall 引用与 room 的一致性
// A fixture may reference a wall only within its own room; anything else is a
// referential error, distinct from malformed input.
func checkWallBelongsToRoom(ctx context.Context, r repository.Repos, wallID sql.NullString, roomID string) error {
	if !wallID.Valid {
		return nil
	}
	wall, err := r.Walls.Get(ctx, wallID.String)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return referentialError("wall %s not found", wallID.String)
		}
		return err
	}
	if wall.RoomID != roomID {
		return referentialError("wall %s belongs to room %s, not room %s", wall.WallID, wall.RoomID, roomID)
	}
	return nil
}
