package service

import (
	"context"
	"errors"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/geometry"
	"homesketch-data/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WallService 墙体管理服务接口
// Derivation chain on every write: endpoints → length/angle, length × height →
// area, area × cost_per_sq_unit → estimated_cost.
type WallService interface {
	CreateWall(ctx context.Context, req CreateWallRequest) (*domain.Wall, error)
	GetWall(ctx context.Context, wallID string) (*domain.Wall, error)
	ListWalls(ctx context.Context, roomID string) ([]*domain.Wall, error)
	UpdateWall(ctx context.Context, wallID string, req UpdateWallRequest) (*domain.Wall, error)
	// DeleteWall cascades to fixtures anchored on the wall.
	DeleteWall(ctx context.Context, wallID string) error
}

// CreateWallRequest 创建墙体请求
// Either endpoints or an explicit length must be supplied; when both are
// present the explicit length wins (the endpoints still set the angle).
type CreateWallRequest struct {
	RoomID        string        `json:"room_id"`
	StartPoint    *domain.Point `json:"start_point"`
	EndPoint      *domain.Point `json:"end_point"`
	Length        *float64      `json:"length"`
	Height        float64       `json:"height"`
	Thickness     float64       `json:"thickness"`
	CostPerSqUnit float64       `json:"cost_per_sq_unit"`
	SortOrder     int           `json:"sort_order"`
}

// UpdateWallRequest 更新墙体请求（nil 字段表示不修改）
type UpdateWallRequest struct {
	StartPoint    *domain.Point `json:"start_point"`
	EndPoint      *domain.Point `json:"end_point"`
	Length        *float64      `json:"length"`
	Height        *float64      `json:"height"`
	Thickness     *float64      `json:"thickness"`
	CostPerSqUnit *float64      `json:"cost_per_sq_unit"`
	SortOrder     *int          `json:"sort_order"`
}

// wallService 实现
type wallService struct {
	store  repository.Store
	cache  *CostCache
	logger *zap.Logger
}

// NewWallService 创建 WallService 实例
func NewWallService(store repository.Store, cache *CostCache, logger *zap.Logger) WallService {
	return &wallService{store: store, cache: cache, logger: logger}
}

// deriveWall re-runs the wall derivation chain in place.
// pointsChanged notes whether an endpoint moved this write; explicitLength is
// the caller-supplied length for this write, if any.
func deriveWall(wall *domain.Wall, pointsChanged bool, explicitLength *float64) {
	if explicitLength != nil {
		wall.Length = *explicitLength
	} else if pointsChanged {
		wall.Length = geometry.Distance(wall.Start(), wall.End())
	}
	if pointsChanged {
		wall.Angle = geometry.AngleDegrees(wall.Start(), wall.End())
	}
	wall.Area = wall.Length * wall.Height
	wall.EstimatedCost = wall.Area * wall.CostPerSqUnit
}

// buildWall validates a create request and runs the derivation chain.
// Shared by the single-entity path and the bulk coordinator.
func buildWall(req CreateWallRequest) (*domain.Wall, error) {
	if req.RoomID == "" {
		return nil, validationError("room_id is required")
	}
	hasPoints := req.StartPoint != nil && req.EndPoint != nil
	if (req.StartPoint == nil) != (req.EndPoint == nil) {
		return nil, validationError("start_point and end_point must be supplied together")
	}
	if !hasPoints && req.Length == nil {
		return nil, validationError("either endpoints or length is required")
	}
	if req.Length != nil && *req.Length < 0 {
		return nil, validationError("length must not be negative")
	}
	if req.Height < 0 {
		return nil, validationError("height must not be negative")
	}
	if req.CostPerSqUnit < 0 {
		return nil, validationError("cost_per_sq_unit must not be negative")
	}

	wall := &domain.Wall{
		WallID:        uuid.NewString(),
		RoomID:        req.RoomID,
		Height:        req.Height,
		Thickness:     req.Thickness,
		CostPerSqUnit: req.CostPerSqUnit,
		SortOrder:     req.SortOrder,
	}
	if hasPoints {
		wall.StartX, wall.StartY = req.StartPoint.X, req.StartPoint.Y
		wall.EndX, wall.EndY = req.EndPoint.X, req.EndPoint.Y
	}
	deriveWall(wall, hasPoints, req.Length)
	return wall, nil
}

func (s *wallService) CreateWall(ctx context.Context, req CreateWallRequest) (*domain.Wall, error) {
	wall, err := buildWall(req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		room, err := r.Rooms.Get(ctx, req.RoomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("room %s not found", req.RoomID)
			}
			return err
		}
		if err := requireEditableSketch(ctx, r, room.SketchID); err != nil {
			return err
		}
		if err := r.Walls.Create(ctx, wall); err != nil {
			return err
		}
		return recomputeSketchTotals(ctx, r, room.SketchID)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateForRoom(ctx, req.RoomID)
	s.logger.Info("wall created",
		zap.String("wall_id", wall.WallID),
		zap.String("room_id", wall.RoomID),
		zap.Float64("length", wall.Length))
	return wall, nil
}

func (s *wallService) GetWall(ctx context.Context, wallID string) (*domain.Wall, error) {
	if wallID == "" {
		return nil, validationError("wall_id is required")
	}
	wall, err := s.store.Repos().Walls.Get(ctx, wallID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("wall %s not found", wallID)
		}
		return nil, err
	}
	return wall, nil
}

func (s *wallService) ListWalls(ctx context.Context, roomID string) ([]*domain.Wall, error) {
	if roomID == "" {
		return nil, validationError("room_id is required")
	}
	return s.store.Repos().Walls.ListByRoom(ctx, roomID)
}

func (s *wallService) UpdateWall(ctx context.Context, wallID string, req UpdateWallRequest) (*domain.Wall, error) {
	if wallID == "" {
		return nil, validationError("wall_id is required")
	}
	if (req.StartPoint == nil) != (req.EndPoint == nil) {
		return nil, validationError("start_point and end_point must be supplied together")
	}
	if req.Length != nil && *req.Length < 0 {
		return nil, validationError("length must not be negative")
	}
	if req.Height != nil && *req.Height < 0 {
		return nil, validationError("height must not be negative")
	}
	if req.CostPerSqUnit != nil && *req.CostPerSqUnit < 0 {
		return nil, validationError("cost_per_sq_unit must not be negative")
	}

	var updated *domain.Wall
	var sketchID string
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		wall, err := r.Walls.Get(ctx, wallID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("wall %s not found", wallID)
			}
			return err
		}
		room, err := r.Rooms.Get(ctx, wall.RoomID)
		if err != nil {
			return err
		}
		sketchID = room.SketchID
		if err := requireEditableSketch(ctx, r, sketchID); err != nil {
			return err
		}

		pointsChanged := false
		if req.StartPoint != nil && req.EndPoint != nil {
			wall.StartX, wall.StartY = req.StartPoint.X, req.StartPoint.Y
			wall.EndX, wall.EndY = req.EndPoint.X, req.EndPoint.Y
			pointsChanged = true
		}
		if req.Height != nil {
			wall.Height = *req.Height
		}
		if req.Thickness != nil {
			wall.Thickness = *req.Thickness
		}
		if req.CostPerSqUnit != nil {
			wall.CostPerSqUnit = *req.CostPerSqUnit
		}
		if req.SortOrder != nil {
			wall.SortOrder = *req.SortOrder
		}
		deriveWall(wall, pointsChanged, req.Length)

		if err := r.Walls.Update(ctx, wall); err != nil {
			return err
		}
		if err := recomputeSketchTotals(ctx, r, sketchID); err != nil {
			return err
		}
		updated = wall
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	return updated, nil
}

func (s *wallService) DeleteWall(ctx context.Context, wallID string) error {
	if wallID == "" {
		return validationError("wall_id is required")
	}
	var sketchID string
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		wall, err := r.Walls.Get(ctx, wallID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("wall %s not found", wallID)
			}
			return err
		}
		room, err := r.Rooms.Get(ctx, wall.RoomID)
		if err != nil {
			return err
		}
		sketchID = room.SketchID
		// Fixtures anchored on the wall go with it.
		if err := r.Fixtures.DeleteByWall(ctx, wallID); err != nil {
			return err
		}
		if err := r.Walls.Delete(ctx, wallID); err != nil {
			return err
		}
		return recomputeSketchTotals(ctx, r, sketchID)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	s.logger.Info("wall deleted",
		zap.String("wall_id", wallID),
		zap.String("sketch_id", sketchID))
	return nil
}

// invalidateForRoom resolves the owning sketch outside the mutation tx purely
// for cache invalidation.
func (s *wallService) invalidateForRoom(ctx context.Context, roomID string) {
	room, err := s.store.Repos().Rooms.Get(ctx, roomID)
	if err != nil {
		return
	}
	s.cache.InvalidateSketch(ctx, room.SketchID)
}
