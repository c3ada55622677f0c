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

// RoomService 房间管理服务接口
// Every mutation recomputes the room's derived fields, persists them and
// refreshes the owning sketch's totals inside the same transaction.
type RoomService interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ListRooms(ctx context.Context, sketchID string) ([]*domain.Room, error)
	UpdateRoom(ctx context.Context, roomID string, req UpdateRoomRequest) (*domain.Room, error)
	// DeleteRoom cascades to the room's walls and fixtures.
	DeleteRoom(ctx context.Context, roomID string) error
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	SketchID      string          `json:"sketch_id"`
	Name          string          `json:"name"`
	Geometry      domain.Geometry `json:"geometry"`
	CeilingHeight float64         `json:"ceiling_height"`
	CostCategory  string          `json:"cost_category"`
	EstimatedCost float64         `json:"estimated_cost"`
	SortOrder     int             `json:"sort_order"`
}

// UpdateRoomRequest 更新房间请求（nil 字段表示不修改）
type UpdateRoomRequest struct {
	Name          *string          `json:"name"`
	Geometry      *domain.Geometry `json:"geometry"`
	CeilingHeight *float64         `json:"ceiling_height"`
	CostCategory  *string          `json:"cost_category"`
	EstimatedCost *float64         `json:"estimated_cost"`
	SortOrder     *int             `json:"sort_order"`
}

// roomService 实现
type roomService struct {
	store  repository.Store
	cache  *CostCache
	logger *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(store repository.Store, cache *CostCache, logger *zap.Logger) RoomService {
	return &roomService{store: store, cache: cache, logger: logger}
}

// buildRoom validates a create request and derives the room's area/perimeter.
// Shared by the single-entity path and the bulk coordinator.
func buildRoom(req CreateRoomRequest) (*domain.Room, error) {
	if req.SketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	if req.Name == "" {
		return nil, validationError("name is required")
	}
	if err := req.Geometry.Validate(); err != nil {
		return nil, validationError("%v", err)
	}
	if req.EstimatedCost < 0 {
		return nil, validationError("estimated_cost must not be negative")
	}

	// Area/perimeter are always derived, never trusted from the caller.
	area, perimeter, err := geometry.AreaPerimeter(req.Geometry)
	if err != nil {
		return nil, validationError("%v", err)
	}

	return &domain.Room{
		RoomID:        uuid.NewString(),
		SketchID:      req.SketchID,
		Name:          req.Name,
		Geometry:      req.Geometry,
		Area:          area,
		Perimeter:     perimeter,
		CeilingHeight: req.CeilingHeight,
		CostCategory:  nullString(req.CostCategory),
		EstimatedCost: req.EstimatedCost,
		SortOrder:     req.SortOrder,
	}, nil
}

func (s *roomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	room, err := buildRoom(req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		if err := requireEditableSketch(ctx, r, req.SketchID); err != nil {
			return err
		}
		if err := r.Rooms.Create(ctx, room); err != nil {
			return err
		}
		return recomputeSketchTotals(ctx, r, req.SketchID)
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, req.SketchID)
	s.logger.Info("room created",
		zap.String("room_id", room.RoomID),
		zap.String("sketch_id", room.SketchID),
		zap.Float64("area", room.Area))
	return room, nil
}

func (s *roomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, validationError("room_id is required")
	}
	room, err := s.store.Repos().Rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("room %s not found", roomID)
		}
		return nil, err
	}
	return room, nil
}

func (s *roomService) ListRooms(ctx context.Context, sketchID string) ([]*domain.Room, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	return s.store.Repos().Rooms.ListBySketch(ctx, sketchID)
}

func (s *roomService) UpdateRoom(ctx context.Context, roomID string, req UpdateRoomRequest) (*domain.Room, error) {
	if roomID == "" {
		return nil, validationError("room_id is required")
	}
	if req.Name != nil && *req.Name == "" {
		return nil, validationError("name must not be empty")
	}
	if req.Geometry != nil {
		if err := req.Geometry.Validate(); err != nil {
			return nil, validationError("%v", err)
		}
	}
	if req.EstimatedCost != nil && *req.EstimatedCost < 0 {
		return nil, validationError("estimated_cost must not be negative")
	}

	var updated *domain.Room
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		room, err := r.Rooms.Get(ctx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("room %s not found", roomID)
			}
			return err
		}
		if err := requireEditableSketch(ctx, r, room.SketchID); err != nil {
			return err
		}

		if req.Name != nil {
			room.Name = *req.Name
		}
		if req.Geometry != nil {
			room.Geometry = *req.Geometry
			area, perimeter, err := geometry.AreaPerimeter(room.Geometry)
			if err != nil {
				return validationError("%v", err)
			}
			room.Area = area
			room.Perimeter = perimeter
		}
		if req.CeilingHeight != nil {
			room.CeilingHeight = *req.CeilingHeight
		}
		if req.CostCategory != nil {
			room.CostCategory = nullString(*req.CostCategory)
		}
		if req.EstimatedCost != nil {
			room.EstimatedCost = *req.EstimatedCost
		}
		if req.SortOrder != nil {
			room.SortOrder = *req.SortOrder
		}

		if err := r.Rooms.Update(ctx, room); err != nil {
			return err
		}
		// Always recompute, even for writes that look cosmetic: stale totals
		// cost more than one extra pass over tens of rows.
		if err := recomputeSketchTotals(ctx, r, room.SketchID); err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, updated.SketchID)
	return updated, nil
}

func (s *roomService) DeleteRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return validationError("room_id is required")
	}
	var sketchID string
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		room, err := r.Rooms.Get(ctx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("room %s not found", roomID)
			}
			return err
		}
		sketchID = room.SketchID
		if err := r.Fixtures.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		if err := r.Walls.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		if err := r.Rooms.Delete(ctx, roomID); err != nil {
			return err
		}
		return recomputeSketchTotals(ctx, r, sketchID)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	s.logger.Info("room deleted",
		zap.String("room_id", roomID),
		zap.String("sketch_id", sketchID))
	return nil
}

// requireEditableSketch 校验父草图存在且未归档
func requireEditableSketch(ctx context.Context, r repository.Repos, sketchID string) error {
	sketch, err := r.Sketches.Get(ctx, sketchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return referentialError("sketch %s not found", sketchID)
		}
		return err
	}
	if sketch.Status == domain.StatusArchived {
		return statusError("sketch %s is archived", sketchID)
	}
	return nil
}
