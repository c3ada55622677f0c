package service

import (
	"context"
	"errors"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"

	"go.uber.org/zap"
)

// BulkService 批量操作协调器
// Every batch runs as one transaction: a single failure rolls the whole batch
// back, and aggregation runs once per distinct affected sketch, not once per
// entity.
type BulkService interface {
	BulkCreate(ctx context.Context, req BulkCreateRequest) (*BulkCreateResult, error)
	BulkUpdateSortOrder(ctx context.Context, entityType string, updates []SortOrderUpdate) error
	BulkDelete(ctx context.Context, entityType string, ids []string) error
}

// BulkCreateRequest 批量创建请求
// Walls and fixtures may reference rooms created in the same batch; creation
// order is rooms, walls, fixtures, measurements.
type BulkCreateRequest struct {
	Rooms        []CreateRoomRequest        `json:"rooms"`
	Walls        []CreateWallRequest        `json:"walls"`
	Fixtures     []CreateFixtureRequest     `json:"fixtures"`
	Measurements []CreateMeasurementRequest `json:"measurements"`
}

// BulkCreateResult 批量创建结果
type BulkCreateResult struct {
	Rooms        []*domain.Room        `json:"rooms"`
	Walls        []*domain.Wall        `json:"walls"`
	Fixtures     []*domain.Fixture     `json:"fixtures"`
	Measurements []*domain.Measurement `json:"measurements"`
}

// SortOrderUpdate 排序更新项
type SortOrderUpdate struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// bulkService 实现
type bulkService struct {
	store  repository.Store
	cache  *CostCache
	logger *zap.Logger
}

// NewBulkService 创建 BulkService 实例
func NewBulkService(store repository.Store, cache *CostCache, logger *zap.Logger) BulkService {
	return &bulkService{store: store, cache: cache, logger: logger}
}

func (s *bulkService) BulkCreate(ctx context.Context, req BulkCreateRequest) (*BulkCreateResult, error) {
	if len(req.Rooms)+len(req.Walls)+len(req.Fixtures)+len(req.Measurements) == 0 {
		return nil, validationError("batch is empty")
	}

	// Validate and derive everything up front so a malformed entity fails the
	// batch before any write happens.
	result := &BulkCreateResult{}
	for i, rr := range req.Rooms {
		room, err := buildRoom(rr)
		if err != nil {
			return nil, validationError("rooms[%d]: %v", i, err)
		}
		result.Rooms = append(result.Rooms, room)
	}
	for i, wr := range req.Walls {
		wall, err := buildWall(wr)
		if err != nil {
			return nil, validationError("walls[%d]: %v", i, err)
		}
		result.Walls = append(result.Walls, wall)
	}
	for i, fr := range req.Fixtures {
		fixture, err := buildFixture(fr)
		if err != nil {
			return nil, validationError("fixtures[%d]: %v", i, err)
		}
		result.Fixtures = append(result.Fixtures, fixture)
	}
	for i, mr := range req.Measurements {
		m, err := buildMeasurement(mr)
		if err != nil {
			return nil, validationError("measurements[%d]: %v", i, err)
		}
		result.Measurements = append(result.Measurements, m)
	}

	// affected drives the aggregation pass (rooms and walls feed totals);
	// touched is the superset for cache invalidation (fixtures and
	// measurements change breakdowns or sketch content, not totals).
	affected := map[string]struct{}{}
	touched := map[string]struct{}{}
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		checked := map[string]struct{}{}
		requireSketch := func(sketchID string) error {
			if _, ok := checked[sketchID]; ok {
				return nil
			}
			if err := requireEditableSketch(ctx, r, sketchID); err != nil {
				return err
			}
			checked[sketchID] = struct{}{}
			return nil
		}
		// Rooms first so that walls and fixtures in the same batch can refer
		// to them.
		for _, room := range result.Rooms {
			if err := requireSketch(room.SketchID); err != nil {
				return err
			}
			if err := r.Rooms.Create(ctx, room); err != nil {
				return err
			}
			affected[room.SketchID] = struct{}{}
			touched[room.SketchID] = struct{}{}
		}
		for _, wall := range result.Walls {
			sketchID, err := sketchForRoom(ctx, r, wall.RoomID)
			if err != nil {
				return err
			}
			if err := requireSketch(sketchID); err != nil {
				return err
			}
			if err := r.Walls.Create(ctx, wall); err != nil {
				return err
			}
			affected[sketchID] = struct{}{}
			touched[sketchID] = struct{}{}
		}
		for _, fixture := range result.Fixtures {
			sketchID, err := sketchForRoom(ctx, r, fixture.RoomID)
			if err != nil {
				return err
			}
			if err := requireSketch(sketchID); err != nil {
				return err
			}
			if err := checkWallBelongsToRoom(ctx, r, fixture.WallID, fixture.RoomID); err != nil {
				return err
			}
			if err := r.Fixtures.Create(ctx, fixture); err != nil {
				return err
			}
			touched[sketchID] = struct{}{}
		}
		for _, m := range result.Measurements {
			if err := requireSketch(m.SketchID); err != nil {
				return err
			}
			if err := r.Measurements.Create(ctx, m); err != nil {
				return err
			}
			touched[m.SketchID] = struct{}{}
		}
		// One aggregation pass per distinct sketch, not per entity.
		for sketchID := range affected {
			if err := recomputeSketchTotals(ctx, r, sketchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for sketchID := range touched {
		s.cache.InvalidateSketch(ctx, sketchID)
	}
	s.logger.Info("bulk create",
		zap.Int("rooms", len(result.Rooms)),
		zap.Int("walls", len(result.Walls)),
		zap.Int("fixtures", len(result.Fixtures)),
		zap.Int("measurements", len(result.Measurements)),
		zap.Int("sketches_touched", len(touched)))
	return result, nil
}

// BulkUpdateSortOrder reorders a sibling set. Sort order never feeds any
// derived field, so no aggregation runs.
func (s *bulkService) BulkUpdateSortOrder(ctx context.Context, entityType string, updates []SortOrderUpdate) error {
	if len(updates) == 0 {
		return validationError("updates is empty")
	}
	switch entityType {
	case "room", "wall", "fixture":
	default:
		return validationError("unknown entity type %q", entityType)
	}

	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		for _, u := range updates {
			if u.ID == "" {
				return validationError("update with empty id")
			}
			var err error
			switch entityType {
			case "room":
				err = r.Rooms.UpdateSortOrder(ctx, u.ID, u.SortOrder)
			case "wall":
				err = r.Walls.UpdateSortOrder(ctx, u.ID, u.SortOrder)
			case "fixture":
				err = r.Fixtures.UpdateSortOrder(ctx, u.ID, u.SortOrder)
			}
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return referentialError("%s %s not found", entityType, u.ID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("bulk sort order",
		zap.String("entity_type", entityType),
		zap.Int("count", len(updates)))
	return nil
}

func (s *bulkService) BulkDelete(ctx context.Context, entityType string, ids []string) error {
	if len(ids) == 0 {
		return validationError("ids is empty")
	}
	switch entityType {
	case "room", "wall", "fixture", "measurement":
	default:
		return validationError("unknown entity type %q", entityType)
	}

	affected := map[string]struct{}{}
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		for _, id := range ids {
			if id == "" {
				return validationError("delete with empty id")
			}
			// Resolve the ancestor sketch before deleting; afterwards the
			// ownership chain is gone.
			switch entityType {
			case "room":
				room, err := r.Rooms.Get(ctx, id)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return referentialError("room %s not found", id)
					}
					return err
				}
				affected[room.SketchID] = struct{}{}
				if err := r.Fixtures.DeleteByRoom(ctx, id); err != nil {
					return err
				}
				if err := r.Walls.DeleteByRoom(ctx, id); err != nil {
					return err
				}
				if err := r.Rooms.Delete(ctx, id); err != nil {
					return err
				}
			case "wall":
				wall, err := r.Walls.Get(ctx, id)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return referentialError("wall %s not found", id)
					}
					return err
				}
				sketchID, err := sketchForRoom(ctx, r, wall.RoomID)
				if err != nil {
					return err
				}
				affected[sketchID] = struct{}{}
				if err := r.Fixtures.DeleteByWall(ctx, id); err != nil {
					return err
				}
				if err := r.Walls.Delete(ctx, id); err != nil {
					return err
				}
			case "fixture":
				fixture, err := r.Fixtures.Get(ctx, id)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return referentialError("fixture %s not found", id)
					}
					return err
				}
				sketchID, err := sketchForRoom(ctx, r, fixture.RoomID)
				if err != nil {
					return err
				}
				affected[sketchID] = struct{}{}
				if err := r.Fixtures.Delete(ctx, id); err != nil {
					return err
				}
			case "measurement":
				m, err := r.Measurements.Get(ctx, id)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return referentialError("measurement %s not found", id)
					}
					return err
				}
				affected[m.SketchID] = struct{}{}
				if err := r.Measurements.Delete(ctx, id); err != nil {
					return err
				}
			}
		}
		// Measurements never feed totals, but an extra idempotent pass is
		// cheaper than special-casing them here.
		for sketchID := range affected {
			if err := recomputeSketchTotals(ctx, r, sketchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for sketchID := range affected {
		s.cache.InvalidateSketch(ctx, sketchID)
	}
	s.logger.Info("bulk delete",
		zap.String("entity_type", entityType),
		zap.Int("count", len(ids)),
		zap.Int("sketches_affected", len(affected)))
	return nil
}

// sketchForRoom resolves a room's owning sketch, mapping a missing room to a
// referential error.
func sketchForRoom(ctx context.Context, r repository.Repos, roomID string) (string, error) {
	room, err := r.Rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", referentialError("room %s not found", roomID)
		}
		return "", err
	}
	return room.SketchID, nil
}
