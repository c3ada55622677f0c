package service

import (
	"context"
	"errors"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DuplicateService 草图深拷贝服务接口
// A duplicate is an independent new draft: fresh identities for the whole
// graph, workflow state reset, billing links cleared.
type DuplicateService interface {
	DuplicateSketch(ctx context.Context, sketchID, newName string) (*domain.Sketch, error)
}

// duplicateService 实现
type duplicateService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewDuplicateService 创建 DuplicateService 实例
func NewDuplicateService(store repository.Store, logger *zap.Logger) DuplicateService {
	return &duplicateService{store: store, logger: logger}
}

func (s *duplicateService) DuplicateSketch(ctx context.Context, sketchID, newName string) (*domain.Sketch, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	if newName == "" {
		return nil, validationError("new name is required")
	}

	var newSketch *domain.Sketch
	counts := struct{ rooms, walls, fixtures, measurements int }{}
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		source, err := r.Sketches.Get(ctx, sketchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("sketch %s not found", sketchID)
			}
			return err
		}

		// Copy canvas and totals; reset workflow state. A duplicate of a
		// template is an ordinary sketch.
		dup := &domain.Sketch{
			SketchID:       uuid.NewString(),
			Name:           newName,
			Description:    source.Description,
			ScaleFactor:    source.ScaleFactor,
			ScaleUnit:      source.ScaleUnit,
			CanvasWidth:    source.CanvasWidth,
			CanvasHeight:   source.CanvasHeight,
			TotalArea:      source.TotalArea,
			TotalPerimeter: source.TotalPerimeter,
			TotalWallArea:  source.TotalWallArea,
			Status:         domain.StatusDraft,
			Version:        1,
			IsTemplate:     false,
		}
		if err := r.Sketches.Create(ctx, dup); err != nil {
			return err
		}

		rooms, err := r.Rooms.ListBySketch(ctx, sketchID)
		if err != nil {
			return err
		}
		// Walls must exist before fixtures; fixtures re-point at the new wall
		// identities through this map.
		wallIDMap := map[string]string{}
		for _, room := range rooms {
			newRoom := &domain.Room{
				RoomID:        uuid.NewString(),
				SketchID:      dup.SketchID,
				Name:          room.Name,
				Geometry:      cloneGeometry(room.Geometry),
				Area:          room.Area,
				Perimeter:     room.Perimeter,
				CeilingHeight: room.CeilingHeight,
				CostCategory:  room.CostCategory,
				EstimatedCost: room.EstimatedCost,
				SortOrder:     room.SortOrder,
			}
			if err := r.Rooms.Create(ctx, newRoom); err != nil {
				return err
			}
			counts.rooms++

			walls, err := r.Walls.ListByRoom(ctx, room.RoomID)
			if err != nil {
				return err
			}
			for _, wall := range walls {
				newWall := &domain.Wall{
					WallID:        uuid.NewString(),
					RoomID:        newRoom.RoomID,
					StartX:        wall.StartX,
					StartY:        wall.StartY,
					EndX:          wall.EndX,
					EndY:          wall.EndY,
					Length:        wall.Length,
					Height:        wall.Height,
					Thickness:     wall.Thickness,
					Angle:         wall.Angle,
					Area:          wall.Area,
					CostPerSqUnit: wall.CostPerSqUnit,
					EstimatedCost: wall.EstimatedCost,
					SortOrder:     wall.SortOrder,
				}
				if err := r.Walls.Create(ctx, newWall); err != nil {
					return err
				}
				wallIDMap[wall.WallID] = newWall.WallID
				counts.walls++
			}

			fixtures, err := r.Fixtures.ListByRoom(ctx, room.RoomID)
			if err != nil {
				return err
			}
			for _, fixture := range fixtures {
				newFixture := &domain.Fixture{
					FixtureID:        uuid.NewString(),
					RoomID:           newRoom.RoomID,
					Name:             fixture.Name,
					FixtureType:      fixture.FixtureType,
					X:                fixture.X,
					Y:                fixture.Y,
					Width:            fixture.Width,
					Height:           fixture.Height,
					Depth:            fixture.Depth,
					UnitCost:         fixture.UnitCost,
					InstallationCost: fixture.InstallationCost,
					TotalCost:        fixture.TotalCost,
					SortOrder:        fixture.SortOrder,
				}
				if fixture.WallID.Valid {
					newFixture.WallID = nullString(wallIDMap[fixture.WallID.String])
				}
				if err := r.Fixtures.Create(ctx, newFixture); err != nil {
					return err
				}
				counts.fixtures++
			}
		}

		measurements, err := r.Measurements.ListBySketch(ctx, sketchID)
		if err != nil {
			return err
		}
		for _, m := range measurements {
			newM := &domain.Measurement{
				MeasurementID:        uuid.NewString(),
				SketchID:             dup.SketchID,
				Type:                 m.Type,
				Value:                m.Value,
				Unit:                 m.Unit,
				StartX:               m.StartX,
				StartY:               m.StartY,
				EndX:                 m.EndX,
				EndY:                 m.EndY,
				Label:                m.Label,
				AssociatedEntityType: m.AssociatedEntityType,
				AssociatedEntityID:   m.AssociatedEntityID,
			}
			if err := r.Measurements.Create(ctx, newM); err != nil {
				return err
			}
			counts.measurements++
		}

		newSketch = dup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sketch duplicated",
		zap.String("source_sketch_id", sketchID),
		zap.String("new_sketch_id", newSketch.SketchID),
		zap.Int("rooms", counts.rooms),
		zap.Int("walls", counts.walls),
		zap.Int("fixtures", counts.fixtures),
		zap.Int("measurements", counts.measurements))
	return newSketch, nil
}

// cloneGeometry copies a geometry value without sharing the points slice.
func cloneGeometry(g domain.Geometry) domain.Geometry {
	out := g
	if g.Points != nil {
		out.Points = make([]domain.Point, len(g.Points))
		copy(out.Points, g.Points)
	}
	return out
}
