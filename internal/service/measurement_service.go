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

// MeasurementService 独立测量项管理服务接口
// Measurements never participate in aggregation; they are sketch-owned
// annotations.
type MeasurementService interface {
	CreateMeasurement(ctx context.Context, req CreateMeasurementRequest) (*domain.Measurement, error)
	GetMeasurement(ctx context.Context, measurementID string) (*domain.Measurement, error)
	ListMeasurements(ctx context.Context, sketchID string) ([]*domain.Measurement, error)
	UpdateMeasurement(ctx context.Context, measurementID string, req UpdateMeasurementRequest) (*domain.Measurement, error)
	DeleteMeasurement(ctx context.Context, measurementID string) error
}

// CreateMeasurementRequest 创建测量项请求
type CreateMeasurementRequest struct {
	SketchID             string                 `json:"sketch_id"`
	Type                 domain.MeasurementType `json:"type"`
	Value                float64                `json:"value"`
	Unit                 string                 `json:"unit"`
	StartPoint           *domain.Point          `json:"start_point"`
	EndPoint             *domain.Point          `json:"end_point"`
	Label                string                 `json:"label"`
	AssociatedEntityType string                 `json:"associated_entity_type"` // room|wall|fixture
	AssociatedEntityID   string                 `json:"associated_entity_id"`
}

// UpdateMeasurementRequest 更新测量项请求（nil 字段表示不修改）
type UpdateMeasurementRequest struct {
	Type       *domain.MeasurementType `json:"type"`
	Value      *float64                `json:"value"`
	Unit       *string                 `json:"unit"`
	StartPoint *domain.Point           `json:"start_point"`
	EndPoint   *domain.Point           `json:"end_point"`
	Label      *string                 `json:"label"`
}

// measurementService 实现
type measurementService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewMeasurementService 创建 MeasurementService 实例
func NewMeasurementService(store repository.Store, logger *zap.Logger) MeasurementService {
	return &measurementService{store: store, logger: logger}
}

// buildMeasurement validates a create request, deriving linear values from
// the anchor points when the caller leaves the value at zero. Shared by the
// single-entity path and the bulk coordinator.
func buildMeasurement(req CreateMeasurementRequest) (*domain.Measurement, error) {
	if req.SketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	if !req.Type.Valid() {
		return nil, validationError("unknown measurement type %q", req.Type)
	}
	unit := req.Unit
	if unit == "" {
		unit = "ft"
	}
	if !geometry.KnownUnit(unit) {
		return nil, validationError("unknown unit %q", unit)
	}
	if req.AssociatedEntityType != "" {
		switch req.AssociatedEntityType {
		case "room", "wall", "fixture":
		default:
			return nil, validationError("unknown associated_entity_type %q", req.AssociatedEntityType)
		}
	}

	m := &domain.Measurement{
		MeasurementID:        uuid.NewString(),
		SketchID:             req.SketchID,
		Type:                 req.Type,
		Value:                req.Value,
		Unit:                 unit,
		Label:                nullString(req.Label),
		AssociatedEntityType: nullString(req.AssociatedEntityType),
		AssociatedEntityID:   nullString(req.AssociatedEntityID),
	}
	if req.StartPoint != nil {
		m.StartX = nullFloat(&req.StartPoint.X)
		m.StartY = nullFloat(&req.StartPoint.Y)
	}
	if req.EndPoint != nil {
		m.EndX = nullFloat(&req.EndPoint.X)
		m.EndY = nullFloat(&req.EndPoint.Y)
	}
	// Linear measurements with both anchors derive their value from the
	// anchors, same rule as wall endpoints.
	if req.Type == domain.MeasurementLinear && req.StartPoint != nil && req.EndPoint != nil && req.Value == 0 {
		m.Value = geometry.Distance(*req.StartPoint, *req.EndPoint)
	}
	return m, nil
}

func (s *measurementService) CreateMeasurement(ctx context.Context, req CreateMeasurementRequest) (*domain.Measurement, error) {
	m, err := buildMeasurement(req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		if err := requireEditableSketch(ctx, r, req.SketchID); err != nil {
			return err
		}
		return r.Measurements.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("measurement created",
		zap.String("measurement_id", m.MeasurementID),
		zap.String("sketch_id", m.SketchID),
		zap.String("type", string(m.Type)))
	return m, nil
}

func (s *measurementService) GetMeasurement(ctx context.Context, measurementID string) (*domain.Measurement, error) {
	if measurementID == "" {
		return nil, validationError("measurement_id is required")
	}
	m, err := s.store.Repos().Measurements.Get(ctx, measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("measurement %s not found", measurementID)
		}
		return nil, err
	}
	return m, nil
}

func (s *measurementService) ListMeasurements(ctx context.Context, sketchID string) ([]*domain.Measurement, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	return s.store.Repos().Measurements.ListBySketch(ctx, sketchID)
}

func (s *measurementService) UpdateMeasurement(ctx context.Context, measurementID string, req UpdateMeasurementRequest) (*domain.Measurement, error) {
	if measurementID == "" {
		return nil, validationError("measurement_id is required")
	}
	if req.Type != nil && !req.Type.Valid() {
		return nil, validationError("unknown measurement type %q", *req.Type)
	}
	if req.Unit != nil && !geometry.KnownUnit(*req.Unit) {
		return nil, validationError("unknown unit %q", *req.Unit)
	}

	var updated *domain.Measurement
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		m, err := r.Measurements.Get(ctx, measurementID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("measurement %s not found", measurementID)
			}
			return err
		}
		if err := requireEditableSketch(ctx, r, m.SketchID); err != nil {
			return err
		}
		if req.Type != nil {
			m.Type = *req.Type
		}
		if req.Value != nil {
			m.Value = *req.Value
		}
		if req.Unit != nil {
			m.Unit = *req.Unit
		}
		if req.StartPoint != nil {
			m.StartX = nullFloat(&req.StartPoint.X)
			m.StartY = nullFloat(&req.StartPoint.Y)
		}
		if req.EndPoint != nil {
			m.EndX = nullFloat(&req.EndPoint.X)
			m.EndY = nullFloat(&req.EndPoint.Y)
		}
		if req.Label != nil {
			m.Label = nullString(*req.Label)
		}
		if err := r.Measurements.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *measurementService) DeleteMeasurement(ctx context.Context, measurementID string) error {
	if measurementID == "" {
		return validationError("measurement_id is required")
	}
	err := s.store.Repos().Measurements.Delete(ctx, measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return referentialError("measurement %s not found", measurementID)
		}
		return err
	}
	s.logger.Info("measurement deleted", zap.String("measurement_id", measurementID))
	return nil
}
