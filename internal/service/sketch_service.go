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

// SketchService 草图管理服务接口
type SketchService interface {
	CreateSketch(ctx context.Context, req CreateSketchRequest) (*domain.Sketch, error)
	GetSketch(ctx context.Context, sketchID string) (*domain.Sketch, error)
	ListSketches(ctx context.Context, req ListSketchesRequest) (*ListSketchesResponse, error)
	UpdateSketch(ctx context.Context, sketchID string, req UpdateSketchRequest) (*domain.Sketch, error)
	UpdateSketchStatus(ctx context.Context, sketchID string, status domain.SketchStatus) (*domain.Sketch, error)
	// DeleteSketch cascades to rooms, walls, fixtures and measurements. A
	// sketch linked to a finalized estimate/invoice is archived instead of
	// deleted; the response says which happened.
	DeleteSketch(ctx context.Context, sketchID string) (*DeleteSketchResponse, error)
}

// CreateSketchRequest 创建草图请求
type CreateSketchRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ScaleFactor  float64 `json:"scale_factor"` // pixels per real unit; default 1
	ScaleUnit    string  `json:"scale_unit"`   // default 'ft'
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
	IsTemplate   bool    `json:"is_template"`
	EstimateID   string  `json:"estimate_id"`
	InvoiceID    string  `json:"invoice_id"`
	WorkOrderID  string  `json:"work_order_id"`
}

// ListSketchesRequest 草图列表请求
type ListSketchesRequest struct {
	Status     domain.SketchStatus `json:"status"`
	IsTemplate *bool               `json:"is_template"`
	Search     string              `json:"search"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
}

// ListSketchesResponse 草图列表响应
type ListSketchesResponse struct {
	Items []*domain.Sketch `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

// UpdateSketchRequest 更新草图请求（nil 字段表示不修改）
type UpdateSketchRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	ScaleFactor  *float64 `json:"scale_factor"`
	ScaleUnit    *string  `json:"scale_unit"`
	CanvasWidth  *float64 `json:"canvas_width"`
	CanvasHeight *float64 `json:"canvas_height"`
	IsTemplate   *bool    `json:"is_template"`
	EstimateID   *string  `json:"estimate_id"`   // empty string clears the link
	InvoiceID    *string  `json:"invoice_id"`    // empty string clears the link
	WorkOrderID  *string  `json:"work_order_id"` // empty string clears the link
}

// DeleteSketchResponse 删除草图响应
type DeleteSketchResponse struct {
	SketchID string `json:"sketch_id"`
	Archived bool   `json:"archived"` // true when archival substituted for delete
}

// sketchService 实现
type sketchService struct {
	store   repository.Store
	billing BillingChecker
	cache   *CostCache
	logger  *zap.Logger
}

// NewSketchService 创建 SketchService 实例
// billing may be nil: without a billing collaborator any estimate/invoice link
// is treated as finalized, so archival stays the conservative default.
func NewSketchService(store repository.Store, billing BillingChecker, cache *CostCache, logger *zap.Logger) SketchService {
	return &sketchService{store: store, billing: billing, cache: cache, logger: logger}
}

func (s *sketchService) CreateSketch(ctx context.Context, req CreateSketchRequest) (*domain.Sketch, error) {
	if req.Name == "" {
		return nil, validationError("name is required")
	}
	if req.ScaleFactor < 0 {
		return nil, validationError("scale_factor must not be negative")
	}
	scaleFactor := req.ScaleFactor
	if scaleFactor == 0 {
		scaleFactor = 1
	}
	scaleUnit := req.ScaleUnit
	if scaleUnit == "" {
		scaleUnit = "ft"
	}
	if !geometry.KnownUnit(scaleUnit) {
		return nil, validationError("unknown scale_unit %q", scaleUnit)
	}

	sketch := &domain.Sketch{
		SketchID:     uuid.NewString(),
		Name:         req.Name,
		Description:  nullString(req.Description),
		ScaleFactor:  scaleFactor,
		ScaleUnit:    scaleUnit,
		CanvasWidth:  req.CanvasWidth,
		CanvasHeight: req.CanvasHeight,
		Status:       domain.StatusDraft,
		Version:      1,
		EstimateID:   nullString(req.EstimateID),
		InvoiceID:    nullString(req.InvoiceID),
		WorkOrderID:  nullString(req.WorkOrderID),
		IsTemplate:   req.IsTemplate,
	}
	if err := s.store.Repos().Sketches.Create(ctx, sketch); err != nil {
		return nil, err
	}
	s.logger.Info("sketch created",
		zap.String("sketch_id", sketch.SketchID),
		zap.String("name", sketch.Name))
	return sketch, nil
}

func (s *sketchService) GetSketch(ctx context.Context, sketchID string) (*domain.Sketch, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	sketch, err := s.store.Repos().Sketches.Get(ctx, sketchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("sketch %s not found", sketchID)
		}
		return nil, err
	}
	return sketch, nil
}

func (s *sketchService) ListSketches(ctx context.Context, req ListSketchesRequest) (*ListSketchesResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, validationError("unknown status %q", req.Status)
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.Size
	if size < 1 {
		size = 50
	}
	items, total, err := s.store.Repos().Sketches.List(ctx, repository.SketchFilters{
		Status:     req.Status,
		IsTemplate: req.IsTemplate,
		Search:     req.Search,
	}, page, size)
	if err != nil {
		return nil, err
	}
	return &ListSketchesResponse{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *sketchService) UpdateSketch(ctx context.Context, sketchID string, req UpdateSketchRequest) (*domain.Sketch, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	if req.Name != nil && *req.Name == "" {
		return nil, validationError("name must not be empty")
	}
	if req.ScaleFactor != nil && *req.ScaleFactor <= 0 {
		return nil, validationError("scale_factor must be positive")
	}
	if req.ScaleUnit != nil && !geometry.KnownUnit(*req.ScaleUnit) {
		return nil, validationError("unknown scale_unit %q", *req.ScaleUnit)
	}

	var updated *domain.Sketch
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
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

		canvasChanged := false
		if req.Name != nil {
			sketch.Name = *req.Name
		}
		if req.Description != nil {
			sketch.Description = nullString(*req.Description)
		}
		if req.ScaleFactor != nil && *req.ScaleFactor != sketch.ScaleFactor {
			sketch.ScaleFactor = *req.ScaleFactor
			canvasChanged = true
		}
		if req.ScaleUnit != nil && *req.ScaleUnit != sketch.ScaleUnit {
			sketch.ScaleUnit = *req.ScaleUnit
			canvasChanged = true
		}
		if req.CanvasWidth != nil && *req.CanvasWidth != sketch.CanvasWidth {
			sketch.CanvasWidth = *req.CanvasWidth
			canvasChanged = true
		}
		if req.CanvasHeight != nil && *req.CanvasHeight != sketch.CanvasHeight {
			sketch.CanvasHeight = *req.CanvasHeight
			canvasChanged = true
		}
		if req.IsTemplate != nil {
			sketch.IsTemplate = *req.IsTemplate
		}
		if req.EstimateID != nil {
			sketch.EstimateID = nullString(*req.EstimateID)
		}
		if req.InvoiceID != nil {
			sketch.InvoiceID = nullString(*req.InvoiceID)
		}
		if req.WorkOrderID != nil {
			sketch.WorkOrderID = nullString(*req.WorkOrderID)
		}
		// Coarse concurrency marker: the version counter moves only on
		// canvas-level changes.
		if canvasChanged {
			sketch.Version++
		}
		if err := r.Sketches.Update(ctx, sketch); err != nil {
			return err
		}
		updated = sketch
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	return updated, nil
}

func (s *sketchService) UpdateSketchStatus(ctx context.Context, sketchID string, status domain.SketchStatus) (*domain.Sketch, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	if !status.Valid() {
		return nil, validationError("unknown status %q", status)
	}
	var updated *domain.Sketch
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		sketch, err := r.Sketches.Get(ctx, sketchID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return referentialError("sketch %s not found", sketchID)
			}
			return err
		}
		if !sketch.Status.CanTransition(status) {
			return statusError("cannot transition sketch %s from %s to %s", sketchID, sketch.Status, status)
		}
		if err := r.Sketches.UpdateStatus(ctx, sketchID, status); err != nil {
			return err
		}
		sketch.Status = status
		updated = sketch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *sketchService) DeleteSketch(ctx context.Context, sketchID string) (*DeleteSketchResponse, error) {
	if sketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	sketch, err := s.store.Repos().Sketches.Get(ctx, sketchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("sketch %s not found", sketchID)
		}
		return nil, err
	}

	archive, err := s.shouldArchive(ctx, sketch)
	if err != nil {
		return nil, err
	}
	if archive {
		if sketch.Status != domain.StatusArchived {
			if err := s.store.Repos().Sketches.UpdateStatus(ctx, sketchID, domain.StatusArchived); err != nil {
				return nil, err
			}
		}
		s.cache.InvalidateSketch(ctx, sketchID)
		s.logger.Info("sketch archived instead of deleted", zap.String("sketch_id", sketchID))
		return &DeleteSketchResponse{SketchID: sketchID, Archived: true}, nil
	}

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		rooms, err := r.Rooms.ListBySketch(ctx, sketchID)
		if err != nil {
			return err
		}
		for _, room := range rooms {
			if err := r.Fixtures.DeleteByRoom(ctx, room.RoomID); err != nil {
				return err
			}
			if err := r.Walls.DeleteByRoom(ctx, room.RoomID); err != nil {
				return err
			}
		}
		if err := r.Rooms.DeleteBySketch(ctx, sketchID); err != nil {
			return err
		}
		if err := r.Measurements.DeleteBySketch(ctx, sketchID); err != nil {
			return err
		}
		return r.Sketches.Delete(ctx, sketchID)
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSketch(ctx, sketchID)
	s.logger.Info("sketch deleted", zap.String("sketch_id", sketchID))
	return &DeleteSketchResponse{SketchID: sketchID, Archived: false}, nil
}

// shouldArchive decides delete-vs-archive. Without a billing collaborator any
// estimate/invoice link is treated as finalized, so data is never destroyed
// behind a workflow it cannot see.
func (s *sketchService) shouldArchive(ctx context.Context, sketch *domain.Sketch) (bool, error) {
	if !sketch.EstimateID.Valid && !sketch.InvoiceID.Valid {
		return false, nil
	}
	if s.billing == nil {
		return true, nil
	}
	if sketch.EstimateID.Valid {
		finalized, err := s.billing.EstimateFinalized(ctx, sketch.EstimateID.String)
		if err != nil {
			return false, err
		}
		if finalized {
			return true, nil
		}
	}
	if sketch.InvoiceID.Valid {
		finalized, err := s.billing.InvoiceFinalized(ctx, sketch.InvoiceID.String)
		if err != nil {
			return false, err
		}
		if finalized {
			return true, nil
		}
	}
	return false, nil
}
