package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"
	"homesketch-data/internal/store"

	"go.uber.org/zap"
)

// CostService 成本汇总服务接口
type CostService interface {
	// CalculateSketchCosts rolls wall/fixture/room costs up to sketch level.
	// Markup applies exactly once on top of the material+labor subtotal;
	// per-entity estimated/total cost fields never include markup.
	CalculateSketchCosts(ctx context.Context, req CostRequest) (*CostBreakdown, error)
}

// CostRequest 成本计算请求
type CostRequest struct {
	SketchID         string  `json:"sketch_id"`
	IncludeLabor     bool    `json:"include_labor"`
	IncludeMaterials bool    `json:"include_materials"`
	MarkupPercentage float64 `json:"markup_percentage"`
}

// FixtureCostLine 单个固定装置成本行
type FixtureCostLine struct {
	FixtureID string  `json:"fixture_id"`
	Name      string  `json:"name"`
	UnitCost  float64 `json:"unit_cost"`
	LaborCost float64 `json:"labor_cost"`
	TotalCost float64 `json:"total_cost"`
}

// RoomCostLine 单个房间成本行
type RoomCostLine struct {
	RoomID       string            `json:"room_id"`
	Name         string            `json:"name"`
	MaterialCost float64           `json:"material_cost"`
	LaborCost    float64           `json:"labor_cost"`
	TotalCost    float64           `json:"total_cost"`
	Fixtures     []FixtureCostLine `json:"fixtures"`
}

// CostBreakdown 草图成本汇总
type CostBreakdown struct {
	SketchID         string         `json:"sketch_id"`
	IncludeLabor     bool           `json:"include_labor"`
	IncludeMaterials bool           `json:"include_materials"`
	MarkupPercentage float64        `json:"markup_percentage"`
	TotalMaterials   float64        `json:"total_materials"`
	TotalLabor       float64        `json:"total_labor"`
	Subtotal         float64        `json:"subtotal"`
	MarkupAmount     float64        `json:"markup_amount"`
	TotalCost        float64        `json:"total_cost"`
	Rooms            []RoomCostLine `json:"rooms"`
}

// ComputeCostBreakdown is the pure roll-up: walls and room-level costs count
// as materials, fixture unit cost as materials, fixture installation as labor.
func ComputeCostBreakdown(
	sketchID string,
	rooms []*domain.Room,
	wallsByRoom map[string][]*domain.Wall,
	fixturesByRoom map[string][]*domain.Fixture,
	includeLabor, includeMaterials bool,
	markupPercentage float64,
) *CostBreakdown {
	b := &CostBreakdown{
		SketchID:         sketchID,
		IncludeLabor:     includeLabor,
		IncludeMaterials: includeMaterials,
		MarkupPercentage: markupPercentage,
		Rooms:            []RoomCostLine{},
	}
	for _, room := range rooms {
		line := RoomCostLine{RoomID: room.RoomID, Name: room.Name, Fixtures: []FixtureCostLine{}}
		if includeMaterials {
			for _, wall := range wallsByRoom[room.RoomID] {
				line.MaterialCost += wall.EstimatedCost
			}
			line.MaterialCost += room.EstimatedCost
		}
		for _, fixture := range fixturesByRoom[room.RoomID] {
			fl := FixtureCostLine{FixtureID: fixture.FixtureID, Name: fixture.Name}
			if includeMaterials {
				fl.UnitCost = fixture.UnitCost
				line.MaterialCost += fixture.UnitCost
			}
			if includeLabor {
				fl.LaborCost = fixture.InstallationCost
				line.LaborCost += fixture.InstallationCost
			}
			fl.TotalCost = fl.UnitCost + fl.LaborCost
			line.Fixtures = append(line.Fixtures, fl)
		}
		line.TotalCost = line.MaterialCost + line.LaborCost
		b.TotalMaterials += line.MaterialCost
		b.TotalLabor += line.LaborCost
		b.Rooms = append(b.Rooms, line)
	}
	b.Subtotal = b.TotalMaterials + b.TotalLabor
	b.MarkupAmount = b.Subtotal * (markupPercentage / 100)
	b.TotalCost = b.Subtotal + b.MarkupAmount
	return b
}

// costService 实现
type costService struct {
	store  repository.Store
	cache  *CostCache
	logger *zap.Logger
}

// NewCostService 创建 CostService 实例
func NewCostService(st repository.Store, cache *CostCache, logger *zap.Logger) CostService {
	return &costService{store: st, cache: cache, logger: logger}
}

func (s *costService) CalculateSketchCosts(ctx context.Context, req CostRequest) (*CostBreakdown, error) {
	if req.SketchID == "" {
		return nil, validationError("sketch_id is required")
	}
	if req.MarkupPercentage < 0 {
		return nil, validationError("markup_percentage must not be negative")
	}

	if cached, ok := s.cache.Get(ctx, req); ok {
		return cached, nil
	}

	r := s.store.Repos()
	if _, err := r.Sketches.Get(ctx, req.SketchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, referentialError("sketch %s not found", req.SketchID)
		}
		return nil, err
	}
	rooms, err := r.Rooms.ListBySketch(ctx, req.SketchID)
	if err != nil {
		return nil, err
	}
	wallsByRoom := map[string][]*domain.Wall{}
	fixturesByRoom := map[string][]*domain.Fixture{}
	for _, room := range rooms {
		walls, err := r.Walls.ListByRoom(ctx, room.RoomID)
		if err != nil {
			return nil, err
		}
		wallsByRoom[room.RoomID] = walls
		fixtures, err := r.Fixtures.ListByRoom(ctx, room.RoomID)
		if err != nil {
			return nil, err
		}
		fixturesByRoom[room.RoomID] = fixtures
	}

	breakdown := ComputeCostBreakdown(req.SketchID, rooms, wallsByRoom, fixturesByRoom,
		req.IncludeLabor, req.IncludeMaterials, req.MarkupPercentage)
	s.cache.Put(ctx, req, breakdown)
	return breakdown, nil
}

// ============================================
// Cost breakdown 缓存
// ============================================

// costCacheTTL keeps stale-on-miss windows short; correctness relies on the
// explicit invalidation every mutating service performs, the TTL is backstop.
const costCacheTTL = 5 * time.Minute

// CostCache cost breakdown 缓存（Redis/内存 KV 之上）
// A nil *CostCache is a valid no-op cache, so services never nil-check.
type CostCache struct {
	kv     store.KV
	logger *zap.Logger
}

// NewCostCache 创建 CostCache；kv 为 nil 时返回 nil（禁用缓存）
func NewCostCache(kv store.KV, logger *zap.Logger) *CostCache {
	if kv == nil {
		return nil
	}
	return &CostCache{kv: kv, logger: logger}
}

func costKey(req CostRequest) string {
	return fmt.Sprintf("homesketch:cost:%s:%t:%t:%s",
		req.SketchID, req.IncludeLabor, req.IncludeMaterials,
		strconv.FormatFloat(req.MarkupPercentage, 'g', -1, 64))
}

// Get returns a cached breakdown, if any. Cache errors degrade to a miss.
func (c *CostCache) Get(ctx context.Context, req CostRequest) (*CostBreakdown, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.kv.Get(ctx, costKey(req))
	if err != nil {
		if err != store.ErrMiss {
			c.logger.Warn("cost cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var b CostBreakdown
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, false
	}
	return &b, true
}

// Put stores a breakdown; failures are logged and ignored.
func (c *CostCache) Put(ctx context.Context, req CostRequest, b *CostBreakdown) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, costKey(req), string(raw), costCacheTTL); err != nil {
		c.logger.Warn("cost cache put failed", zap.Error(err))
	}
}

// InvalidateSketch drops every cached breakdown of the sketch; called by every
// mutating service touching the sketch or anything beneath it.
func (c *CostCache) InvalidateSketch(ctx context.Context, sketchID string) {
	if c == nil || sketchID == "" {
		return
	}
	keys, err := c.kv.ScanKeys(ctx, "homesketch:cost:"+sketchID+":*")
	if err != nil {
		c.logger.Warn("cost cache scan failed", zap.Error(err))
		return
	}
	if err := c.kv.Del(ctx, keys...); err != nil {
		c.logger.Warn("cost cache invalidate failed", zap.Error(err))
	}
}
