package service

import (
	"context"
	"testing"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"
	"homesketch-data/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv 内存后端的服务测试环境
type testEnv struct {
	store        *repository.MemoryStore
	cache        *CostCache
	sketches     SketchService
	rooms        RoomService
	walls        WallService
	fixtures     FixtureService
	measurements MeasurementService
	costs        CostService
	bulk         BulkService
	duplicate    DuplicateService
}

// newTestEnv 构建基于 MemoryStore + MemoryKV 的完整服务栈
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := repository.NewMemoryStore()
	logger := zap.NewNop()
	cache := NewCostCache(store.NewMemoryKV(), logger)
	return &testEnv{
		store:        st,
		cache:        cache,
		sketches:     NewSketchService(st, nil, cache, logger),
		rooms:        NewRoomService(st, cache, logger),
		walls:        NewWallService(st, cache, logger),
		fixtures:     NewFixtureService(st, cache, logger),
		measurements: NewMeasurementService(st, logger),
		costs:        NewCostService(st, cache, logger),
		bulk:         NewBulkService(st, cache, logger),
		duplicate:    NewDuplicateService(st, logger),
	}
}

// newTestEnvWithBilling 带账务协作方的测试环境
func newTestEnvWithBilling(t *testing.T, billing BillingChecker) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.sketches = NewSketchService(env.store, billing, env.cache, zap.NewNop())
	return env
}

// createTestSketch 创建一个默认草图
func createTestSketch(t *testing.T, env *testEnv) *domain.Sketch {
	t.Helper()
	sketch, err := env.sketches.CreateSketch(context.Background(), CreateSketchRequest{
		Name:         "Test Sketch",
		ScaleFactor:  1,
		ScaleUnit:    "ft",
		CanvasWidth:  800,
		CanvasHeight: 600,
	})
	require.NoError(t, err)
	return sketch
}

// createTestRoom 在草图下创建一个 10×10 矩形房间
func createTestRoom(t *testing.T, env *testEnv, sketchID string) *domain.Room {
	t.Helper()
	room, err := env.rooms.CreateRoom(context.Background(), CreateRoomRequest{
		SketchID: sketchID,
		Name:     "Test Room",
		Geometry: domain.Geometry{
			Type:   domain.GeometryRectangle,
			X:      0,
			Y:      0,
			Width:  10,
			Height: 10,
		},
	})
	require.NoError(t, err)
	return room
}

// createTestWall 在房间下创建一条水平墙
func createTestWall(t *testing.T, env *testEnv, roomID string, length, height float64) *domain.Wall {
	t.Helper()
	wall, err := env.walls.CreateWall(context.Background(), CreateWallRequest{
		RoomID:     roomID,
		StartPoint: &domain.Point{X: 0, Y: 0},
		EndPoint:   &domain.Point{X: length, Y: 0},
		Height:     height,
	})
	require.NoError(t, err)
	return wall
}

// getSketch 直接从仓储读草图（绕过服务层缓存语义）
func getSketch(t *testing.T, env *testEnv, sketchID string) *domain.Sketch {
	t.Helper()
	sketch, err := env.store.Repos().Sketches.Get(context.Background(), sketchID)
	require.NoError(t, err)
	return sketch
}
