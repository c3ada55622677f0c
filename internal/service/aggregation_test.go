package service

import (
	"context"
	"testing"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestComputeSketchTotals(t *testing.T) {
	rooms := []*domain.Room{
		{RoomID: "r1", Area: 100, Perimeter: 40},
		{RoomID: "r2", Area: 50, Perimeter: 30},
	}
	walls := []*domain.Wall{
		{WallID: "w1", Area: 80},
		{WallID: "w2", Area: 20},
	}

	totals := ComputeSketchTotals(rooms, walls)
	require.Equal(t, 150.0, totals.TotalArea)
	require.Equal(t, 70.0, totals.TotalPerimeter)
	require.Equal(t, 100.0, totals.TotalWallArea)
}

func TestComputeSketchTotalsEmpty(t *testing.T) {
	totals := ComputeSketchTotals(nil, nil)
	require.Equal(t, 0.0, totals.TotalArea)
	require.Equal(t, 0.0, totals.TotalPerimeter)
	require.Equal(t, 0.0, totals.TotalWallArea)
}

func TestTotalsAfterRoomCreate(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	createTestRoom(t, env, sketch.SketchID)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 100.0, got.TotalArea)
	require.Equal(t, 40.0, got.TotalPerimeter)
	require.Equal(t, 0.0, got.TotalWallArea)
}

func TestTotalsAfterWallCreate(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	createTestWall(t, env, room.RoomID, 10, 8)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 100.0, got.TotalArea)
	require.Equal(t, 80.0, got.TotalWallArea)
}

func TestTotalsAfterRoomDelete(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room1 := createTestRoom(t, env, sketch.SketchID)
	createTestRoom(t, env, sketch.SketchID)
	createTestWall(t, env, room1.RoomID, 10, 8)

	before := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 200.0, before.TotalArea)
	require.Equal(t, 80.0, before.TotalWallArea)

	// Deleting room1 removes its area, perimeter and wall contribution.
	err := env.rooms.DeleteRoom(context.Background(), room1.RoomID)
	require.NoError(t, err)

	after := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 100.0, after.TotalArea)
	require.Equal(t, 40.0, after.TotalPerimeter)
	require.Equal(t, 0.0, after.TotalWallArea)
}

func TestTotalsRecomputedOnCosmeticRoomUpdate(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	// A rename does not change geometry; totals must stay identical after the
	// recompute pass.
	name := "Renamed Room"
	_, err := env.rooms.UpdateRoom(context.Background(), room.RoomID, UpdateRoomRequest{Name: &name})
	require.NoError(t, err)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 100.0, got.TotalArea)
	require.Equal(t, 40.0, got.TotalPerimeter)
}

func TestRecomputeIdempotent(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)
	createTestWall(t, env, room.RoomID, 10, 8)

	first := getSketch(t, env, sketch.SketchID)

	// Run the aggregation again with no intervening writes.
	err := env.store.WithinTx(context.Background(), func(r repository.Repos) error {
		return recomputeSketchTotals(context.Background(), r, sketch.SketchID)
	})
	require.NoError(t, err)

	second := getSketch(t, env, sketch.SketchID)
	require.Equal(t, first.TotalArea, second.TotalArea)
	require.Equal(t, first.TotalPerimeter, second.TotalPerimeter)
	require.Equal(t, first.TotalWallArea, second.TotalWallArea)
}
