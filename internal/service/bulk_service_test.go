package service

import (
	"context"
	"errors"
	"testing"

	"homesketch-data/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestBulkCreateSingleTransaction(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	result, err := env.bulk.BulkCreate(context.Background(), BulkCreateRequest{
		Rooms: []CreateRoomRequest{
			{
				SketchID: sketch.SketchID,
				Name:     "Bedroom",
				Geometry: domain.Geometry{Type: domain.GeometryRectangle, Width: 12, Height: 10},
			},
		},
		Walls: []CreateWallRequest{
			{
				RoomID:     room.RoomID,
				StartPoint: &domain.Point{X: 0, Y: 0},
				EndPoint:   &domain.Point{X: 10, Y: 0},
				Height:     8,
			},
		},
		Fixtures: []CreateFixtureRequest{
			{RoomID: room.RoomID, Name: "Sink", UnitCost: 40},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Rooms, 1)
	require.Len(t, result.Walls, 1)
	require.Len(t, result.Fixtures, 1)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 220.0, got.TotalArea) // 100 existing + 120 new
	require.Equal(t, 80.0, got.TotalWallArea)
}

func TestBulkCreateFixtureOnlyInvalidatesCostCache(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	// Warm the cache before the batch.
	req := CostRequest{SketchID: sketch.SketchID, IncludeMaterials: true}
	first, err := env.costs.CalculateSketchCosts(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 0.0, first.TotalMaterials)

	// A fixture-only batch changes no totals, but it changes the breakdown.
	_, err = env.bulk.BulkCreate(context.Background(), BulkCreateRequest{
		Fixtures: []CreateFixtureRequest{
			{RoomID: room.RoomID, Name: "Sink", UnitCost: 40},
		},
	})
	require.NoError(t, err)

	second, err := env.costs.CalculateSketchCosts(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 40.0, second.TotalMaterials)
}

func TestBulkCreateWallUnderRoomInSameBatch(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	req := BulkCreateRequest{
		Rooms: []CreateRoomRequest{
			{
				SketchID: sketch.SketchID,
				Name:     "Kitchen",
				Geometry: domain.Geometry{Type: domain.GeometryRectangle, Width: 10, Height: 10},
			},
		},
	}
	result, err := env.bulk.BulkCreate(context.Background(), req)
	require.NoError(t, err)

	// Walls referencing a freshly-created room work because rooms are
	// persisted first within the same transaction.
	result2, err := env.bulk.BulkCreate(context.Background(), BulkCreateRequest{
		Walls: []CreateWallRequest{
			{
				RoomID:     result.Rooms[0].RoomID,
				StartPoint: &domain.Point{X: 0, Y: 0},
				EndPoint:   &domain.Point{X: 10, Y: 0},
				Height:     8,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, result2.Walls, 1)
}

func TestBulkCreateRollsBackOnSingleFailure(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	_, err := env.bulk.BulkCreate(context.Background(), BulkCreateRequest{
		Rooms: []CreateRoomRequest{
			{
				SketchID: sketch.SketchID,
				Name:     "Good Room",
				Geometry: domain.Geometry{Type: domain.GeometryRectangle, Width: 10, Height: 10},
			},
		},
		Walls: []CreateWallRequest{
			// References a room that does not exist; the whole batch fails.
			{RoomID: "no-such-room", StartPoint: &domain.Point{X: 0, Y: 0}, EndPoint: &domain.Point{X: 1, Y: 0}},
		},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrReferential))

	rooms, err := env.rooms.ListRooms(context.Background(), sketch.SketchID)
	require.NoError(t, err)
	require.Empty(t, rooms)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 0.0, got.TotalArea)
}

func TestBulkCreateRejectsMalformedEntityUpfront(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	_, err := env.bulk.BulkCreate(context.Background(), BulkCreateRequest{
		Rooms: []CreateRoomRequest{
			{
				SketchID: sketch.SketchID,
				Name:     "", // missing name
				Geometry: domain.Geometry{Type: domain.GeometryRectangle, Width: 10, Height: 10},
			},
		},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation))
}

func TestBulkUpdateSortOrderNoAggregation(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room1 := createTestRoom(t, env, sketch.SketchID)
	room2 := createTestRoom(t, env, sketch.SketchID)

	err := env.bulk.BulkUpdateSortOrder(context.Background(), "room", []SortOrderUpdate{
		{ID: room1.RoomID, SortOrder: 2},
		{ID: room2.RoomID, SortOrder: 1},
	})
	require.NoError(t, err)

	rooms, err := env.rooms.ListRooms(context.Background(), sketch.SketchID)
	require.NoError(t, err)
	require.Equal(t, room2.RoomID, rooms[0].RoomID)
	require.Equal(t, room1.RoomID, rooms[1].RoomID)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 200.0, got.TotalArea)
}

func TestBulkUpdateSortOrderUnknownEntity(t *testing.T) {
	env := newTestEnv(t)

	err := env.bulk.BulkUpdateSortOrder(context.Background(), "sketch", []SortOrderUpdate{{ID: "x", SortOrder: 1}})
	require.True(t, errors.Is(err, ErrValidation))
}

func TestBulkUpdateSortOrderMissingIDRollsBack(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	err := env.bulk.BulkUpdateSortOrder(context.Background(), "room", []SortOrderUpdate{
		{ID: room.RoomID, SortOrder: 5},
		{ID: "no-such-room", SortOrder: 6},
	})
	require.Error(t, err)

	got, err := env.rooms.GetRoom(context.Background(), room.RoomID)
	require.NoError(t, err)
	require.Equal(t, 0, got.SortOrder)
}

func TestBulkDeleteRoomsAggregatesOncePerSketch(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room1 := createTestRoom(t, env, sketch.SketchID)
	room2 := createTestRoom(t, env, sketch.SketchID)
	room3 := createTestRoom(t, env, sketch.SketchID)
	createTestWall(t, env, room1.RoomID, 10, 8)

	err := env.bulk.BulkDelete(context.Background(), "room", []string{room1.RoomID, room2.RoomID})
	require.NoError(t, err)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 100.0, got.TotalArea)
	require.Equal(t, 0.0, got.TotalWallArea)

	rooms, err := env.rooms.ListRooms(context.Background(), sketch.SketchID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, room3.RoomID, rooms[0].RoomID)
}

func TestBulkDeleteWallsResolvesAncestorBeforeDelete(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)
	wall1 := createTestWall(t, env, room.RoomID, 10, 8)
	wall2 := createTestWall(t, env, room.RoomID, 5, 8)

	err := env.bulk.BulkDelete(context.Background(), "wall", []string{wall1.WallID, wall2.WallID})
	require.NoError(t, err)

	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 0.0, got.TotalWallArea)
}

func TestBulkDeleteMissingIDRollsBack(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	err := env.bulk.BulkDelete(context.Background(), "room", []string{room.RoomID, "no-such-room"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrReferential))

	// The existing room survived the failed batch.
	_, err = env.rooms.GetRoom(context.Background(), room.RoomID)
	require.NoError(t, err)
	got := getSketch(t, env, sketch.SketchID)
	require.Equal(t, 100.0, got.TotalArea)
}
