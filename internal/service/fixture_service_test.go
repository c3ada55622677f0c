package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateFixtureDerivesTotalCost(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	fixture, err := env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID:           room.RoomID,
		Name:             "Sink",
		UnitCost:         250,
		InstallationCost: 100,
	})
	require.NoError(t, err)
	require.Equal(t, 350.0, fixture.TotalCost)
	require.Equal(t, "other", fixture.FixtureType)
}

func TestCreateFixtureRejectsWallOfOtherRoom(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room1 := createTestRoom(t, env, sketch.SketchID)
	room2 := createTestRoom(t, env, sketch.SketchID)
	wall1 := createTestWall(t, env, room1.RoomID, 10, 8)

	_, err := env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID: room2.RoomID,
		WallID: wall1.WallID,
		Name:   "Door",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrReferential))

	// The failed create persisted nothing.
	fixtures, err := env.fixtures.ListFixtures(context.Background(), room2.RoomID)
	require.NoError(t, err)
	require.Empty(t, fixtures)
}

func TestCreateFixtureRequiresExistingRoom(t *testing.T) {
	env := newTestEnv(t)
	createTestSketch(t, env)

	_, err := env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID: "no-such-room",
		Name:   "Door",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrReferential))
}

func TestUpdateFixtureCostRecomputesTotal(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)
	fixture, err := env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID:           room.RoomID,
		Name:             "Sink",
		UnitCost:         250,
		InstallationCost: 100,
	})
	require.NoError(t, err)

	unitCost := 300.0
	updated, err := env.fixtures.UpdateFixture(context.Background(), fixture.FixtureID, UpdateFixtureRequest{
		UnitCost: &unitCost,
	})
	require.NoError(t, err)
	require.Equal(t, 400.0, updated.TotalCost)
}

func TestUpdateFixtureWallReassignmentChecksRoom(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room1 := createTestRoom(t, env, sketch.SketchID)
	room2 := createTestRoom(t, env, sketch.SketchID)
	wall2 := createTestWall(t, env, room2.RoomID, 10, 8)
	fixture, err := env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID: room1.RoomID,
		Name:   "Shelf",
	})
	require.NoError(t, err)

	_, err = env.fixtures.UpdateFixture(context.Background(), fixture.FixtureID, UpdateFixtureRequest{
		WallID: &wall2.WallID,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrReferential))
}

func TestFixtureWritesDoNotTouchTotals(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	before := getSketch(t, env, sketch.SketchID)
	_, err := env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID:   room.RoomID,
		Name:     "Sink",
		UnitCost: 250,
	})
	require.NoError(t, err)

	after := getSketch(t, env, sketch.SketchID)
	require.Equal(t, before.TotalArea, after.TotalArea)
	require.Equal(t, before.TotalWallArea, after.TotalWallArea)
}
