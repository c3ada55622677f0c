package service

import (
	"context"
	"testing"

	"homesketch-data/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestComputeCostBreakdownMarkupAppliedOnce(t *testing.T) {
	rooms := []*domain.Room{{RoomID: "r1", Name: "Kitchen", EstimatedCost: 100}}
	walls := map[string][]*domain.Wall{
		"r1": {{WallID: "w1", EstimatedCost: 200}},
	}
	fixtures := map[string][]*domain.Fixture{
		"r1": {{FixtureID: "f1", Name: "Sink", UnitCost: 50, InstallationCost: 25}},
	}

	b := ComputeCostBreakdown("s1", rooms, walls, fixtures, true, true, 10)
	require.Equal(t, 350.0, b.TotalMaterials) // 100 room + 200 wall + 50 fixture unit
	require.Equal(t, 25.0, b.TotalLabor)
	require.Equal(t, 375.0, b.Subtotal)
	require.InDelta(t, 37.5, b.MarkupAmount, 1e-9)
	require.InDelta(t, 412.5, b.TotalCost, 1e-9)
}

func TestComputeCostBreakdownExcludesLabor(t *testing.T) {
	rooms := []*domain.Room{{RoomID: "r1", Name: "Kitchen"}}
	fixtures := map[string][]*domain.Fixture{
		"r1": {{FixtureID: "f1", Name: "Sink", UnitCost: 50, InstallationCost: 25}},
	}

	b := ComputeCostBreakdown("s1", rooms, nil, fixtures, false, true, 0)
	require.Equal(t, 50.0, b.TotalMaterials)
	require.Equal(t, 0.0, b.TotalLabor)
	require.Equal(t, 50.0, b.TotalCost)
}

func TestComputeCostBreakdownExcludesMaterials(t *testing.T) {
	rooms := []*domain.Room{{RoomID: "r1", Name: "Kitchen", EstimatedCost: 100}}
	walls := map[string][]*domain.Wall{
		"r1": {{WallID: "w1", EstimatedCost: 200}},
	}
	fixtures := map[string][]*domain.Fixture{
		"r1": {{FixtureID: "f1", Name: "Sink", UnitCost: 50, InstallationCost: 25}},
	}

	b := ComputeCostBreakdown("s1", rooms, walls, fixtures, true, false, 0)
	require.Equal(t, 0.0, b.TotalMaterials)
	require.Equal(t, 25.0, b.TotalLabor)
	require.Equal(t, 25.0, b.TotalCost)
}

func TestComputeCostBreakdownPerRoomLines(t *testing.T) {
	rooms := []*domain.Room{
		{RoomID: "r1", Name: "Kitchen", EstimatedCost: 100},
		{RoomID: "r2", Name: "Bath", EstimatedCost: 60},
	}
	fixtures := map[string][]*domain.Fixture{
		"r2": {{FixtureID: "f1", Name: "Tub", UnitCost: 500, InstallationCost: 200}},
	}

	b := ComputeCostBreakdown("s1", rooms, nil, fixtures, true, true, 0)
	require.Len(t, b.Rooms, 2)
	require.Equal(t, 100.0, b.Rooms[0].MaterialCost)
	require.Empty(t, b.Rooms[0].Fixtures)
	require.Equal(t, 560.0, b.Rooms[1].MaterialCost)
	require.Equal(t, 200.0, b.Rooms[1].LaborCost)
	require.Len(t, b.Rooms[1].Fixtures, 1)
	require.Equal(t, 700.0, b.Rooms[1].Fixtures[0].TotalCost)
}

func TestCalculateSketchCosts(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)
	wall, err := env.walls.CreateWall(context.Background(), CreateWallRequest{
		RoomID:        room.RoomID,
		StartPoint:    &domain.Point{X: 0, Y: 0},
		EndPoint:      &domain.Point{X: 10, Y: 0},
		Height:        8,
		CostPerSqUnit: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 160.0, wall.EstimatedCost)

	_, err = env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID:           room.RoomID,
		Name:             "Sink",
		UnitCost:         40,
		InstallationCost: 60,
	})
	require.NoError(t, err)

	b, err := env.costs.CalculateSketchCosts(context.Background(), CostRequest{
		SketchID:         sketch.SketchID,
		IncludeLabor:     true,
		IncludeMaterials: true,
		MarkupPercentage: 20,
	})
	require.NoError(t, err)
	require.Equal(t, 200.0, b.TotalMaterials) // 160 wall + 40 fixture unit
	require.Equal(t, 60.0, b.TotalLabor)
	require.Equal(t, 260.0, b.Subtotal)
	require.InDelta(t, 52.0, b.MarkupAmount, 1e-9)
	require.InDelta(t, 312.0, b.TotalCost, 1e-9)
}

func TestCalculateSketchCostsCacheInvalidatedOnMutation(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)
	createTestWall(t, env, room.RoomID, 10, 8)

	req := CostRequest{SketchID: sketch.SketchID, IncludeMaterials: true}
	first, err := env.costs.CalculateSketchCosts(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 0.0, first.TotalMaterials) // no cost_per_sq_unit yet

	_, err = env.fixtures.CreateFixture(context.Background(), CreateFixtureRequest{
		RoomID:   room.RoomID,
		Name:     "Sink",
		UnitCost: 40,
	})
	require.NoError(t, err)

	// The mutation invalidated the cached breakdown.
	second, err := env.costs.CalculateSketchCosts(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 40.0, second.TotalMaterials)
}

func TestCalculateSketchCostsUnknownSketch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.costs.CalculateSketchCosts(context.Background(), CostRequest{SketchID: "missing"})
	require.Error(t, err)
}
