package service

import (
	"context"
	"errors"
	"testing"

	"homesketch-data/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCreateMeasurementDerivesLinearValue(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	m, err := env.measurements.CreateMeasurement(context.Background(), CreateMeasurementRequest{
		SketchID:   sketch.SketchID,
		Type:       domain.MeasurementLinear,
		StartPoint: &domain.Point{X: 0, Y: 0},
		EndPoint:   &domain.Point{X: 3, Y: 4},
	})
	require.NoError(t, err)
	require.InDelta(t, 5.0, m.Value, 1e-9)
	require.Equal(t, "ft", m.Unit)
}

func TestCreateMeasurementExplicitValueKept(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	m, err := env.measurements.CreateMeasurement(context.Background(), CreateMeasurementRequest{
		SketchID:   sketch.SketchID,
		Type:       domain.MeasurementLinear,
		Value:      7.5,
		StartPoint: &domain.Point{X: 0, Y: 0},
		EndPoint:   &domain.Point{X: 3, Y: 4},
	})
	require.NoError(t, err)
	require.Equal(t, 7.5, m.Value)
}

func TestCreateMeasurementRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)

	_, err := env.measurements.CreateMeasurement(context.Background(), CreateMeasurementRequest{
		SketchID: sketch.SketchID,
		Type:     "diagonal",
	})
	require.True(t, errors.Is(err, ErrValidation))
}

func TestCreateMeasurementWithAssociation(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)

	m, err := env.measurements.CreateMeasurement(context.Background(), CreateMeasurementRequest{
		SketchID:             sketch.SketchID,
		Type:                 domain.MeasurementArea,
		Value:                100,
		Unit:                 "sq_ft",
		AssociatedEntityType: "room",
		AssociatedEntityID:   room.RoomID,
	})
	require.NoError(t, err)
	require.Equal(t, "room", m.AssociatedEntityType.String)
	require.Equal(t, room.RoomID, m.AssociatedEntityID.String)
}

func TestMeasurementsDoNotAffectTotals(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	createTestRoom(t, env, sketch.SketchID)
	before := getSketch(t, env, sketch.SketchID)

	_, err := env.measurements.CreateMeasurement(context.Background(), CreateMeasurementRequest{
		SketchID: sketch.SketchID,
		Type:     domain.MeasurementLinear,
		Value:    999,
	})
	require.NoError(t, err)

	after := getSketch(t, env, sketch.SketchID)
	require.Equal(t, before.TotalArea, after.TotalArea)
	require.Equal(t, before.TotalPerimeter, after.TotalPerimeter)
}

func TestUpdateMeasurement(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	m, err := env.measurements.CreateMeasurement(context.Background(), CreateMeasurementRequest{
		SketchID: sketch.SketchID,
		Type:     domain.MeasurementLinear,
		Value:    10,
	})
	require.NoError(t, err)

	value := 12.0
	label := "north wall run"
	updated, err := env.measurements.UpdateMeasurement(context.Background(), m.MeasurementID, UpdateMeasurementRequest{
		Value: &value,
		Label: &label,
	})
	require.NoError(t, err)
	require.Equal(t, 12.0, updated.Value)
	require.Equal(t, "north wall run", updated.Label.String)
}
