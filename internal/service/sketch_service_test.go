package service

import (
	"context"
	"errors"
	"testing"

	"homesketch-data/internal/domain"

	"github.com/stretchr/testify/require"
)

// stubBilling 固定返回值的账务检查桩
type stubBilling struct {
	estimateFinalized bool
	invoiceFinalized  bool
}

func (s *stubBilling) EstimateFinalized(_ context.Context, _ string) (bool, error) {
	return s.estimateFinalized, nil
}

func (s *stubBilling) InvoiceFinalized(_ context.Context, _ string) (bool, error) {
	return s.invoiceFinalized, nil
}

func TestCreateSketchDefaults(t *testing.T) {
	env := newTestEnv(t)

	sketch, err := env.sketches.CreateSketch(context.Background(), CreateSketchRequest{Name: "Plan A"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusDraft, sketch.Status)
	require.Equal(t, 1, sketch.Version)
	require.Equal(t, 1.0, sketch.ScaleFactor)
	require.Equal(t, "ft", sketch.ScaleUnit)
	require.False(t, sketch.IsTemplate)
}

func TestCreateSketchRejectsUnknownUnit(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sketches.CreateSketch(context.Background(), CreateSketchRequest{
		Name:      "Plan A",
		ScaleUnit: "furlong",
	})
	require.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateSketchVersionBumpOnlyOnCanvasChange(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	ctx := context.Background()

	// Renames do not bump the version.
	name := "Renamed"
	updated, err := env.sketches.UpdateSketch(ctx, sketch.SketchID, UpdateSketchRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, 1, updated.Version)

	// Canvas-level changes do.
	scale := 50.0
	updated, err = env.sketches.UpdateSketch(ctx, sketch.SketchID, UpdateSketchRequest{ScaleFactor: &scale})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)

	// Writing the same value back is not a change.
	updated, err = env.sketches.UpdateSketch(ctx, sketch.SketchID, UpdateSketchRequest{ScaleFactor: &scale})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)
}

func TestSketchStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	ctx := context.Background()

	_, err := env.sketches.UpdateSketchStatus(ctx, sketch.SketchID, domain.StatusInProgress)
	require.NoError(t, err)
	_, err = env.sketches.UpdateSketchStatus(ctx, sketch.SketchID, domain.StatusCompleted)
	require.NoError(t, err)

	// Backwards transitions are rejected.
	_, err = env.sketches.UpdateSketchStatus(ctx, sketch.SketchID, domain.StatusDraft)
	require.True(t, errors.Is(err, ErrStatus))

	// Archival is reachable from any non-archived status, and is terminal.
	_, err = env.sketches.UpdateSketchStatus(ctx, sketch.SketchID, domain.StatusArchived)
	require.NoError(t, err)
	_, err = env.sketches.UpdateSketchStatus(ctx, sketch.SketchID, domain.StatusCompleted)
	require.True(t, errors.Is(err, ErrStatus))
}

func TestArchivedSketchRejectsMutations(t *testing.T) {
	env := newTestEnv(t)
	sketch := createTestSketch(t, env)
	ctx := context.Background()

	_, err := env.sketches.UpdateSketchStatus(ctx, sketch.SketchID, domain.StatusArchived)
	require.NoError(t, err)

	name := "Renamed"
	_, err = env.sketches.UpdateSketch(ctx, sketch.SketchID, UpdateSketchRequest{Name: &name})
	require.True(t, errors.Is(err, ErrStatus))

	_, err = env.rooms.CreateRoom(ctx, CreateRoomRequest{
		SketchID: sketch.SketchID,
		Name:     "Late Room",
		Geometry: domain.Geometry{Type: domain.GeometryRectangle, Width: 5, Height: 5},
	})
	require.True(t, errors.Is(err, ErrStatus))
}

func TestDeleteSketchCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sketch := createTestSketch(t, env)
	room := createTestRoom(t, env, sketch.SketchID)
	wall := createTestWall(t, env, room.RoomID, 10, 8)
	fixture, err := env.fixtures.CreateFixture(ctx, CreateFixtureRequest{RoomID: room.RoomID, Name: "Sink"})
	require.NoError(t, err)
	m, err := env.measurements.CreateMeasurement(ctx, CreateMeasurementRequest{
		SketchID: sketch.SketchID,
		Type:     domain.MeasurementLinear,
		Value:    12,
	})
	require.NoError(t, err)

	resp, err := env.sketches.DeleteSketch(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.False(t, resp.Archived)

	_, err = env.sketches.GetSketch(ctx, sketch.SketchID)
	require.Error(t, err)
	_, err = env.rooms.GetRoom(ctx, room.RoomID)
	require.Error(t, err)
	_, err = env.walls.GetWall(ctx, wall.WallID)
	require.Error(t, err)
	_, err = env.fixtures.GetFixture(ctx, fixture.FixtureID)
	require.Error(t, err)
	_, err = env.measurements.GetMeasurement(ctx, m.MeasurementID)
	require.Error(t, err)
}

func TestDeleteSketchArchivesWhenLinkFinalized(t *testing.T) {
	env := newTestEnvWithBilling(t, &stubBilling{estimateFinalized: true})
	ctx := context.Background()

	sketch, err := env.sketches.CreateSketch(ctx, CreateSketchRequest{
		Name:       "Linked",
		EstimateID: "11111111-1111-1111-1111-111111111111",
	})
	require.NoError(t, err)

	resp, err := env.sketches.DeleteSketch(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.True(t, resp.Archived)

	got, err := env.sketches.GetSketch(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusArchived, got.Status)
}

func TestDeleteSketchHardDeletesWhenLinkNotFinalized(t *testing.T) {
	env := newTestEnvWithBilling(t, &stubBilling{})
	ctx := context.Background()

	sketch, err := env.sketches.CreateSketch(ctx, CreateSketchRequest{
		Name:       "Linked",
		EstimateID: "11111111-1111-1111-1111-111111111111",
	})
	require.NoError(t, err)

	resp, err := env.sketches.DeleteSketch(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.False(t, resp.Archived)
}

func TestDeleteSketchNilBillingArchivesAnyLink(t *testing.T) {
	// Without a billing collaborator, any link is treated as finalized.
	env := newTestEnv(t)
	ctx := context.Background()

	sketch, err := env.sketches.CreateSketch(ctx, CreateSketchRequest{
		Name:      "Linked",
		InvoiceID: "22222222-2222-2222-2222-222222222222",
	})
	require.NoError(t, err)

	resp, err := env.sketches.DeleteSketch(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.True(t, resp.Archived)
}

func TestListSketchesFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.sketches.CreateSketch(ctx, CreateSketchRequest{Name: "Kitchen Remodel"})
	require.NoError(t, err)
	_, err = env.sketches.CreateSketch(ctx, CreateSketchRequest{Name: "Bath Template", IsTemplate: true})
	require.NoError(t, err)

	templates := true
	resp, err := env.sketches.ListSketches(ctx, ListSketchesRequest{IsTemplate: &templates})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "Bath Template", resp.Items[0].Name)

	resp, err = env.sketches.ListSketches(ctx, ListSketchesRequest{Search: "kitchen"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
}

func TestListSketchesPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := env.sketches.CreateSketch(ctx, CreateSketchRequest{Name: "Sketch"})
		require.NoError(t, err)
	}

	resp, err := env.sketches.ListSketches(ctx, ListSketchesRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Equal(t, 5, resp.Total)
	require.Len(t, resp.Items, 2)

	resp, err = env.sketches.ListSketches(ctx, ListSketchesRequest{Page: 3, Size: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
}
