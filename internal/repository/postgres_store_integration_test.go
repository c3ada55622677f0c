// +build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"

	"homesketch-data/internal/domain"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// 获取测试数据库连接
func getTestDB(t *testing.T) *sql.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		testEnvStr("TEST_DB_HOST", "localhost"),
		testEnvInt("TEST_DB_PORT", 5432),
		testEnvStr("TEST_DB_USER", "postgres"),
		testEnvStr("TEST_DB_PASSWORD", "postgres"),
		testEnvStr("TEST_DB_NAME", "homesketch"),
		testEnvStr("TEST_DB_SSLMODE", "disable"),
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping integration test: cannot open database: %v", err)
		return nil
	}
	if err := db.Ping(); err != nil {
		t.Skipf("Skipping integration test: cannot ping database: %v", err)
		return nil
	}
	return db
}

func testEnvStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func testEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// 清理测试数据（子表先删）
func cleanupSketch(t *testing.T, db *sql.DB, sketchID string) {
	db.Exec(`DELETE FROM measurements WHERE sketch_id = $1::uuid`, sketchID)
	db.Exec(`DELETE FROM fixtures WHERE room_id IN (SELECT room_id FROM rooms WHERE sketch_id = $1::uuid)`, sketchID)
	db.Exec(`DELETE FROM walls WHERE room_id IN (SELECT room_id FROM rooms WHERE sketch_id = $1::uuid)`, sketchID)
	db.Exec(`DELETE FROM rooms WHERE sketch_id = $1::uuid`, sketchID)
	db.Exec(`DELETE FROM sketches WHERE sketch_id = $1::uuid`, sketchID)
}

func TestPostgresSketchGraphRoundTrip(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	ctx := context.Background()
	st := NewPostgresStore(db)
	repos := st.Repos()

	sketch := &domain.Sketch{
		SketchID:    uuid.NewString(),
		Name:        "Integration Sketch",
		ScaleFactor: 2,
		ScaleUnit:   "ft",
		Status:      domain.StatusDraft,
		Version:     1,
	}
	defer cleanupSketch(t, db, sketch.SketchID)
	require.NoError(t, repos.Sketches.Create(ctx, sketch))

	room := &domain.Room{
		RoomID:   uuid.NewString(),
		SketchID: sketch.SketchID,
		Name:     "Kitchen",
		Geometry: domain.Geometry{
			Type: domain.GeometryPolygon,
			Points: []domain.Point{
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
			},
		},
		Area:      100,
		Perimeter: 40,
	}
	require.NoError(t, repos.Rooms.Create(ctx, room))

	wall := &domain.Wall{
		WallID: uuid.NewString(),
		RoomID: room.RoomID,
		StartX: 0, StartY: 0, EndX: 10, EndY: 0,
		Length: 10, Height: 8, Area: 80,
	}
	require.NoError(t, repos.Walls.Create(ctx, wall))

	fixture := &domain.Fixture{
		FixtureID:   uuid.NewString(),
		RoomID:      room.RoomID,
		WallID:      sql.NullString{String: wall.WallID, Valid: true},
		Name:        "Sink",
		FixtureType: "sink",
		UnitCost:    300,
		TotalCost:   300,
	}
	require.NoError(t, repos.Fixtures.Create(ctx, fixture))

	m := &domain.Measurement{
		MeasurementID: uuid.NewString(),
		SketchID:      sketch.SketchID,
		Type:          domain.MeasurementLinear,
		Value:         10,
		Unit:          "ft",
	}
	require.NoError(t, repos.Measurements.Create(ctx, m))

	// geometry survives the jsonb round trip
	gotRoom, err := repos.Rooms.Get(ctx, room.RoomID)
	require.NoError(t, err)
	require.Equal(t, domain.GeometryPolygon, gotRoom.Geometry.Type)
	require.Len(t, gotRoom.Geometry.Points, 4)

	// cross-room join: walls reachable from the sketch
	walls, err := repos.Walls.ListBySketch(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.Len(t, walls, 1)

	// totals update path
	require.NoError(t, repos.Sketches.UpdateTotals(ctx, sketch.SketchID, domain.Totals{
		TotalArea: 100, TotalPerimeter: 40, TotalWallArea: 80,
	}))
	gotSketch, err := repos.Sketches.Get(ctx, sketch.SketchID)
	require.NoError(t, err)
	require.Equal(t, 100.0, gotSketch.TotalArea)
	require.Equal(t, 80.0, gotSketch.TotalWallArea)

	// wall cascade: fixture anchored to the wall goes with it
	require.NoError(t, repos.Fixtures.DeleteByWall(ctx, wall.WallID))
	require.NoError(t, repos.Walls.Delete(ctx, wall.WallID))
	_, err = repos.Fixtures.Get(ctx, fixture.FixtureID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresWithinTxRollsBack(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	ctx := context.Background()
	st := NewPostgresStore(db)

	sketchID := uuid.NewString()
	defer cleanupSketch(t, db, sketchID)

	boom := errors.New("boom")
	err := st.WithinTx(ctx, func(r Repos) error {
		if err := r.Sketches.Create(ctx, &domain.Sketch{
			SketchID:    sketchID,
			Name:        "Doomed Sketch",
			ScaleFactor: 1,
			ScaleUnit:   "ft",
			Status:      domain.StatusDraft,
			Version:     1,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Repos().Sketches.Get(ctx, sketchID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresSketchListFilters(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	ctx := context.Background()
	repos := NewPostgresStore(db).Repos()

	ids := make([]string, 0, 3)
	defer func() {
		for _, id := range ids {
			cleanupSketch(t, db, id)
		}
	}()
	for i, name := range []string{"Filter Kitchen A", "Filter Kitchen B", "Filter Garage"} {
		s := &domain.Sketch{
			SketchID:    uuid.NewString(),
			Name:        name,
			ScaleFactor: 1,
			ScaleUnit:   "ft",
			Status:      domain.StatusDraft,
			Version:     1,
			IsTemplate:  i == 2,
		}
		require.NoError(t, repos.Sketches.Create(ctx, s))
		ids = append(ids, s.SketchID)
	}

	items, total, err := repos.Sketches.List(ctx, SketchFilters{Search: "filter kitchen"}, 1, 50)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)

	isTemplate := true
	items, _, err = repos.Sketches.List(ctx, SketchFilters{Search: "filter", IsTemplate: &isTemplate}, 1, 50)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Filter Garage", items[0].Name)
}
