package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"homesketch-data/internal/repository"
	"homesketch-data/internal/service"
	"homesketch-data/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRouter 基于内存后端搭建完整路由
func newTestRouter(t *testing.T) *Router {
	t.Helper()
	logger := zap.NewNop()
	st := repository.NewMemoryStore()
	cache := service.NewCostCache(store.NewMemoryKV(), logger)

	sketches := service.NewSketchService(st, nil, cache, logger)
	rooms := service.NewRoomService(st, cache, logger)
	walls := service.NewWallService(st, cache, logger)
	fixtures := service.NewFixtureService(st, cache, logger)
	measurements := service.NewMeasurementService(st, logger)
	costs := service.NewCostService(st, cache, logger)
	bulk := service.NewBulkService(st, cache, logger)
	duplicate := service.NewDuplicateService(st, logger)

	router := NewRouter(logger)
	router.RegisterSketchRoutes(NewSketchHandler(sketches, rooms, measurements, costs, duplicate, logger))
	router.RegisterEntityRoutes(
		NewRoomHandler(rooms, walls, fixtures, logger),
		NewWallHandler(walls, logger),
		NewFixtureHandler(fixtures, logger),
		NewMeasurementHandler(measurements, logger),
	)
	router.RegisterBulkRoutes(NewBulkHandler(bulk, logger))
	router.RegisterGeometryRoutes(NewGeometryHandler(logger))
	return router
}

// doJSON 发送 JSON 请求并解包 Result 信封
func doJSON(t *testing.T, router *Router, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec.Code, envelope
}

func TestSketchCRUDFlow(t *testing.T) {
	router := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{
		"name":          "Kitchen Remodel",
		"scale_factor":  100,
		"canvas_width":  800,
		"canvas_height": 600,
	})
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, float64(ResultSuccess), resp["code"])
	sketch := resp["result"].(map[string]any)
	sketchID := sketch["sketch_id"].(string)
	require.NotEmpty(t, sketchID)

	code, resp = doJSON(t, router, http.MethodGet, "/api/v1/sketches/"+sketchID, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Kitchen Remodel", resp["result"].(map[string]any)["name"])

	code, resp = doJSON(t, router, http.MethodPut, "/api/v1/sketches/"+sketchID, map[string]any{
		"name": "Kitchen Remodel v2",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Kitchen Remodel v2", resp["result"].(map[string]any)["name"])

	code, resp = doJSON(t, router, http.MethodDelete, "/api/v1/sketches/"+sketchID, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, resp["result"].(map[string]any)["archived"])

	code, _ = doJSON(t, router, http.MethodGet, "/api/v1/sketches/"+sketchID, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestSketchValidationErrorsMapTo400(t *testing.T) {
	router := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{
		"name":       "Bad Unit",
		"scale_unit": "furlong",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "error", resp["type"])
}

func TestRoomCreateDerivesArea(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{"name": "Plan"})
	sketchID := resp["result"].(map[string]any)["sketch_id"].(string)

	code, resp := doJSON(t, router, http.MethodPost, "/api/v1/rooms", map[string]any{
		"sketch_id": sketchID,
		"name":      "Kitchen",
		"geometry":  map[string]any{"type": "rectangle", "x": 0, "y": 0, "width": 10, "height": 10},
	})
	require.Equal(t, http.StatusCreated, code)
	room := resp["result"].(map[string]any)
	require.Equal(t, float64(100), room["area"])

	// Sketch totals already reflect the new room.
	_, resp = doJSON(t, router, http.MethodGet, "/api/v1/sketches/"+sketchID, nil)
	require.Equal(t, float64(100), resp["result"].(map[string]any)["total_area"])
}

func TestCostEndpointAppliesMarkup(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{"name": "Plan"})
	sketchID := resp["result"].(map[string]any)["sketch_id"].(string)
	_, resp = doJSON(t, router, http.MethodPost, "/api/v1/rooms", map[string]any{
		"sketch_id": sketchID,
		"name":      "Kitchen",
		"geometry":  map[string]any{"type": "rectangle", "x": 0, "y": 0, "width": 10, "height": 10},
	})
	roomID := resp["result"].(map[string]any)["room_id"].(string)
	_, _ = doJSON(t, router, http.MethodPost, "/api/v1/fixtures", map[string]any{
		"room_id":           roomID,
		"name":              "Sink",
		"unit_cost":         100,
		"installation_cost": 50,
	})

	path := fmt.Sprintf("/api/v1/sketches/%s/costs?markup_percentage=10", sketchID)
	code, resp := doJSON(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	b := resp["result"].(map[string]any)
	require.Equal(t, float64(100), b["total_materials"])
	require.Equal(t, float64(50), b["total_labor"])
	require.Equal(t, float64(15), b["markup_amount"])
	require.Equal(t, float64(165), b["total_cost"])
}

func TestCostExportReturnsWorkbook(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{"name": "Plan"})
	sketchID := resp["result"].(map[string]any)["sketch_id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sketches/"+sketchID+"/costs/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestDuplicateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{"name": "Source"})
	sketchID := resp["result"].(map[string]any)["sketch_id"].(string)

	code, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches/"+sketchID+"/duplicate", map[string]any{
		"name": "Copy",
	})
	require.Equal(t, http.StatusCreated, code)
	dup := resp["result"].(map[string]any)
	require.Equal(t, "Copy", dup["name"])
	require.NotEqual(t, sketchID, dup["sketch_id"])
	require.Equal(t, "draft", dup["status"])
}

func TestBulkCreateEndpointRollsBack(t *testing.T) {
	router := newTestRouter(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/v1/sketches", map[string]any{"name": "Plan"})
	sketchID := resp["result"].(map[string]any)["sketch_id"].(string)

	code, _ := doJSON(t, router, http.MethodPost, "/api/v1/bulk/create", map[string]any{
		"rooms": []map[string]any{
			{
				"sketch_id": sketchID,
				"name":      "Good",
				"geometry":  map[string]any{"type": "rectangle", "x": 0, "y": 0, "width": 5, "height": 5},
			},
		},
		"walls": []map[string]any{
			{
				"room_id":     "no-such-room",
				"start_point": map[string]any{"x": 0, "y": 0},
				"end_point":   map[string]any{"x": 1, "y": 0},
			},
		},
	})
	require.Equal(t, http.StatusNotFound, code)

	_, resp = doJSON(t, router, http.MethodGet, "/api/v1/sketches/"+sketchID+"/rooms", nil)
	require.Empty(t, resp["result"])
}

func TestGeometryAreaEndpoint(t *testing.T) {
	router := newTestRouter(t)

	code, resp := doJSON(t, router, http.MethodPost, "/api/v1/geometry/area", map[string]any{
		"geometry":     map[string]any{"type": "rectangle", "x": 0, "y": 0, "width": 200, "height": 100},
		"scale_factor": 100,
		"scale_unit":   "ft",
	})
	require.Equal(t, http.StatusOK, code)
	result := resp["result"].(map[string]any)
	require.Equal(t, float64(2), result["area"])
	require.Equal(t, float64(6), result["perimeter"])

	// Undersized polygon is a structural error here, not a zero result.
	code, _ = doJSON(t, router, http.MethodPost, "/api/v1/geometry/area", map[string]any{
		"geometry": map[string]any{"type": "polygon", "points": []map[string]any{{"x": 0, "y": 0}}},
	})
	require.Equal(t, http.StatusBadRequest, code)
}
