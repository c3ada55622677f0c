package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterSketchRoutes 注册草图相关路由
func (r *Router) RegisterSketchRoutes(h *SketchHandler) {
	r.Handle("/api/v1/sketches", h.ServeHTTP)
	r.Handle("/api/v1/sketches/", h.ServeHTTP)
}

// RegisterEntityRoutes 注册房间/墙体/固定装置/测量项路由
func (r *Router) RegisterEntityRoutes(rooms *RoomHandler, walls *WallHandler, fixtures *FixtureHandler, measurements *MeasurementHandler) {
	r.Handle("/api/v1/rooms", rooms.ServeHTTP)
	r.Handle("/api/v1/rooms/", rooms.ServeHTTP)
	r.Handle("/api/v1/walls", walls.ServeHTTP)
	r.Handle("/api/v1/walls/", walls.ServeHTTP)
	r.Handle("/api/v1/fixtures", fixtures.ServeHTTP)
	r.Handle("/api/v1/fixtures/", fixtures.ServeHTTP)
	r.Handle("/api/v1/measurements", measurements.ServeHTTP)
	r.Handle("/api/v1/measurements/", measurements.ServeHTTP)
}

// RegisterBulkRoutes 注册批量操作路由
func (r *Router) RegisterBulkRoutes(h *BulkHandler) {
	r.Handle("/api/v1/bulk/create", h.BulkCreate)
	r.Handle("/api/v1/bulk/sort-order", h.BulkUpdateSortOrder)
	r.Handle("/api/v1/bulk/delete", h.BulkDelete)
}

// RegisterGeometryRoutes 注册无状态几何计算路由
func (r *Router) RegisterGeometryRoutes(h *GeometryHandler) {
	r.Handle("/api/v1/geometry/area", h.CalculateArea)
}

// pathID 从 "/api/v1/<collection>/{id}[/suffix]" 中取出 id 与剩余后缀
func pathID(path, prefix string) (id, suffix string) {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}
