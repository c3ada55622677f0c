package httpapi

import (
	"net/http"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/geometry"

	"go.uber.org/zap"
)

// GeometryHandler 无状态几何计算 Handler
// 前端画图过程中的实时面积预览，不落库。
type GeometryHandler struct {
	logger *zap.Logger
}

// NewGeometryHandler 创建几何计算 Handler
func NewGeometryHandler(logger *zap.Logger) *GeometryHandler {
	return &GeometryHandler{logger: logger}
}

// CalculateArea 从几何计算实际单位的面积/周长
func (h *GeometryHandler) CalculateArea(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Geometry    domain.Geometry `json:"geometry"`
		ScaleFactor float64         `json:"scale_factor"`
		ScaleUnit   string          `json:"scale_unit"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.ScaleUnit == "" {
		req.ScaleUnit = "ft"
	}
	if !geometry.KnownUnit(req.ScaleUnit) {
		writeJSON(w, http.StatusBadRequest, Fail("unknown scale_unit"))
		return
	}
	result, err := geometry.AreaFromGeometry(req.Geometry, req.ScaleFactor, req.ScaleUnit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}
