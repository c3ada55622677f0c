package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/service"

	"go.uber.org/zap"
)

// SketchHandler 草图管理 Handler（含复制、成本汇总与报表导出）
type SketchHandler struct {
	sketchService    service.SketchService
	roomService      service.RoomService
	measurementSvc   service.MeasurementService
	costService      service.CostService
	duplicateService service.DuplicateService
	logger           *zap.Logger
}

// NewSketchHandler 创建草图管理 Handler
func NewSketchHandler(
	sketchService service.SketchService,
	roomService service.RoomService,
	measurementSvc service.MeasurementService,
	costService service.CostService,
	duplicateService service.DuplicateService,
	logger *zap.Logger,
) *SketchHandler {
	return &SketchHandler{
		sketchService:    sketchService,
		roomService:      roomService,
		measurementSvc:   measurementSvc,
		costService:      costService,
		duplicateService: duplicateService,
		logger:           logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *SketchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	if r.URL.Path == "/api/v1/sketches" {
		switch r.Method {
		case http.MethodGet:
			h.ListSketches(w, r)
		case http.MethodPost:
			h.CreateSketch(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, suffix := pathID(r.URL.Path, "/api/v1/sketches/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case suffix == "" && r.Method == http.MethodGet:
		h.GetSketch(w, r, id)
	case suffix == "" && r.Method == http.MethodPut:
		h.UpdateSketch(w, r, id)
	case suffix == "" && r.Method == http.MethodDelete:
		h.DeleteSketch(w, r, id)
	case suffix == "status" && r.Method == http.MethodPut:
		h.UpdateStatus(w, r, id)
	case suffix == "duplicate" && r.Method == http.MethodPost:
		h.DuplicateSketch(w, r, id)
	case suffix == "rooms" && r.Method == http.MethodGet:
		h.ListRooms(w, r, id)
	case suffix == "measurements" && r.Method == http.MethodGet:
		h.ListMeasurements(w, r, id)
	case suffix == "costs" && r.Method == http.MethodGet:
		h.CalculateCosts(w, r, id)
	case suffix == "costs/export" && r.Method == http.MethodGet:
		h.ExportCostReport(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListSketches 草图列表（支持状态/模板过滤、名称搜索与分页）
func (h *SketchHandler) ListSketches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListSketchesRequest{
		Status:     domain.SketchStatus(q.Get("status")),
		IsTemplate: parseBool(q.Get("is_template")),
		Search:     q.Get("search"),
		Page:       parseInt(q.Get("page"), 1),
		Size:       parseInt(q.Get("size"), 50),
	}
	resp, err := h.sketchService.ListSketches(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": sketchesToJSON(resp.Items),
		"total": resp.Total,
		"page":  resp.Page,
		"size":  resp.Size,
	}))
}

// CreateSketch 创建草图
func (h *SketchHandler) CreateSketch(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSketchRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sketch, err := h.sketchService.CreateSketch(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(sketchToJSON(sketch)))
}

// GetSketch 获取单个草图
func (h *SketchHandler) GetSketch(w http.ResponseWriter, r *http.Request, id string) {
	sketch, err := h.sketchService.GetSketch(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sketchToJSON(sketch)))
}

// UpdateSketch 更新草图
func (h *SketchHandler) UpdateSketch(w http.ResponseWriter, r *http.Request, id string) {
	var req service.UpdateSketchRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sketch, err := h.sketchService.UpdateSketch(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sketchToJSON(sketch)))
}

// UpdateStatus 更新草图生命周期状态
func (h *SketchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status domain.SketchStatus `json:"status"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sketch, err := h.sketchService.UpdateSketchStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sketchToJSON(sketch)))
}

// DeleteSketch 删除草图（关联已定稿账务时归档）
func (h *SketchHandler) DeleteSketch(w http.ResponseWriter, r *http.Request, id string) {
	resp, err := h.sketchService.DeleteSketch(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// DuplicateSketch 深拷贝草图
func (h *SketchHandler) DuplicateSketch(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sketch, err := h.duplicateService.DuplicateSketch(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(sketchToJSON(sketch)))
}

// ListRooms 草图下的房间列表
func (h *SketchHandler) ListRooms(w http.ResponseWriter, r *http.Request, id string) {
	rooms, err := h.roomService.ListRooms(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(roomsToJSON(rooms)))
}

// ListMeasurements 草图下的测量项列表
func (h *SketchHandler) ListMeasurements(w http.ResponseWriter, r *http.Request, id string) {
	measurements, err := h.measurementSvc.ListMeasurements(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(measurementsToJSON(measurements)))
}

// costRequestFromQuery 从查询参数构造成本计算请求
func costRequestFromQuery(r *http.Request, sketchID string) service.CostRequest {
	q := r.URL.Query()
	includeLabor := true
	includeMaterials := true
	if b := parseBool(q.Get("include_labor")); b != nil {
		includeLabor = *b
	}
	if b := parseBool(q.Get("include_materials")); b != nil {
		includeMaterials = *b
	}
	return service.CostRequest{
		SketchID:         sketchID,
		IncludeLabor:     includeLabor,
		IncludeMaterials: includeMaterials,
		MarkupPercentage: parseFloat(q.Get("markup_percentage"), 0),
	}
}

// CalculateCosts 草图成本汇总
func (h *SketchHandler) CalculateCosts(w http.ResponseWriter, r *http.Request, id string) {
	breakdown, err := h.costService.CalculateSketchCosts(r.Context(), costRequestFromQuery(r, id))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(breakdown))
}

// ExportCostReport 导出成本报表（Excel）
func (h *SketchHandler) ExportCostReport(w http.ResponseWriter, r *http.Request, id string) {
	breakdown, err := h.costService.CalculateSketchCosts(r.Context(), costRequestFromQuery(r, id))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	data, err := GenerateCostReport(breakdown)
	if err != nil {
		h.logger.Error("cost report generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("report generation failed"))
		return
	}
	filename := fmt.Sprintf("cost-report-%s-%s.xlsx", id, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
