package httpapi

import (
	"net/http"

	"homesketch-data/internal/service"

	"go.uber.org/zap"
)

// MeasurementHandler 测量项管理 Handler
type MeasurementHandler struct {
	measurementSvc service.MeasurementService
	logger         *zap.Logger
}

// NewMeasurementHandler 创建测量项管理 Handler
func NewMeasurementHandler(measurementSvc service.MeasurementService, logger *zap.Logger) *MeasurementHandler {
	return &MeasurementHandler{measurementSvc: measurementSvc, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *MeasurementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/measurements" {
		if r.Method == http.MethodPost {
			h.CreateMeasurement(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, suffix := pathID(r.URL.Path, "/api/v1/measurements/")
	if id == "" || suffix != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetMeasurement(w, r, id)
	case http.MethodPut:
		h.UpdateMeasurement(w, r, id)
	case http.MethodDelete:
		h.DeleteMeasurement(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CreateMeasurement 创建测量项
func (h *MeasurementHandler) CreateMeasurement(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMeasurementRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	m, err := h.measurementSvc.CreateMeasurement(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(measurementToJSON(m)))
}

// GetMeasurement 获取单个测量项
func (h *MeasurementHandler) GetMeasurement(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.measurementSvc.GetMeasurement(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(measurementToJSON(m)))
}

// UpdateMeasurement 更新测量项
func (h *MeasurementHandler) UpdateMeasurement(w http.ResponseWriter, r *http.Request, id string) {
	var req service.UpdateMeasurementRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	m, err := h.measurementSvc.UpdateMeasurement(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(measurementToJSON(m)))
}

// DeleteMeasurement 删除测量项
func (h *MeasurementHandler) DeleteMeasurement(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.measurementSvc.DeleteMeasurement(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"measurement_id": id}))
}
