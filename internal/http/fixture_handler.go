package httpapi

import (
	"net/http"

	"homesketch-data/internal/service"

	"go.uber.org/zap"
)

// FixtureHandler 固定装置管理 Handler
type FixtureHandler struct {
	fixtureService service.FixtureService
	logger         *zap.Logger
}

// NewFixtureHandler 创建固定装置管理 Handler
func NewFixtureHandler(fixtureService service.FixtureService, logger *zap.Logger) *FixtureHandler {
	return &FixtureHandler{fixtureService: fixtureService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *FixtureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/fixtures" {
		if r.Method == http.MethodPost {
			h.CreateFixture(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, suffix := pathID(r.URL.Path, "/api/v1/fixtures/")
	if id == "" || suffix != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetFixture(w, r, id)
	case http.MethodPut:
		h.UpdateFixture(w, r, id)
	case http.MethodDelete:
		h.DeleteFixture(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CreateFixture 创建固定装置
func (h *FixtureHandler) CreateFixture(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFixtureRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	fixture, err := h.fixtureService.CreateFixture(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(fixtureToJSON(fixture)))
}

// GetFixture 获取单个固定装置
func (h *FixtureHandler) GetFixture(w http.ResponseWriter, r *http.Request, id string) {
	fixture, err := h.fixtureService.GetFixture(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(fixtureToJSON(fixture)))
}

// UpdateFixture 更新固定装置
func (h *FixtureHandler) UpdateFixture(w http.ResponseWriter, r *http.Request, id string) {
	var req service.UpdateFixtureRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	fixture, err := h.fixtureService.UpdateFixture(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(fixtureToJSON(fixture)))
}

// DeleteFixture 删除固定装置
func (h *FixtureHandler) DeleteFixture(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.fixtureService.DeleteFixture(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"fixture_id": id}))
}
