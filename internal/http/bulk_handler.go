package httpapi

import (
	"net/http"

	"homesketch-data/internal/service"

	"go.uber.org/zap"
)

// BulkHandler 批量操作 Handler
type BulkHandler struct {
	bulkService service.BulkService
	logger      *zap.Logger
}

// NewBulkHandler 创建批量操作 Handler
func NewBulkHandler(bulkService service.BulkService, logger *zap.Logger) *BulkHandler {
	return &BulkHandler{bulkService: bulkService, logger: logger}
}

// BulkCreate 批量创建（单事务，任一失败整体回滚）
func (h *BulkHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req service.BulkCreateRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	result, err := h.bulkService.BulkCreate(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(map[string]any{
		"rooms":        roomsToJSON(result.Rooms),
		"walls":        wallsToJSON(result.Walls),
		"fixtures":     fixturesToJSON(result.Fixtures),
		"measurements": measurementsToJSON(result.Measurements),
	}))
}

// BulkUpdateSortOrder 批量调整排序
func (h *BulkHandler) BulkUpdateSortOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		EntityType string                    `json:"entity_type"`
		Updates    []service.SortOrderUpdate `json:"updates"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if err := h.bulkService.BulkUpdateSortOrder(r.Context(), req.EntityType, req.Updates); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]int{"updated": len(req.Updates)}))
}

// BulkDelete 批量删除
func (h *BulkHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		EntityType string   `json:"entity_type"`
		IDs        []string `json:"ids"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if err := h.bulkService.BulkDelete(r.Context(), req.EntityType, req.IDs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]int{"deleted": len(req.IDs)}))
}
