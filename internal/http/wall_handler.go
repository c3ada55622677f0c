package httpapi

import (
	"net/http"

	"homesketch-data/internal/service"

	"go.uber.org/zap"
)

// WallHandler 墙体管理 Handler
type WallHandler struct {
	wallService service.WallService
	logger      *zap.Logger
}

// NewWallHandler 创建墙体管理 Handler
func NewWallHandler(wallService service.WallService, logger *zap.Logger) *WallHandler {
	return &WallHandler{wallService: wallService, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *WallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/walls" {
		if r.Method == http.MethodPost {
			h.CreateWall(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, suffix := pathID(r.URL.Path, "/api/v1/walls/")
	if id == "" || suffix != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetWall(w, r, id)
	case http.MethodPut:
		h.UpdateWall(w, r, id)
	case http.MethodDelete:
		h.DeleteWall(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// CreateWall 创建墙体（长度/角度/面积/成本由端点推导）
func (h *WallHandler) CreateWall(w http.ResponseWriter, r *http.Request) {
	var req service.CreateWallRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	wall, err := h.wallService.CreateWall(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(wallToJSON(wall)))
}

// GetWall 获取单个墙体
func (h *WallHandler) GetWall(w http.ResponseWriter, r *http.Request, id string) {
	wall, err := h.wallService.GetWall(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(wallToJSON(wall)))
}

// UpdateWall 更新墙体
func (h *WallHandler) UpdateWall(w http.ResponseWriter, r *http.Request, id string) {
	var req service.UpdateWallRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	wall, err := h.wallService.UpdateWall(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(wallToJSON(wall)))
}

// DeleteWall 删除墙体（级联其上的固定装置）
func (h *WallHandler) DeleteWall(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.wallService.DeleteWall(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"wall_id": id}))
}
