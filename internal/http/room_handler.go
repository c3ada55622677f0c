package httpapi

import (
	"net/http"

	"homesketch-data/internal/service"

	"go.uber.org/zap"
)

// RoomHandler 房间管理 Handler
type RoomHandler struct {
	roomService    service.RoomService
	wallService    service.WallService
	fixtureService service.FixtureService
	logger         *zap.Logger
}

// NewRoomHandler 创建房间管理 Handler
func NewRoomHandler(roomService service.RoomService, wallService service.WallService, fixtureService service.FixtureService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{
		roomService:    roomService,
		wallService:    wallService,
		fixtureService: fixtureService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *RoomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/rooms" {
		if r.Method == http.MethodPost {
			h.CreateRoom(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, suffix := pathID(r.URL.Path, "/api/v1/rooms/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case suffix == "" && r.Method == http.MethodGet:
		h.GetRoom(w, r, id)
	case suffix == "" && r.Method == http.MethodPut:
		h.UpdateRoom(w, r, id)
	case suffix == "" && r.Method == http.MethodDelete:
		h.DeleteRoom(w, r, id)
	case suffix == "walls" && r.Method == http.MethodGet:
		h.ListWalls(w, r, id)
	case suffix == "fixtures" && r.Method == http.MethodGet:
		h.ListFixtures(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// CreateRoom 创建房间（面积/周长由几何推导）
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRoomRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	room, err := h.roomService.CreateRoom(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(roomToJSON(room)))
}

// GetRoom 获取单个房间
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request, id string) {
	room, err := h.roomService.GetRoom(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(roomToJSON(room)))
}

// UpdateRoom 更新房间
func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, id string) {
	var req service.UpdateRoomRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	room, err := h.roomService.UpdateRoom(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(roomToJSON(room)))
}

// DeleteRoom 删除房间（级联墙体与固定装置）
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.roomService.DeleteRoom(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"room_id": id}))
}

// ListWalls 房间下的墙体列表
func (h *RoomHandler) ListWalls(w http.ResponseWriter, r *http.Request, id string) {
	walls, err := h.wallService.ListWalls(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(wallsToJSON(walls)))
}

// ListFixtures 房间下的固定装置列表
func (h *RoomHandler) ListFixtures(w http.ResponseWriter, r *http.Request, id string) {
	fixtures, err := h.fixtureService.ListFixtures(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(fixturesToJSON(fixtures)))
}
