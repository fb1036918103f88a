package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"mediops/internal/schedules/service"
	httputil "mediops/pkg/http"
	"mediops/pkg/logger"
)

type ScheduleHandler struct {
	service service.ScheduleService
	log     *logger.Logger
}

func NewScheduleHandler(service service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log,
	}
}

// Put builds the full weekly grid from the admin's weekday/weekend slot
// selections and upserts it for the (doctor, hospital) pair.
func (h *ScheduleHandler) Put(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sel service.WeekSelection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Put", "error", writeErr)
		}
		return
	}

	ws, err := h.service.PutFromSelection(r.Context(), &sel)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Put", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ws); err != nil {
		h.log.Error("failed to write success response", "handler", "Put", "error", err)
	}
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	doctorID := strings.TrimSpace(query.Get("doctor_id"))
	hospitalID := strings.TrimSpace(query.Get("hospital_id"))

	if doctorID == "" || hospitalID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'doctor_id' and 'hospital_id' query parameters are required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Get", "error", writeErr)
		}
		return
	}

	ws, err := h.service.Get(r.Context(), doctorID, hospitalID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ws); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *ScheduleHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	doctorID := strings.TrimSpace(query.Get("doctor_id"))
	hospitalID := strings.TrimSpace(query.Get("hospital_id"))
	date := strings.TrimSpace(query.Get("date"))

	if doctorID == "" || hospitalID == "" || date == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'doctor_id', 'hospital_id' and 'date' query parameters are required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Availability", "error", writeErr)
		}
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), doctorID, hospitalID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "error", err)
	}
}

type toggleRequest struct {
	Selection []string `json:"selection"`
	Slot      string   `json:"slot"`
}

type toggleResponse struct {
	Selection []string `json:"selection"`
}

// Toggle flips one slot's membership in a selection set before the grid
// is built, matching existing members component-wise.
func (h *ScheduleHandler) Toggle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Toggle", "error", writeErr)
		}
		return
	}

	selection, err := h.service.ToggleSlot(req.Selection, req.Slot)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Toggle", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, toggleResponse{Selection: selection}); err != nil {
		h.log.Error("failed to write success response", "handler", "Toggle", "error", err)
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/schedules", h.Put)
	router.GET("/api/v1/schedules", h.Get)
	router.GET("/api/v1/schedules/availability", h.Availability)
	router.POST("/api/v1/schedules/selection/toggle", h.Toggle)
}
