package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sulytrack/internal/logx"
)

const emailConflict = "email already registered"

// DriverHandler serves the admin driver endpoints.
type DriverHandler struct {
	uc     driverUsecase
	logger logx.Logger
}

// NewDriverHandler wires a driver usecase into HTTP handlers.
func NewDriverHandler(logger logx.Logger, uc driverUsecase) *DriverHandler {
	return &DriverHandler{uc: uc, logger: logger}
}

// List handles GET /api/admin/drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.List(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err, emailConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driversToResponse(list))
}

// Get handles GET /api/admin/drivers/{id}.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err, emailConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
}

// Create handles POST /api/admin/drivers.
// @Summary Create a driver
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createDriverRequest true "Driver"
// @Success 201 {object} driverDTO
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 409 {object} ErrorResponse "email already registered"
// @Router /api/admin/drivers [post]
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err, emailConflict)
		return
	}
	w.Header().Set("Location", "/api/admin/drivers/"+d.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, driverToResponse(*d))
}

// Update handles PATCH /api/admin/drivers/{id}. An empty password keeps the current one.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.uc.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(h.logger, w, r, err, emailConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
}

// Delete handles DELETE /api/admin/drivers/{id}?confirm=true.
func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(h.logger, w, r) {
		return
	}
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(h.logger, w, r, err, emailConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
