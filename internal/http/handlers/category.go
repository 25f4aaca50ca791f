package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sulytrack/internal/domain"
	"sulytrack/internal/logx"
)

const categoryConflict = "category id already exists"

// CategoryHandler serves the admin category endpoints and the public category list.
type CategoryHandler struct {
	uc     categoryUsecase
	logger logx.Logger
}

// NewCategoryHandler wires a category usecase into HTTP handlers.
func NewCategoryHandler(logger logx.Logger, uc categoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: logger}
}

// List handles GET /api/admin/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.List(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err, categoryConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, categoriesToResponse(list, categoryToResponse))
}

// PublicList handles GET /api/categories. Each category carries its resolved icon.
// @Summary List vehicle categories
// @Tags public
// @Produce json
// @Success 200 {array} categoryDTO
// @Failure 500 {object} ErrorResponse "internal error"
// @Router /api/categories [get]
func (h *CategoryHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.List(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err, categoryConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, categoriesToResponse(list, categoryWithIcon))
}

// Icons handles GET /api/icons, the closed icon catalog a category may reference.
func (h *CategoryHandler) Icons(w http.ResponseWriter, r *http.Request) {
	icons := domain.Icons()
	out := make([]iconDTO, 0, len(icons))
	for _, icon := range icons {
		out = append(out, iconDTO{Name: icon.Name, Asset: icon.Asset})
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// Create handles POST /api/admin/categories.
// @Summary Create a vehicle category
// @Tags admin
// @Accept json
// @Produce json
// @Param request body createCategoryRequest true "Category"
// @Success 201 {object} categoryDTO
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 409 {object} ErrorResponse "category id already exists"
// @Router /api/admin/categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	c, err := h.uc.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err, categoryConflict)
		return
	}
	w.Header().Set("Location", "/api/admin/categories/"+c.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, categoryToResponse(*c))
}

// Update handles PATCH /api/admin/categories/{id}. The id itself cannot change.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	c, err := h.uc.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		writeServiceError(h.logger, w, r, err, categoryConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, categoryToResponse(*c))
}

// Delete handles DELETE /api/admin/categories/{id}?confirm=true.
// Drivers of the category are kept and fall back to the default marker.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(h.logger, w, r) {
		return
	}
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(h.logger, w, r, err, categoryConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
