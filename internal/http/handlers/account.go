package handlers

import (
	"net/http"

	"sulytrack/internal/apperr"
	"sulytrack/internal/auth"
	"sulytrack/internal/domain"
	"sulytrack/internal/logx"
)

// AccountHandler serves logins, public registration and the driver self-service panel.
type AccountHandler struct {
	drivers driverUsecase
	admins  auth.AdminAuthenticator
	tokens  tokenIssuer
	logger  logx.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(logger logx.Logger, drivers driverUsecase, admins auth.AdminAuthenticator, tokens tokenIssuer) *AccountHandler {
	return &AccountHandler{drivers: drivers, admins: admins, tokens: tokens, logger: logger}
}

// AdminLogin handles POST /api/admin/login.
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} ErrorResponse "unauthorized"
// @Router /api/admin/login [post]
func (h *AccountHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	subject, err := h.admins.AuthenticateAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	h.issue(w, r, subject, auth.RoleAdmin)
}

// DriverLogin handles POST /api/driver/login. Only approved drivers get a token.
func (h *AccountHandler) DriverLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.drivers.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	h.issue(w, r, d.ID, auth.RoleDriver)
}

func (h *AccountHandler) issue(w http.ResponseWriter, r *http.Request, subject, role string) {
	tok, err := h.tokens.Issue(subject, role)
	if err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, tokenResponse{Token: tok.Value, ExpiresAt: tok.ExpiresAt, Role: role})
}

// Register handles POST /api/register. New drivers wait for admin approval.
// @Summary Register as a driver
// @Tags public
// @Accept json
// @Produce json
// @Param request body registerRequest true "Driver application"
// @Success 201 {object} driverDTO
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 409 {object} ErrorResponse "email already registered"
// @Router /api/register [post]
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.drivers.Register(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err, emailConflict)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, driverToResponse(*d))
}

// Me handles GET /api/driver/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.driverID(w, r)
	if !ok {
		return
	}
	d, err := h.drivers.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
}

// SetAvailability handles PUT /api/driver/me/availability and changes nothing else.
func (h *AccountHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.driverID(w, r)
	if !ok {
		return
	}
	var req availabilityRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.IsAvailable == nil {
		writeServiceError(h.logger, w, r, domain.ValidationErrors{"isAvailable": "is required"}, "")
		return
	}
	d, err := h.drivers.SetAvailability(r.Context(), id, *req.IsAvailable)
	if err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
}

func (h *AccountHandler) driverID(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := auth.ClaimsFrom(r.Context())
	if c == nil || c.Role != auth.RoleDriver || c.Subject == "" {
		writeServiceError(h.logger, w, r, apperr.ErrUnauthorized, "")
		return "", false
	}
	return c.Subject, true
}
