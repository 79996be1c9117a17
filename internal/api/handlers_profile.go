package api

import (
	"net/http"

	"github.com/blackboxsec/blackbox/internal/domain/model"
	"github.com/blackboxsec/blackbox/internal/service"
)

// ProfileHandlers provides HTTP handlers for the environment profile surface.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

// GetProfile handles HTTP requests for the active profile and catalog overview.
func (h *ProfileHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.Active(r.Context()))
}

// switchProfileRequest is the body for POST /api/profile/switch.
type switchProfileRequest struct {
	Profile string `json:"profile"`
	Reason  string `json:"reason"`
}

// SwitchProfile handles HTTP requests to activate a profile. Refused with a
// conflict while jobs are running.
func (h *ProfileHandlers) SwitchProfile(w http.ResponseWriter, r *http.Request) {
	var req switchProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.Switch(r.Context(), req.Profile, req.Reason, model.TriggeredByAPI); err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.Svc.Active(r.Context()))
}

// GetProfileLog handles HTTP requests for the profile change audit trail,
// newest first.
func (h *ProfileHandlers) GetProfileLog(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)

	entries, err := h.Svc.Log(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, entries)
}
