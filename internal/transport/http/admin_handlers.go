package http

import (
	"net/http"

	"user-management/internal/domain"
	"user-management/internal/dto"
)

func (h *Handler) sweepSessions(w http.ResponseWriter, r *http.Request) {
	n, err := h.auth.SweepExpired(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "expired sessions removed", dto.SweepResponse{Deleted: n})
}

func (h *Handler) revokeUserSessions(w http.ResponseWriter, r *http.Request) {
	uid, err := uuidParam(r, "id", domain.ErrMissingUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.auth.LogoutEverywhere(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "sessions revoked", dto.LogoutAllResponse{Invalidated: n})
}
