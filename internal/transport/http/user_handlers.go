package http

import (
	"net/http"

	"user-management/internal/domain"
	"user-management/internal/dto"

	"github.com/go-chi/chi/v5"
)

// targetUser resolves the {id} path parameter, defaulting to the caller on
// the /me routes. Callers may only reach their own profile.
func targetUser(r *http.Request) (domain.UserID, error) {
	caller := identity(r)
	if chi.URLParam(r, "id") == "" {
		return caller.UserID, nil
	}
	id, err := uuidParam(r, "id", domain.ErrMissingUserID)
	if err != nil {
		return id, err
	}
	if id != caller.UserID {
		return id, domain.ErrForbidden.WithMessage("cannot access another user's profile")
	}
	return id, nil
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := targetUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.profiles.GetProfile(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", res)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := targetUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.profiles.UpdateProfile(r.Context(), uid, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "profile updated", res)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	uid, err := targetUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.profiles.Dashboard(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", res)
}
