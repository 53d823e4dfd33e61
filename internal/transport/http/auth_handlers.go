package http

import (
	"net/http"

	"user-management/internal/dto"
	authmw "user-management/internal/transport/http/middleware"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "user registered", res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req, h.clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "login successful", res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	res, err := h.auth.Logout(r.Context(), authmw.TokenFrom(r.Context()), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "logout successful", res)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	res, err := h.auth.ActiveSessions(r.Context(), id.UserID, id.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", res)
}

func (h *Handler) logoutEverywhere(w http.ResponseWriter, r *http.Request) {
	n, err := h.auth.LogoutEverywhere(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "all sessions closed", dto.LogoutAllResponse{Invalidated: n})
}
