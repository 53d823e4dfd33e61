package http

import (
	"net/http"
	"strings"

	"user-management/internal/domain"
	"user-management/internal/dto"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.paths.List(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", dto.LearningPathsResponse{LearningPaths: paths})
}

// listPublicPaths serves the caller's own paths when authenticated and the
// public catalogue otherwise.
func (h *Handler) listPublicPaths(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	var (
		paths []domain.LearningPath
		err   error
	)
	if id.Anonymous {
		paths, err = h.paths.ListPublic(r.Context())
	} else {
		paths, err = h.paths.List(r.Context(), id.UserID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", dto.LearningPathsResponse{LearningPaths: paths})
}

func (h *Handler) getPath(w http.ResponseWriter, r *http.Request) {
	pathID, err := uuidParam(r, "pathId", domain.ErrMissingPathID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.paths.Get(r.Context(), identity(r).UserID, pathID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", dto.LearningPathResponse{LearningPath: p})
}

func (h *Handler) updateCourseProgress(w http.ResponseWriter, r *http.Request) {
	pathID, err := uuidParam(r, "pathId", domain.ErrMissingPathID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateCourseProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	courseID := strings.TrimSpace(chi.URLParam(r, "courseId"))
	p, err := h.paths.UpdateCourseProgress(r.Context(), identity(r).UserID, pathID, courseID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "course progress updated", dto.LearningPathResponse{LearningPath: p})
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	s, err := h.paths.Progress(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", dto.ProgressResponse{Progress: *s})
}
