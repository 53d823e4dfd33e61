package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"user-management/internal/domain"
	"user-management/internal/dto"
	obsmw "user-management/internal/observability/middleware"
	authmw "user-management/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeOK(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, dto.Envelope{Success: true, Message: msg, Data: data})
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInput:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err in the error envelope. Server-side failures keep
// their code but never leak the underlying cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := dto.ErrorResponse{Code: domain.CodeInternal, Message: "internal server error"}
	if de, ok := domain.AsError(err); ok {
		resp.Code = de.Code
		resp.Reason = de.Reason
		if status < http.StatusInternalServerError {
			resp.Message = de.Message
			resp.Details = de.Details
		}
	}
	attrs := append(obsmw.LogAttrs(r.Context()), "method", r.Method, "path", r.URL.Path, "status", status, "code", resp.Code)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", append(attrs, "error", err)...)
	} else {
		slog.Debug("request rejected", append(attrs, "error", err)...)
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrInvalidInput.WithMessage("request body is required")
		}
		return domain.ErrInvalidInput.WithMessage("malformed JSON body").Wrap(err)
	}
	return nil
}

func identity(r *http.Request) domain.Identity {
	id, ok := authmw.IdentityFrom(r.Context())
	if !ok {
		return domain.AnonymousIdentity()
	}
	return id
}

// uuidParam parses a path parameter; missing is returned when it is absent.
func uuidParam(r *http.Request, name string, missing *domain.Error) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, missing
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidInput.WithMessage("invalid " + name).Wrap(err)
	}
	return id, nil
}
