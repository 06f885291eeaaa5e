package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/devlog/devlog-server/internal/errors"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	} else {
		s.log.Debug().Err(err).Msg("request rejected")
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	s.writeJSON(w, status, errorResponse{Detail: http.StatusText(status)})
}

// statusFromError maps domain errors onto HTTP statuses. Staging store
// outages are deliberately 503, not 401: an unreachable blacklist must
// read as "try again", never as "token invalid".
func statusFromError(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case apperrors.Is(err, apperrors.ErrInvalidCredentials),
		apperrors.Is(err, apperrors.ErrWrongPassword),
		apperrors.Is(err, apperrors.ErrTokenExpired),
		apperrors.Is(err, apperrors.ErrInvalidToken),
		apperrors.Is(err, apperrors.ErrTokenRevoked),
		apperrors.Is(err, apperrors.ErrRefreshExhausted),
		apperrors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbidden), apperrors.Is(err, apperrors.ErrNotAuthor):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrArticleNotFound),
		apperrors.Is(err, apperrors.ErrUserNotFound),
		apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
