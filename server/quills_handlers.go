package server

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/media"
)

const maxUploadMemory = 32 << 20 // bytes buffered in memory per multipart upload

// QuillUploadHandler stores a rich text editor upload under the user's
// directory below dir and returns its URL for embedding.
func (s *Server) QuillUploadHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			s.writeError(w, apperrors.ErrUnauthenticated)
			return
		}
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			http.Error(w, `{"detail":"invalid multipart body"}`, http.StatusBadRequest)
			return
		}

		header := firstUploadedFile(r)
		if header == nil {
			http.Error(w, `{"detail":"missing file"}`, http.StatusBadRequest)
			return
		}
		url, err := s.saveUploadedFile(dir, user, header)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

// MarkCandidatesHandler nominates embedded media URLs for deferred
// deletion under the owner in the path. Owner 0 stages URLs for
// content that has not been saved yet.
func (s *Server) MarkCandidatesHandler(kind media.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, srcs, ok := s.decodeCandidateRequest(w, r, kind)
		if !ok {
			return
		}
		added, err := s.media.Mark(r.Context(), key, srcs)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"marked": srcs, "added": added})
	}
}

// UnmarkCandidatesHandler withdraws previously marked URLs, typically
// when the user re-inserts media they had removed from the editor.
func (s *Server) UnmarkCandidatesHandler(kind media.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, srcs, ok := s.decodeCandidateRequest(w, r, kind)
		if !ok {
			return
		}
		removed, err := s.media.Unmark(r.Context(), key, srcs)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"unmarked": srcs, "removed": removed})
	}
}

func (s *Server) decodeCandidateRequest(w http.ResponseWriter, r *http.Request, kind media.Kind) (media.CandidateKey, []string, bool) {
	markID, err := strconv.ParseInt(r.PathValue("mark_id"), 10, 64)
	if err != nil {
		http.Error(w, `{"detail":"invalid mark id"}`, http.StatusBadRequest)
		return media.CandidateKey{}, nil, false
	}
	var srcs []string
	if err := json.NewDecoder(r.Body).Decode(&srcs); err != nil {
		http.Error(w, `{"detail":"invalid request body"}`, http.StatusBadRequest)
		return media.CandidateKey{}, nil, false
	}
	return media.CandidateKey{Kind: kind, Owner: markID}, srcs, true
}

// firstUploadedFile accepts whatever field name the editor used for
// the upload.
func firstUploadedFile(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	for _, headers := range r.MultipartForm.File {
		if len(headers) > 0 {
			return headers[0]
		}
	}
	return nil
}
