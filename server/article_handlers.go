package server

import (
	"net/http"
	"strconv"

	apperrors "github.com/devlog/devlog-server/internal/errors"
)

// CreateArticleHandler accepts a multipart form with title, content
// and an optional thumbnail under the field name imagefile.
func (s *Server) CreateArticleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		title, content, imgPath, ok := s.decodeArticleForm(w, r)
		if !ok {
			return
		}
		article, err := s.articles.Create(r.Context(), user, title, content, imgPath)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, article)
	}
}

func (s *Server) UpdateArticleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		id, err := articleID(r)
		if err != nil {
			http.Error(w, `{"detail":"invalid article id"}`, http.StatusBadRequest)
			return
		}
		title, content, imgPath, ok := s.decodeArticleForm(w, r)
		if !ok {
			return
		}
		article, err := s.articles.Update(r.Context(), user, id, title, content, imgPath)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, article)
	}
}

func (s *Server) DeleteArticleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		id, err := articleID(r)
		if err != nil {
			http.Error(w, `{"detail":"invalid article id"}`, http.StatusBadRequest)
			return
		}
		if err := s.articles.Delete(r.Context(), user, id); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) GetArticleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := articleID(r)
		if err != nil {
			http.Error(w, `{"detail":"invalid article id"}`, http.StatusBadRequest)
			return
		}
		article, err := s.articles.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, article)
	}
}

func (s *Server) ListArticlesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.articles.List(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, list)
	}
}

// decodeArticleForm parses the article form, uploading the thumbnail
// when one is attached. The bool reports whether the request was valid;
// the error response has been written when it is false.
func (s *Server) decodeArticleForm(w http.ResponseWriter, r *http.Request) (title, content, imgPath string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, `{"detail":"invalid multipart body"}`, http.StatusBadRequest)
		return "", "", "", false
	}
	title = r.PostFormValue("title")
	content = r.PostFormValue("content")
	if title == "" || content == "" {
		http.Error(w, `{"detail":"title and content are required"}`, http.StatusUnprocessableEntity)
		return "", "", "", false
	}

	if files := r.MultipartForm.File["imagefile"]; len(files) > 0 {
		user := UserFromContext(r.Context())
		if user == nil {
			s.writeError(w, apperrors.ErrUnauthenticated)
			return "", "", "", false
		}
		url, err := s.saveUploadedFile(s.config.GetThumbnailDir(), user, files[0])
		if err != nil {
			s.writeError(w, err)
			return "", "", "", false
		}
		imgPath = url
	}
	return title, content, imgPath, true
}

func articleID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("article_id"), 10, 64)
}
