package server

import (
	"encoding/json"
	"net/http"

	"github.com/devlog/devlog-server/auth"
	apperrors "github.com/devlog/devlog-server/internal/errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// LoginHandler authenticates with email/password, issues a token pair
// and installs both auth cookies.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"detail":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		pair, err := s.issueTokenPair(r, req.Email, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.setAccessCookie(w, pair.AccessToken)
		s.setRefreshCookie(w, pair.RefreshToken)
		s.writeJSON(w, http.StatusOK, pair)
	}
}

// TokenHandler is the form based variant of login used by API clients:
// it returns the token pair without touching cookies. The form field
// is called username but carries the email.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, `{"detail":"invalid form body"}`, http.StatusBadRequest)
			return
		}
		pair, err := s.issueTokenPair(r, r.PostFormValue("username"), r.PostFormValue("password"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, pair)
	}
}

func (s *Server) issueTokenPair(r *http.Request, email, password string) (*auth.TokenPair, error) {
	user, err := s.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.auth.IssueTokens(r.Context(), user)
}

// RefreshHandler exchanges a refresh token for a new access token. The
// refresh token itself is not rotated; the response echoes it back.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		if req.RefreshToken == "" {
			if cookie, err := r.Cookie(s.config.GetRefreshCookieName()); err == nil {
				req.RefreshToken = cookie.Value
			}
		}
		if req.RefreshToken == "" {
			s.writeError(w, apperrors.ErrUnauthenticated)
			return
		}

		newAccess, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.setAccessCookie(w, newAccess)
		s.writeJSON(w, http.StatusOK, auth.TokenPair{
			AccessToken:  newAccess,
			RefreshToken: req.RefreshToken,
			TokenType:    "bearer",
		})
	}
}

// LogoutHandler blacklists the presented access token for the rest of
// its natural lifetime and drops the auth cookies.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := s.presentedAccessToken(r)
		if accessToken == "" {
			s.writeError(w, apperrors.ErrUnauthenticated)
			return
		}
		if err := s.auth.Logout(r.Context(), accessToken); err != nil {
			s.writeError(w, err)
			return
		}
		s.clearAuthCookies(w)
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
	}
}

// LogoutAllHandler blacklists the presented access token and revokes
// every refresh token of the same user, logging out all devices.
func (s *Server) LogoutAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := s.presentedAccessToken(r)
		if accessToken == "" {
			s.writeError(w, apperrors.ErrUnauthenticated)
			return
		}
		if err := s.auth.LogoutAll(r.Context(), accessToken); err != nil {
			s.writeError(w, err)
			return
		}
		s.clearAuthCookies(w)
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "logged out everywhere"})
	}
}

func (s *Server) presentedAccessToken(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(s.config.GetAccessCookieName()); err == nil {
		return cookie.Value
	}
	return ""
}
