package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
)

// ResolvePrincipal authenticates the request: Authorization bearer
// header first, access cookie as fallback. A blacklisted token is
// rejected outright. An expired access token is not terminal: when a
// valid refresh cookie accompanies it, a new access token is minted
// and returned so the caller can rotate the cookie. Store outages
// surface as ErrStoreUnavailable and must never pass as authenticated.
func (s *Server) ResolvePrincipal(r *http.Request) (*users.User, string, error) {
	accessToken := bearerToken(r)
	if accessToken == "" {
		if cookie, err := r.Cookie(s.config.GetAccessCookieName()); err == nil {
			accessToken = cookie.Value
		}
	}
	if accessToken == "" {
		return nil, "", apperrors.ErrUnauthenticated
	}

	blacklisted, err := s.tokens.IsBlacklisted(r.Context(), accessToken)
	if err != nil {
		return nil, "", err
	}
	if blacklisted {
		return nil, "", apperrors.ErrTokenRevoked
	}

	claims, err := s.auth.Codec().VerifyAccess(accessToken)
	switch {
	case err == nil:
		user, err := s.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			return nil, "", err
		}
		return user, "", nil

	case apperrors.Is(err, apperrors.ErrTokenExpired):
		return s.refreshPrincipal(r)

	default:
		return nil, "", err
	}
}

// refreshPrincipal exchanges the refresh cookie for a fresh access
// token after the presented one expired.
func (s *Server) refreshPrincipal(r *http.Request) (*users.User, string, error) {
	cookie, err := r.Cookie(s.config.GetRefreshCookieName())
	if err != nil || cookie.Value == "" {
		return nil, "", apperrors.ErrTokenExpired
	}

	newAccess, err := s.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		return nil, "", err
	}

	claims, err := s.auth.Codec().VerifyAccess(newAccess)
	if err != nil {
		return nil, "", err
	}
	user, err := s.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, "", err
	}
	return user, newAccess, nil
}

// RequireAuth is middleware that rejects unauthenticated requests.
// When the gate minted a replacement access token it is rotated into
// the cookie before the handler runs.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, newAccess, err := s.ResolvePrincipal(r)
			if err != nil {
				s.writeError(w, err)
				return
			}
			if newAccess != "" {
				s.setAccessCookie(w, newAccess)
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
		}
	}
}

// anonymousErrors is the 401/403 class of failures OptionalAuth
// converts to an anonymous principal. Anything outside it, store
// outages included, is a real failure and is surfaced.
var anonymousErrors = []error{
	apperrors.ErrUnauthenticated,
	apperrors.ErrInvalidCredentials,
	apperrors.ErrWrongPassword,
	apperrors.ErrInvalidToken,
	apperrors.ErrTokenExpired,
	apperrors.ErrTokenRevoked,
	apperrors.ErrRefreshExhausted,
	apperrors.ErrForbidden,
	apperrors.ErrNotAuthor,
}

func isAuthFailure(err error) bool {
	for _, sentinel := range anonymousErrors {
		if apperrors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// OptionalAuth resolves the principal when one is present but treats
// authentication failures as anonymous. Any other resolution error
// still fails the request.
func (s *Server) OptionalAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, newAccess, err := s.ResolvePrincipal(r)
			if err != nil {
				if isAuthFailure(err) {
					next(w, r)
					return
				}
				s.writeError(w, err)
				return
			}
			if newAccess != "" {
				s.setAccessCookie(w, newAccess)
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
		}
	}
}

// AllowUsernames gates a route to a fixed set of usernames. Missing
// principal is 401, a principal outside the set is 403.
func (s *Server) AllowUsernames(usernames ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		allowed[name] = struct{}{}
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				s.writeError(w, apperrors.ErrUnauthenticated)
				return
			}
			if _, ok := allowed[user.Username]; !ok {
				s.writeError(w, apperrors.ErrForbidden)
				return
			}
			next(w, r)
		}
	}
}

// UserFromContext returns the authenticated user, nil when anonymous.
func UserFromContext(ctx context.Context) *users.User {
	user, _ := ctx.Value(ContextKeyUser).(*users.User)
	return user
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func (s *Server) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetAccessCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.auth.AccessTTL() / time.Second),
	})
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetRefreshCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  s.auth.RefreshExpiry(),
	})
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{s.config.GetAccessCookieName(), s.config.GetRefreshCookieName()} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
	}
}
