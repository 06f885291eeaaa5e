package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/token"
	"github.com/devlog/devlog-server/users"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Service implements the login/refresh/logout protocol over the
// principal store and the token service.
type Service struct {
	users  users.Repo
	tokens *token.Service
	codec  *token.Codec

	accessTTL time.Duration
	// refreshExpiry is an absolute timestamp captured when the service
	// is constructed: every refresh token issued by this process
	// expires at the same wall-clock instant.
	refreshExpiry time.Time

	nowFunc func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = nowFunc
	}
}

// WithRefreshExpiry overrides the absolute refresh-token expiry.
func WithRefreshExpiry(expiry time.Time) ServiceOption {
	return func(s *Service) {
		s.refreshExpiry = expiry
	}
}

// NewService initializes the auth service with required dependencies.
func NewService(
	userRepo users.Repo,
	tokenService *token.Service,
	codec *token.Codec,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	options ...ServiceOption,
) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[auth.NewService] user repo is required")
	}
	if tokenService == nil {
		return nil, errors.New("[auth.NewService] token service is required")
	}
	if codec == nil {
		return nil, errors.New("[auth.NewService] token codec is required")
	}

	s := &Service{
		users:     userRepo,
		tokens:    tokenService,
		codec:     codec,
		accessTTL: accessTTL,
		nowFunc:   time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.refreshExpiry.IsZero() {
		s.refreshExpiry = s.nowFunc().Add(refreshTTL)
	}

	return s, nil
}

// Authenticate looks up the principal by email and verifies the
// password hash. An unknown email returns (nil, nil); a known email
// with a bad password returns ErrWrongPassword, so callers can choose
// how much to reveal.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrapf(err, "auth.Authenticate GetByEmail")
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.Wrapf(apperrors.ErrWrongPassword, "auth.Authenticate")
	}
	return user, nil
}

// IssueTokens mints an access/refresh pair for the principal and
// registers the refresh token in the staging store.
func (s *Service) IssueTokens(ctx context.Context, user *users.User) (*TokenPair, error) {
	access, err := s.codec.CreateAccessToken(user.Username, user.Email, user.ID, s.accessTTL)
	if err != nil {
		return nil, errors.Wrap(err, "auth.IssueTokens CreateAccessToken")
	}

	refresh, err := s.codec.CreateRefreshToken(user.ID, s.refreshExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "auth.IssueTokens CreateRefreshToken")
	}

	if err := s.tokens.StoreRefresh(ctx, user.ID, refresh); err != nil {
		return nil, errors.Wrap(err, "auth.IssueTokens StoreRefresh")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated. The token is re-registered
// before the membership check so an eventually-consistent staging
// backend sees the registration it is about to be asked about.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrRefreshExhausted, "auth.Refresh verify: %v", err)
	}

	if err := s.tokens.StoreRefresh(ctx, claims.UserID, refreshToken); err != nil {
		return "", errors.Wrap(err, "auth.Refresh StoreRefresh")
	}

	valid, err := s.tokens.ValidateRefresh(ctx, claims.UserID, refreshToken)
	if err != nil {
		return "", errors.Wrap(err, "auth.Refresh ValidateRefresh")
	}
	if !valid {
		return "", apperrors.Wrapf(apperrors.ErrRefreshExhausted, "auth.Refresh: token not registered")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.Wrapf(apperrors.ErrRefreshExhausted, "auth.Refresh: principal gone")
		}
		return "", apperrors.Wrapf(err, "auth.Refresh GetByID")
	}

	access, err := s.codec.CreateAccessToken(user.Username, user.Email, user.ID, s.accessTTL)
	if err != nil {
		return "", errors.Wrap(err, "auth.Refresh CreateAccessToken")
	}
	return access, nil
}

// Logout blacklists the access token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	ttl := s.codec.RemainingLifetime(accessToken)
	return s.tokens.Blacklist(ctx, accessToken, ttl)
}

// LogoutAll blacklists the current access token and revokes every
// refresh token the user holds across devices.
func (s *Service) LogoutAll(ctx context.Context, accessToken string) error {
	if err := s.Logout(ctx, accessToken); err != nil {
		return errors.Wrap(err, "auth.LogoutAll Logout")
	}

	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return apperrors.Wrapf(err, "auth.LogoutAll verify")
	}
	return s.tokens.RevokeRefresh(ctx, claims.UserID, "")
}

// Codec exposes the token codec for collaborators that need to inspect
// tokens (the authentication gate).
func (s *Service) Codec() *token.Codec {
	return s.codec
}

// Tokens exposes the token service bookkeeping.
func (s *Service) Tokens() *token.Service {
	return s.tokens
}

// AccessTTL is the lifetime of minted access tokens.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshExpiry is the absolute expiry applied to minted refresh
// tokens and their cookies.
func (s *Service) RefreshExpiry() time.Time {
	return s.refreshExpiry
}
