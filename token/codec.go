package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/devlog/devlog-server/internal/errors"
)

// Codec mints and verifies the signed token assertions. Storage-side
// bookkeeping (blacklist, refresh registry) lives in Service.
type Codec struct {
	signer     Signer
	defaultTTL time.Duration // fallback blacklist TTL when a token cannot be decoded
	nowFunc    func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(signer Signer, defaultTTL time.Duration, options ...CodecOption) *Codec {
	c := &Codec{
		signer:     signer,
		defaultTTL: defaultTTL,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// CreateAccessToken mints a short-lived access token for the principal.
func (c *Codec) CreateAccessToken(username, email string, userID int64, ttl time.Duration) (string, error) {
	now := c.nowFunc()
	claims := AccessClaims{
		Username: username,
		Email:    email,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	return c.signer.Sign(claims)
}

// CreateRefreshToken mints a refresh token expiring at the given
// absolute time.
func (c *Codec) CreateRefreshToken(userID int64, expiresAt time.Time) (string, error) {
	claims := RefreshClaims{
		UserID: userID,
		Type:   TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(c.nowFunc()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}
	return c.signer.Sign(claims)
}

// VerifyAccess parses and validates an access token. Expiry is reported
// as ErrTokenExpired so callers can attempt a refresh; every other
// failure is terminal ErrInvalidToken.
func (c *Codec) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.signer.GetVerificationKey, jwt.WithTimeFunc(c.nowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrapf(apperrors.ErrTokenExpired, "token.VerifyAccess")
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token.VerifyAccess: %v", err)
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token, enforcing the
// refresh type claim.
func (c *Codec) VerifyRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.signer.GetVerificationKey, jwt.WithTimeFunc(c.nowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrapf(apperrors.ErrTokenExpired, "token.VerifyRefresh")
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token.VerifyRefresh: %v", err)
	}
	if claims.Type != TypeRefresh {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token.VerifyRefresh: not a refresh token")
	}
	return claims, nil
}

// RemainingLifetime reports how long a token has left to live, floored
// at one second so the staging store never sees a zero or negative TTL.
// Tokens that fail to decode fall back to the default access lifetime.
func (c *Codec) RemainingLifetime(raw string) time.Duration {
	claims := &jwt.RegisteredClaims{}
	// Validation is skipped so an already-expired token still reports
	// its own expiry (and gets the floor) instead of the fallback.
	_, err := jwt.ParseWithClaims(raw, claims, c.signer.GetVerificationKey, jwt.WithoutClaimsValidation())
	if err != nil || claims.ExpiresAt == nil {
		return c.defaultTTL
	}
	remaining := claims.ExpiresAt.Sub(c.nowFunc())
	if remaining < time.Second {
		return time.Second
	}
	return remaining
}
