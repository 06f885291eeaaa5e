package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/users"
)

// initialiseSystem makes sure every configured admin account exists.
// Freshly created accounts get a generated password that is logged
// once so the operator can log in and change it.
func (s *Server) initialiseSystem(ctx context.Context) error {
	for _, username := range s.config.GetAdminUsernames() {
		password, err := s.createAdminUser(ctx, username)
		if err != nil {
			return errors.Wrapf(err, "[server initialiseSystem] failed to bootstrap admin %q", username)
		}
		if password != "" {
			s.log.Info().
				Str("username", username).
				Str("password", password).
				Msg("created admin account, change the password on first login")
		}
	}
	return nil
}

// createAdminUser creates the admin account if it does not exist yet
// and returns the generated password (empty when it already existed).
func (s *Server) createAdminUser(ctx context.Context, username string) (string, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "", err
	}
	if existing != nil {
		return "", nil
	}

	passwordBytes := make([]byte, 16)
	if _, err := rand.Read(passwordBytes); err != nil {
		return "", errors.Wrap(err, "generate password")
	}
	password := base64.URLEncoding.EncodeToString(passwordBytes)

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}

	if err := s.users.Upsert(ctx, &users.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@devlog.local", username),
		PasswordHash: passwordHash,
		DateJoined:   time.Now(),
	}); err != nil {
		return "", err
	}
	return password, nil
}
