package config

import "time"

type AuthConfig interface {
	GetTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAccessCookieName() string
	GetRefreshCookieName() string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetTokenSecret() string {
	return GetEnv("SECRET_KEY", "dev-only-secret")
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return 30 * time.Minute
}

func (Auth) GetRefreshTokenExpiry() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}

// Cookie names double as the field names of the login token response,
// so they are configurable to keep the frontend contract in one place.
func (Auth) GetAccessCookieName() string {
	return GetEnv("ACCESS_TOKEN", "access_token")
}

func (Auth) GetRefreshCookieName() string {
	return GetEnv("REFRESH_TOKEN", "refresh_token")
}
