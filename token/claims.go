package token

import "github.com/golang-jwt/jwt/v5"

// TypeRefresh marks a refresh token's type claim. Access tokens carry
// no type claim.
const TypeRefresh = "refresh"

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Only the user ID is
// carried; the rest of the principal is resolved at exchange time.
type RefreshClaims struct {
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}
