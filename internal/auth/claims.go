package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// The dialer is a single-tenant operator tool: there is one shared dashboard
// credential, and Operator identifies who logged in with it.
type Claims struct {
	jwt.RegisteredClaims

	Operator  string    `json:"operator"`
	TokenType TokenType `json:"token_type"`
}
