package auth

import "quill/internal/domain/models"

// JWTVerifier validates bearer tokens for the HTTP surface. The auth
// middleware depends on this interface so tests can substitute a stub
// without a JWKS endpoint.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims, or an
	// error when the token is invalid, expired, or wrongly signed.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases verifier resources on shutdown.
	Close() error
}
