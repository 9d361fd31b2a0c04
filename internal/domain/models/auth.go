package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims is the subset of Supabase Auth JWT claims this backend
// relies on. The subject is the user id that authors version saves and
// suggestion batches; Role distinguishes authenticated users from anonymous
// tokens, which are rejected.
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"`
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the subject claim, the authenticated user's id.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}
