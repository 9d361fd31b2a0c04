package httputil

import (
	"context"
	"net/http"
)

// contextKey is unexported so middleware values cannot collide with keys
// from other packages.
type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns a request whose context carries the authenticated
// user id. Set by the auth middleware, read by handlers that stamp
// authorship on versions and suggestions.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the authenticated user id, or "" when the request
// never passed the auth middleware.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
