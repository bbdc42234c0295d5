// Package middleware provides HTTP middleware: request logging, and
// optional bearer-token authentication.
package middleware

import (
	"context"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// UserNameKey is the context key for the authenticated user name
	UserNameKey contextKey = "user_name"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetUserNameFromContext retrieves the authenticated user name from context
func GetUserNameFromContext(ctx context.Context) string {
	if val := ctx.Value(UserNameKey); val != nil {
		if userName, ok := val.(string); ok {
			return userName
		}
	}
	return ""
}

// WithUserName adds the authenticated user name to the context
func WithUserName(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, UserNameKey, userName)
}
