package utils

import (
	"context"
)

// Key type for context values
type contextKey string

// Constant for request ID context key
const requestIDKey contextKey = "requestID"

// GetRequestIDFromContext extracts the request ID from the context, or "" if none was set
func GetRequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

// SetRequestIDToContext adds the request ID to the context
func SetRequestIDToContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
