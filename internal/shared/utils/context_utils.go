package utils

import (
	"context"
	"errors"

	"volunteer-hub/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserEmailNotFound  = errors.New("userEmail not found in context")
	ErrUserEmailNotString = errors.New("userEmail in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, notFound, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}

// GetUserEmailFromContext retrieves the verified session email from the context.
// It returns an error if the email is missing or is not a string.
func GetUserEmailFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.UserEmailKey, ErrUserEmailNotFound, ErrUserEmailNotString)
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetUserNameOrDefault returns the session display name or def when absent.
func GetUserNameOrDefault(ctx context.Context, def string) string {
	if v, ok := ctx.Value(contextkeys.UserNameKey).(string); ok && v != "" {
		return v
	}
	return def
}

// Context builder functions

// WithUserEmail adds user email to context
func WithUserEmail(ctx context.Context, userEmail string) context.Context {
	return context.WithValue(ctx, contextkeys.UserEmailKey, userEmail)
}

// WithUserName adds the session display name to context
func WithUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextkeys.UserNameKey, name)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithComponent adds component name to context
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation adds operation name to context
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

func HasUserEmail(ctx context.Context) bool {
	_, err := GetUserEmailFromContext(ctx)
	return err == nil
}
