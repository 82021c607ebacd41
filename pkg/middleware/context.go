package middleware

import (
	"context"
	"reservations/pkg/model"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	PrincipalKey contextKey = "principal"
)

// RequestIDFrom returns the id assigned by RequestLogging, or "".
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// PrincipalFrom returns the caller set by Authenticate. The zero Principal
// means the request was not authenticated.
func PrincipalFrom(ctx context.Context) model.Principal {
	if p, ok := ctx.Value(PrincipalKey).(model.Principal); ok {
		return p
	}
	return model.Principal{}
}

func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
