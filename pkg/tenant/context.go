package tenant

import (
	"context"
	"errors"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenantId"
	userIDKey   contextKey = "userId"
)

var (
	// ErrMissingTenantContext is returned when a request carries no tenant scope
	ErrMissingTenantContext = errors.New("tenant context is required")
)

// Context carries the tenant scope for a request. Every repository query is
// filtered by TenantID; bookings never cross tenant boundaries.
type Context struct {
	// TenantID identifies the freight operator owning the booking data
	TenantID string `json:"tenantId"`

	// UserID identifies the acting user, kept for audit attribution
	UserID string `json:"userId,omitempty"`
}

// NewContext attaches tenant scope to a context.Context
func NewContext(ctx context.Context, tc *Context) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, tc.TenantID)
	if tc.UserID != "" {
		ctx = context.WithValue(ctx, userIDKey, tc.UserID)
	}
	return ctx
}

// FromContext extracts the tenant scope from a context.Context.
// Returns ErrMissingTenantContext when no tenant ID is present.
func FromContext(ctx context.Context) (*Context, error) {
	tc := &Context{}

	if v, ok := ctx.Value(tenantIDKey).(string); ok {
		tc.TenantID = v
	}
	if v, ok := ctx.Value(userIDKey).(string); ok {
		tc.UserID = v
	}

	if tc.TenantID == "" {
		return nil, ErrMissingTenantContext
	}
	return tc, nil
}

// IDFromContext returns the tenant ID or empty string
func IDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantIDKey).(string); ok {
		return v
	}
	return ""
}
