// Package auth provides authentication context utilities.
package auth

import (
	"context"

	"github.com/quickai/quickai/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// claimsContextKey is the context key for storing resolved Claims.
const claimsContextKey contextKey = "claims"

// ContextWithClaims adds Claims to the context.
func ContextWithClaims(ctx context.Context, claims *model.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves Claims from the context.
// Returns nil if not present.
func ClaimsFromContext(ctx context.Context) *model.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*model.Claims)
	if !ok {
		return nil
	}
	return claims
}

// UserIDFromContext is a convenience function to get the user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
