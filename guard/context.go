package guard

import (
	"context"

	"github.com/campusware/course-portal/identity"
)

type contextKey string

const claimsKey contextKey = "claims"

// WithClaims adds admitted claims to the context.
func WithClaims(ctx context.Context, claims identity.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves the claims an admitting guard attached
// to the request context.
func ClaimsFromContext(ctx context.Context) (identity.Claims, bool) {
	if val := ctx.Value(claimsKey); val != nil {
		if claims, ok := val.(identity.Claims); ok {
			return claims, true
		}
	}
	return nil, false
}
