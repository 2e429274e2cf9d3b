package shared

import "context"

type tokenContextKey struct{}

// ContextWithTokenID stores the id of the access token that authenticated the request.
func ContextWithTokenID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, id)
}

// TokenIDFromContext extracts the access token id, or "" for guests.
func TokenIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tokenContextKey{}).(string)
	return id
}
