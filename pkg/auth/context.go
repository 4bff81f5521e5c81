package auth

import (
	"context"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyUserID is the context key for the authenticated user id
	ContextKeyUserID contextKey = "user_id"
	// ContextKeyPartyID is the context key for the user's Canton party
	ContextKeyPartyID contextKey = "party_id"
)

// WithUserID adds the user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserIDFromContext retrieves the user ID from the context
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok
}

// WithPartyID adds the Canton party to the context
func WithPartyID(ctx context.Context, partyID string) context.Context {
	return context.WithValue(ctx, ContextKeyPartyID, partyID)
}

// PartyIDFromContext retrieves the Canton party from the context
func PartyIDFromContext(ctx context.Context) (string, bool) {
	party, ok := ctx.Value(ContextKeyPartyID).(string)
	return party, ok
}
