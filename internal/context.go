package internal

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// UserContextKey carries the authenticated principal through the request context.
const UserContextKey contextKey = "user"

// SessionIDContextKey carries the opaque session token, when one is present.
const SessionIDContextKey contextKey = "session_id"

type Identity interface {
	GetID() uuid.UUID
}

// GetUserIDFromContext extracts the authenticated user id from request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userData := ctx.Value(UserContextKey)
	if userData == nil {
		return uuid.Nil, false
	}

	identity, ok := userData.(Identity)
	if !ok {
		return uuid.Nil, false
	}

	return identity.GetID(), true
}

// GetSessionIDFromContext extracts the opaque session id, if the request carried one.
func GetSessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	sessionID, ok := ctx.Value(SessionIDContextKey).(uuid.UUID)
	return sessionID, ok
}
