package session

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Session is an opaque server-side session. Its id doubles as the cookie
// token handed to the browser.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt pgtype.Timestamptz
	CreatedAt pgtype.Timestamptz
}
