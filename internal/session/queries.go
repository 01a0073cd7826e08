package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

const create = `
INSERT INTO sessions (user_id, expires_at)
VALUES ($1, $2)
RETURNING id, user_id, expires_at, created_at
`

type CreateParams struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Session, error) {
	row := q.db.QueryRow(ctx, create, arg.UserID, arg.ExpiresAt)
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

const get = `
SELECT id, user_id, expires_at, created_at
FROM sessions
WHERE id = $1
`

func (q *Queries) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	row := q.db.QueryRow(ctx, get, id)
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

const touch = `
UPDATE sessions
SET expires_at = $2
WHERE id = $1
`

type TouchParams struct {
	ID        uuid.UUID
	ExpiresAt time.Time
}

func (q *Queries) Touch(ctx context.Context, arg TouchParams) error {
	_, err := q.db.Exec(ctx, touch, arg.ID, arg.ExpiresAt)
	return err
}

const deleteSession = `
DELETE FROM sessions
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteSession, id)
	return err
}

const deleteExpired = `
DELETE FROM sessions
WHERE expires_at < now()
`

func (q *Queries) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteExpired)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
