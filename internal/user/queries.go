package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
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
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, username, email, password_hash, profile_image, created_at
`

type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (User, error) {
	row := q.db.QueryRow(ctx, create, arg.Username, arg.Email, arg.PasswordHash)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &i.ProfileImage, &i.CreatedAt)
	return i, err
}

const getByID = `
SELECT id, username, email, password_hash, profile_image, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &i.ProfileImage, &i.CreatedAt)
	return i, err
}

const getByEmail = `
SELECT id, username, email, password_hash, profile_image, created_at
FROM users
WHERE email = $1
`

func (q *Queries) GetByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &i.ProfileImage, &i.CreatedAt)
	return i, err
}

const update = `
UPDATE users
SET username      = COALESCE(NULLIF($2, ''), username),
    profile_image = COALESCE($3, profile_image)
WHERE id = $1
RETURNING id, username, email, password_hash, profile_image, created_at
`

type UpdateParams struct {
	ID           uuid.UUID
	Username     string
	ProfileImage pgtype.Text
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (User, error) {
	row := q.db.QueryRow(ctx, update, arg.ID, arg.Username, arg.ProfileImage)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &i.ProfileImage, &i.CreatedAt)
	return i, err
}
