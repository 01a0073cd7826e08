package form

import (
	"context"

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

const formColumns = `id, title, description, questions, user_id, file, theme, responses_count, created_at, updated_at`

func scanForm(row pgx.Row) (Form, error) {
	var i Form
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Questions,
		&i.UserID,
		&i.File,
		&i.Theme,
		&i.ResponsesCount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const create = `
INSERT INTO forms (title, description, questions, user_id, file, theme)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + formColumns

type CreateParams struct {
	Title       string
	Description string
	Questions   []Question
	UserID      uuid.UUID
	File        string
	Theme       string
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Form, error) {
	row := q.db.QueryRow(ctx, create,
		arg.Title, arg.Description, arg.Questions, arg.UserID, arg.File, arg.Theme)
	return scanForm(row)
}

const getByID = `
SELECT ` + formColumns + `
FROM forms
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Form, error) {
	return scanForm(q.db.QueryRow(ctx, getByID, id))
}

const update = `
UPDATE forms
SET title       = $2,
    description = $3,
    questions   = $4,
    file        = $5,
    theme       = $6,
    updated_at  = now()
WHERE id = $1
RETURNING ` + formColumns

type UpdateParams struct {
	ID          uuid.UUID
	Title       string
	Description string
	Questions   []Question
	File        string
	Theme       string
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Form, error) {
	row := q.db.QueryRow(ctx, update,
		arg.ID, arg.Title, arg.Description, arg.Questions, arg.File, arg.Theme)
	return scanForm(row)
}

const deleteForm = `
DELETE FROM forms
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteForm, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const list = `
SELECT ` + formColumns + `
FROM forms
ORDER BY created_at DESC
`

func (q *Queries) List(ctx context.Context) ([]Form, error) {
	rows, err := q.db.Query(ctx, list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Form
	for rows.Next() {
		i, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listByUser = `
SELECT ` + formColumns + `
FROM forms
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListByUser(ctx context.Context, userID uuid.UUID) ([]Form, error) {
	rows, err := q.db.Query(ctx, listByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Form
	for rows.Next() {
		i, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const incrementResponsesCount = `
UPDATE forms
SET responses_count = responses_count + 1
WHERE id = $1
`

func (q *Queries) IncrementResponsesCount(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, incrementResponsesCount, id)
	return err
}

const countByUser = `
SELECT count(*)
FROM forms
WHERE user_id = $1
`

func (q *Queries) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countByUser, userID).Scan(&count)
	return count, err
}
