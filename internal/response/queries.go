package response

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

const create = `
INSERT INTO responses (form_id, answers, submitter_info)
VALUES ($1, $2, $3)
RETURNING id, form_id, answers, submitter_info, submitted_at
`

type CreateParams struct {
	FormID        uuid.UUID
	Answers       []Answer
	SubmitterInfo SubmitterInfo
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Response, error) {
	row := q.db.QueryRow(ctx, create, arg.FormID, arg.Answers, arg.SubmitterInfo)
	var i Response
	err := row.Scan(&i.ID, &i.FormID, &i.Answers, &i.SubmitterInfo, &i.SubmittedAt)
	return i, err
}

const get = `
SELECT id, form_id, answers, submitter_info, submitted_at
FROM responses
WHERE id = $1
`

func (q *Queries) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	row := q.db.QueryRow(ctx, get, id)
	var i Response
	err := row.Scan(&i.ID, &i.FormID, &i.Answers, &i.SubmitterInfo, &i.SubmittedAt)
	return i, err
}

const listByFormID = `
SELECT id, form_id, answers, submitter_info, submitted_at
FROM responses
WHERE form_id = $1
ORDER BY submitted_at DESC
`

func (q *Queries) ListByFormID(ctx context.Context, formID uuid.UUID) ([]Response, error) {
	rows, err := q.db.Query(ctx, listByFormID, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Response
	for rows.Next() {
		var i Response
		if err := rows.Scan(&i.ID, &i.FormID, &i.Answers, &i.SubmitterInfo, &i.SubmittedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listWithForm = `
SELECT r.id, r.form_id, r.answers, r.submitter_info, r.submitted_at, f.title
FROM responses r
JOIN forms f ON f.id = r.form_id
WHERE $1::uuid IS NULL OR r.form_id = $1
ORDER BY r.submitted_at DESC
`

// ListWithForm returns responses joined with their form title, optionally
// filtered to one form when formID is non-nil.
func (q *Queries) ListWithForm(ctx context.Context, formID *uuid.UUID) ([]WithFormTitle, error) {
	rows, err := q.db.Query(ctx, listWithForm, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WithFormTitle
	for rows.Next() {
		var i WithFormTitle
		if err := rows.Scan(&i.ID, &i.FormID, &i.Answers, &i.SubmitterInfo, &i.SubmittedAt, &i.FormTitle); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteResponse = `
DELETE FROM responses
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteResponse, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countByFormOwner = `
SELECT count(*)
FROM responses r
JOIN forms f ON f.id = r.form_id
WHERE f.user_id = $1
`

func (q *Queries) CountByFormOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countByFormOwner, userID).Scan(&count)
	return count, err
}
