package upload

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
INSERT INTO files (public_id, url, original_filename, content_type, size, kind, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, public_id, url, original_filename, content_type, size, kind, uploaded_by, created_at
`

type CreateParams struct {
	PublicID         string
	URL              string
	OriginalFilename string
	ContentType      string
	Size             int64
	Kind             Kind
	UploadedBy       uuid.UUID
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (File, error) {
	row := q.db.QueryRow(ctx, create,
		arg.PublicID, arg.URL, arg.OriginalFilename, arg.ContentType, arg.Size, arg.Kind, arg.UploadedBy)
	var i File
	err := row.Scan(&i.ID, &i.PublicID, &i.URL, &i.OriginalFilename, &i.ContentType, &i.Size, &i.Kind, &i.UploadedBy, &i.CreatedAt)
	return i, err
}

const listByUploader = `
SELECT id, public_id, url, original_filename, content_type, size, kind, uploaded_by, created_at
FROM files
WHERE uploaded_by = $1
ORDER BY created_at DESC
`

func (q *Queries) ListByUploader(ctx context.Context, userID uuid.UUID) ([]File, error) {
	rows, err := q.db.Query(ctx, listByUploader, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []File
	for rows.Next() {
		var i File
		if err := rows.Scan(&i.ID, &i.PublicID, &i.URL, &i.OriginalFilename, &i.ContentType, &i.Size, &i.Kind, &i.UploadedBy, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
