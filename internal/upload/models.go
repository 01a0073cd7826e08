package upload

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Storage folders, one per kind.
const (
	ImageFolder    = "formbuilder/profiles"
	DocumentFolder = "formbuilder/documents"
)

// File is the audit record kept for every stored object.
type File struct {
	ID               uuid.UUID          `json:"id"`
	PublicID         string             `json:"publicId"`
	URL              string             `json:"url"`
	OriginalFilename string             `json:"originalFilename"`
	ContentType      string             `json:"contentType"`
	Size             int64              `json:"size"`
	Kind             Kind               `json:"kind"`
	UploadedBy       pgtype.UUID        `json:"uploadedBy"`
	CreatedAt        pgtype.Timestamptz `json:"createdAt"`
}
