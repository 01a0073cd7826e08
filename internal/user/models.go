package user

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID          `json:"id"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"-"`
	ProfileImage pgtype.Text        `json:"profileImage"`
	CreatedAt    pgtype.Timestamptz `json:"createdAt"`
}
