package response

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Answer carries a snapshot of the question it answered so responses stay
// readable after the form definition changes. The answer value is untyped,
// its shape depends on the question type.
type Answer struct {
	QuestionID   string          `json:"questionId"`
	QuestionText string          `json:"questionText"`
	QuestionType string          `json:"questionType"`
	Answer       json.RawMessage `json:"answer"`
}

// SubmitterInfo is best-effort metadata about an anonymous submitter. It is
// never used for access control.
type SubmitterInfo struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type Response struct {
	ID            uuid.UUID          `json:"id"`
	FormID        uuid.UUID          `json:"formId"`
	Answers       []Answer           `json:"answers"`
	SubmitterInfo SubmitterInfo      `json:"submitterInfo"`
	SubmittedAt   pgtype.Timestamptz `json:"submittedAt"`
}

// WithFormTitle joins in the owning form's title for listing views.
type WithFormTitle struct {
	Response
	FormTitle string `json:"formTitle"`
}
