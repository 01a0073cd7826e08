package form

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type QuestionType string

const (
	QuestionTypeMCQ        QuestionType = "mcq"
	QuestionTypeShort      QuestionType = "short"
	QuestionTypeLong       QuestionType = "long"
	QuestionTypeRating     QuestionType = "rating"
	QuestionTypeCheckbox   QuestionType = "checkbox"
	QuestionTypeDropdown   QuestionType = "dropdown"
	QuestionTypeFile       QuestionType = "file"
	QuestionTypeDate       QuestionType = "date"
	QuestionTypeTime       QuestionType = "time"
	QuestionTypeCategorize QuestionType = "categorize"
)

// ValidQuestionTypes enumerates every type the builder accepts.
var ValidQuestionTypes = map[QuestionType]bool{
	QuestionTypeMCQ:        true,
	QuestionTypeShort:      true,
	QuestionTypeLong:       true,
	QuestionTypeRating:     true,
	QuestionTypeCheckbox:   true,
	QuestionTypeDropdown:   true,
	QuestionTypeFile:       true,
	QuestionTypeDate:       true,
	QuestionTypeTime:       true,
	QuestionTypeCategorize: true,
}

// Question is embedded as JSONB inside the owning form. Extra is a grab bag
// for type-specific settings the builder round-trips untouched.
type Question struct {
	ID          string          `json:"id"`
	Text        string          `json:"text" validate:"required"`
	Type        QuestionType    `json:"type" validate:"required"`
	Required    bool            `json:"required,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Description string          `json:"description,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Scale       int             `json:"scale,omitempty"`
	Categories  []string        `json:"categories,omitempty"`
	Items       []string        `json:"items,omitempty"`
	Extra       json.RawMessage `json:"extra,omitempty"`
}

type Form struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Questions      []Question         `json:"questions"`
	UserID         pgtype.UUID        `json:"userId"`
	File           string             `json:"file"`
	Theme          string             `json:"theme"`
	ResponsesCount int64              `json:"responsesCount"`
	CreatedAt      pgtype.Timestamptz `json:"createdAt"`
	UpdatedAt      pgtype.Timestamptz `json:"updatedAt"`
}
