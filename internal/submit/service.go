package submit

import (
	"context"
	"encoding/json"

	"formbuilder/backend/internal"
	"formbuilder/backend/internal/form"
	"formbuilder/backend/internal/response"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sentinel snapshot used when a submitted questionId no longer exists on
// the form. The answer is kept verbatim either way.
const (
	UnknownQuestionText = "Question not found"
	UnknownQuestionType = "unknown"
)

// AnswerPayload is one submitted answer before reconciliation.
type AnswerPayload struct {
	QuestionID string          `json:"questionId" validate:"required"`
	Answer     json.RawMessage `json:"answer"`
}

type formStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (form.Form, error)
	IncrementResponsesCount(ctx context.Context, id uuid.UUID) error
}

type responseStore interface {
	Create(ctx context.Context, formID uuid.UUID, answers []response.Answer, info response.SubmitterInfo) (response.Response, error)
}

type Service struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	forms     formStore
	responses responseStore
}

func NewService(logger *zap.Logger, forms formStore, responses responseStore) *Service {
	return &Service{
		logger:    logger,
		tracer:    otel.Tracer("submit/service"),
		forms:     forms,
		responses: responses,
	}
}

// Reconcile matches each submitted answer against the form's current
// question list and snapshots the question text and type. Answers whose
// questionId has no match get the sentinel snapshot instead of being
// rejected, so a form edit never invalidates an in-flight submission.
func Reconcile(questions []form.Question, payloads []AnswerPayload) []response.Answer {
	answers := make([]response.Answer, 0, len(payloads))
	for _, payload := range payloads {
		answer := response.Answer{
			QuestionID:   payload.QuestionID,
			QuestionText: UnknownQuestionText,
			QuestionType: UnknownQuestionType,
			Answer:       payload.Answer,
		}
		for _, q := range questions {
			if q.ID == payload.QuestionID {
				answer.QuestionText = q.Text
				answer.QuestionType = string(q.Type)
				break
			}
		}
		answers = append(answers, answer)
	}
	return answers
}

// Submit validates the submission, reconciles it against the form and
// persists the result. The responses counter is bumped best-effort after
// the response is stored, a failed increment never fails the submission.
func (s *Service) Submit(ctx context.Context, formID uuid.UUID, payloads []AnswerPayload, info response.SubmitterInfo) (response.Response, error) {
	traceCtx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	if len(payloads) == 0 {
		return response.Response{}, internal.ErrEmptySubmission
	}

	targetForm, err := s.forms.GetByID(traceCtx, formID)
	if err != nil {
		return response.Response{}, err
	}

	answers := Reconcile(targetForm.Questions, payloads)

	newResponse, err := s.responses.Create(traceCtx, formID, answers, info)
	if err != nil {
		span.RecordError(err)
		return response.Response{}, err
	}

	if err := s.forms.IncrementResponsesCount(traceCtx, formID); err != nil {
		logger.Warn("Failed to increment responses count", zap.String("form_id", formID.String()), zap.Error(err))
	}

	return newResponse, nil
}
