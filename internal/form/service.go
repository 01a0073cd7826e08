package form

import (
	"context"
	"errors"
	"fmt"

	"formbuilder/backend/internal"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultTheme       = "default"
	defaultRatingScale = 5
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Form, error)
	GetByID(ctx context.Context, id uuid.UUID) (Form, error)
	Update(ctx context.Context, arg UpdateParams) (Form, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context) ([]Form, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Form, error)
	IncrementResponsesCount(ctx context.Context, id uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tracer:    otel.Tracer("form/service"),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// normalizeQuestions validates the embedded question list and fills in
// per-type defaults. Question ids must be unique within a form.
func (s *Service) normalizeQuestions(questions []Question) ([]Question, error) {
	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: %s", internal.ErrDuplicateQuestionID, q.ID)
		}
		seen[q.ID] = true

		if !ValidQuestionTypes[q.Type] {
			return nil, fmt.Errorf("%w: %s", internal.ErrInvalidQuestionType, q.Type)
		}
		if q.Type == QuestionTypeRating && q.Scale <= 0 {
			q.Scale = defaultRatingScale
		}
		q.Text = s.sanitizer.Sanitize(q.Text)
		q.Description = s.sanitizer.Sanitize(q.Description)
		q.Placeholder = s.sanitizer.Sanitize(q.Placeholder)
		s.sanitizeAll(q.Options)
		s.sanitizeAll(q.Categories)
		s.sanitizeAll(q.Items)
	}
	return questions, nil
}

func (s *Service) sanitizeAll(values []string) {
	for i := range values {
		values[i] = s.sanitizer.Sanitize(values[i])
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, description string, questions []Question, file, theme string) (Form, error) {
	traceCtx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	questions, err := s.normalizeQuestions(questions)
	if err != nil {
		return Form{}, err
	}
	if questions == nil {
		questions = []Question{}
	}
	if theme == "" {
		theme = defaultTheme
	}

	newForm, err := s.queries.Create(traceCtx, CreateParams{
		Title:       s.sanitizer.Sanitize(title),
		Description: s.sanitizer.Sanitize(description),
		Questions:   questions,
		UserID:      userID,
		File:        file,
		Theme:       theme,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create form")
		span.RecordError(err)
		return Form{}, err
	}

	logger.Info("Created form", zap.String("form_id", newForm.ID.String()), zap.String("user_id", userID.String()))
	return newForm, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Form, error) {
	traceCtx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	existing, err := s.queries.GetByID(traceCtx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Form{}, internal.ErrFormNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get form by id")
		span.RecordError(err)
		return Form{}, err
	}
	return existing, nil
}

// Update replaces the form definition. Only the owner may update.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, title, description string, questions []Question, file, theme string) (Form, error) {
	traceCtx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	existing, err := s.GetByID(traceCtx, id)
	if err != nil {
		return Form{}, err
	}
	if err := s.requireOwner(existing, userID); err != nil {
		return Form{}, err
	}

	questions, err = s.normalizeQuestions(questions)
	if err != nil {
		return Form{}, err
	}
	if questions == nil {
		questions = []Question{}
	}
	if theme == "" {
		theme = existing.Theme
	}

	updated, err := s.queries.Update(traceCtx, UpdateParams{
		ID:          id,
		Title:       s.sanitizer.Sanitize(title),
		Description: s.sanitizer.Sanitize(description),
		Questions:   questions,
		File:        file,
		Theme:       theme,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "update form")
		span.RecordError(err)
		return Form{}, err
	}

	logger.Debug("Updated form", zap.String("form_id", id.String()))
	return updated, nil
}

// Delete removes the form. Its responses go with it through the foreign key
// cascade.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	traceCtx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	existing, err := s.GetByID(traceCtx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(existing, userID); err != nil {
		return err
	}

	deleted, err := s.queries.Delete(traceCtx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete form")
		span.RecordError(err)
		return err
	}
	if deleted == 0 {
		return internal.ErrFormNotFound
	}

	logger.Info("Deleted form", zap.String("form_id", id.String()))
	return nil
}

func (s *Service) List(ctx context.Context) ([]Form, error) {
	traceCtx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	forms, err := s.queries.List(traceCtx)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list forms")
		span.RecordError(err)
		return nil, err
	}
	return forms, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Form, error) {
	traceCtx, span := s.tracer.Start(ctx, "ListByUser")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	forms, err := s.queries.ListByUser(traceCtx, userID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list forms by user")
		span.RecordError(err)
		return nil, err
	}
	return forms, nil
}

// IncrementResponsesCount bumps the denormalized counter after a submission.
func (s *Service) IncrementResponsesCount(ctx context.Context, id uuid.UUID) error {
	traceCtx, span := s.tracer.Start(ctx, "IncrementResponsesCount")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	if err := s.queries.IncrementResponsesCount(traceCtx, id); err != nil {
		err = databaseutil.WrapDBError(err, logger, "increment responses count")
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *Service) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	traceCtx, span := s.tracer.Start(ctx, "CountByUser")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	count, err := s.queries.CountByUser(traceCtx, userID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "count forms by user")
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}

// RequireOwner verifies that userID owns the form with the given id.
func (s *Service) RequireOwner(ctx context.Context, id, userID uuid.UUID) (Form, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if err := s.requireOwner(existing, userID); err != nil {
		return Form{}, err
	}
	return existing, nil
}

func (s *Service) requireOwner(f Form, userID uuid.UUID) error {
	if !f.UserID.Valid || uuid.UUID(f.UserID.Bytes) != userID {
		return internal.ErrNotFormOwner
	}
	return nil
}
