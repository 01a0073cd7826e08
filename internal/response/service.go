package response

import (
	"context"
	"errors"

	"formbuilder/backend/internal"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Response, error)
	Get(ctx context.Context, id uuid.UUID) (Response, error)
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]Response, error)
	ListWithForm(ctx context.Context, formID *uuid.UUID) ([]WithFormTitle, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountByFormOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("response/service"),
	}
}

func (s *Service) Create(ctx context.Context, formID uuid.UUID, answers []Answer, info SubmitterInfo) (Response, error) {
	traceCtx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	newResponse, err := s.queries.Create(traceCtx, CreateParams{
		FormID:        formID,
		Answers:       answers,
		SubmitterInfo: info,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create response")
		span.RecordError(err)
		return Response{}, err
	}

	logger.Info("Stored response", zap.String("response_id", newResponse.ID.String()), zap.String("form_id", formID.String()))
	return newResponse, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	traceCtx, span := s.tracer.Start(ctx, "Get")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	existing, err := s.queries.Get(traceCtx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Response{}, internal.ErrResponseNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get response")
		span.RecordError(err)
		return Response{}, err
	}
	return existing, nil
}

func (s *Service) ListByFormID(ctx context.Context, formID uuid.UUID) ([]Response, error) {
	traceCtx, span := s.tracer.Start(ctx, "ListByFormID")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	responses, err := s.queries.ListByFormID(traceCtx, formID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list responses by form")
		span.RecordError(err)
		return nil, err
	}
	return responses, nil
}

func (s *Service) ListWithForm(ctx context.Context, formID *uuid.UUID) ([]WithFormTitle, error) {
	traceCtx, span := s.tracer.Start(ctx, "ListWithForm")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	responses, err := s.queries.ListWithForm(traceCtx, formID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list responses with form")
		span.RecordError(err)
		return nil, err
	}
	return responses, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	traceCtx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	deleted, err := s.queries.Delete(traceCtx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete response")
		span.RecordError(err)
		return err
	}
	if deleted == 0 {
		return internal.ErrResponseNotFound
	}

	logger.Info("Deleted response", zap.String("response_id", id.String()))
	return nil
}

func (s *Service) CountByFormOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	traceCtx, span := s.tracer.Start(ctx, "CountByFormOwner")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	count, err := s.queries.CountByFormOwner(traceCtx, userID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "count responses by form owner")
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}
