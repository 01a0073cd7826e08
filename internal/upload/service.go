package upload

import (
	"context"
	"fmt"
	"io"

	"formbuilder/backend/internal"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (File, error)
	ListByUploader(ctx context.Context, userID uuid.UUID) ([]File, error)
}

type objectStorage interface {
	Upload(data []byte, id, folder, filename, contentType string) (string, string, error)
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tracer    trace.Tracer
	validator *Validator
	storage   objectStorage
}

func NewService(logger *zap.Logger, db DBTX, storage objectStorage) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tracer:    otel.Tracer("upload/service"),
		validator: NewValidator(),
		storage:   storage,
	}
}

// SaveFile validates the stream, pushes it to object storage and records an
// audit row attributed to the uploader.
func (s *Service) SaveFile(ctx context.Context, stream io.Reader, filename, contentType, folder string, kind Kind, uploadedBy uuid.UUID, opts ...ValidatorOption) (File, error) {
	traceCtx, span := s.tracer.Start(ctx, "SaveFile")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	data, err := s.validator.ValidateStream(stream, contentType, opts...)
	if err != nil {
		return File{}, err
	}

	publicID := uuid.New().String()
	objectPath, url, err := s.storage.Upload(data, publicID, folder, filename, contentType)
	if err != nil {
		logger.Error("Failed to upload object", zap.String("filename", filename), zap.Error(err))
		span.RecordError(err)
		return File{}, fmt.Errorf("%w: %v", internal.ErrStorageFailure, err)
	}

	saved, err := s.queries.Create(traceCtx, CreateParams{
		PublicID:         objectPath,
		URL:              url,
		OriginalFilename: filename,
		ContentType:      contentType,
		Size:             int64(len(data)),
		Kind:             kind,
		UploadedBy:       uploadedBy,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create file record")
		span.RecordError(err)
		return File{}, err
	}

	logger.Info("Saved file",
		zap.String("file_id", saved.ID.String()),
		zap.String("kind", string(kind)),
		zap.Int64("size", saved.Size))
	return saved, nil
}

func (s *Service) ListByUploader(ctx context.Context, userID uuid.UUID) ([]File, error) {
	traceCtx, span := s.tracer.Start(ctx, "ListByUploader")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	files, err := s.queries.ListByUploader(traceCtx, userID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list files by uploader")
		span.RecordError(err)
		return nil, err
	}
	return files, nil
}
