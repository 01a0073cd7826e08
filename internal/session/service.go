package session

import (
	"context"
	"errors"
	"time"

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
	Create(ctx context.Context, arg CreateParams) (Session, error)
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Touch(ctx context.Context, arg TouchParams) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type Service struct {
	logger     *zap.Logger
	queries    Querier
	tracer     trace.Tracer
	expiration time.Duration
}

func NewService(logger *zap.Logger, db DBTX, expiration time.Duration) *Service {
	return &Service{
		logger:     logger,
		queries:    New(db),
		tracer:     otel.Tracer("session/service"),
		expiration: expiration,
	}
}

// Create starts a new session for the given user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (Session, error) {
	traceCtx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	newSession, err := s.queries.Create(traceCtx, CreateParams{
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.expiration),
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create session")
		span.RecordError(err)
		return Session{}, err
	}

	logger.Debug("Created session", zap.String("session_id", newSession.ID.String()), zap.String("user_id", userID.String()))
	return newSession, nil
}

// Get resolves an opaque session token. Expired sessions are deleted on
// sight and reported as expired.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	traceCtx, span := s.tracer.Start(ctx, "Get")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	currentSession, err := s.queries.Get(traceCtx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, internal.ErrSessionNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get session")
		span.RecordError(err)
		return Session{}, err
	}

	if currentSession.ExpiresAt.Valid && currentSession.ExpiresAt.Time.Before(time.Now()) {
		if err := s.queries.Delete(traceCtx, id); err != nil {
			logger.Warn("Failed to delete expired session", zap.String("session_id", id.String()), zap.Error(err))
		}
		return Session{}, internal.ErrSessionExpired
	}

	return currentSession, nil
}

// Touch extends the session lifetime, implementing the sliding expiry.
// Failures are logged but never fail the request.
func (s *Service) Touch(ctx context.Context, id uuid.UUID) {
	traceCtx, span := s.tracer.Start(ctx, "Touch")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	err := s.queries.Touch(traceCtx, TouchParams{
		ID:        id,
		ExpiresAt: time.Now().Add(s.expiration),
	})
	if err != nil {
		logger.Warn("Failed to extend session", zap.String("session_id", id.String()), zap.Error(err))
	}
}

// Destroy removes a session, logging the user out.
func (s *Service) Destroy(ctx context.Context, id uuid.UUID) error {
	traceCtx, span := s.tracer.Start(ctx, "Destroy")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	err := s.queries.Delete(traceCtx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete session")
		span.RecordError(err)
		return err
	}

	return nil
}

// StartJanitor purges expired sessions once an hour until ctx is canceled.
func (s *Service) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.queries.DeleteExpired(ctx)
				if err != nil {
					s.logger.Warn("Failed to purge expired sessions", zap.Error(err))
					continue
				}
				if deleted > 0 {
					s.logger.Info("Purged expired sessions", zap.Int64("count", deleted))
				}
			}
		}
	}()
}
