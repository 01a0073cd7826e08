package user

import (
	"context"
	"errors"

	"formbuilder/backend/internal"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// GetFromContext extracts the authenticated user from request context
func GetFromContext(ctx context.Context) (*User, bool) {
	userData, ok := ctx.Value(internal.UserContextKey).(*User)
	return userData, ok
}

func (u User) GetID() uuid.UUID {
	return u.ID
}

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, arg UpdateParams) (User, error)
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
		tracer:  otel.Tracer("user/service"),
	}
}

func (s *Service) Signup(ctx context.Context, username, email, password string) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "Signup")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	passwordHash, err := HashPassword(password)
	if err != nil {
		span.RecordError(err)
		return User{}, err
	}

	newUser, err := s.queries.Create(traceCtx, CreateParams{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create user")
		if errors.Is(err, databaseutil.ErrUniqueViolation) {
			return User{}, internal.ErrAccountExists
		}
		span.RecordError(err)
		return User{}, err
	}

	logger.Info("Created new user", zap.String("user_id", newUser.ID.String()), zap.String("username", newUser.Username))
	return newUser, nil
}

// Login verifies the credential pair. Unknown emails and wrong passwords
// produce the same error so the response never reveals which one failed.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "Login")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	existing, err := s.queries.GetByEmail(traceCtx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, internal.ErrInvalidCredentials
		}
		err = databaseutil.WrapDBError(err, logger, "get user by email")
		span.RecordError(err)
		return User{}, err
	}

	if !CheckPassword(existing.PasswordHash, password) {
		return User{}, internal.ErrInvalidCredentials
	}

	return existing, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	existing, err := s.queries.GetByID(traceCtx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, internal.ErrUserNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get user by id")
		span.RecordError(err)
		return User{}, err
	}
	return existing, nil
}

// UpdateProfile applies partial updates, keeping the current value for any
// field left empty.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, username, profileImage string) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "UpdateProfile")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	updated, err := s.queries.Update(traceCtx, UpdateParams{
		ID:           id,
		Username:     username,
		ProfileImage: pgtype.Text{String: profileImage, Valid: profileImage != ""},
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "update user")
		if errors.Is(err, databaseutil.ErrUniqueViolation) {
			return User{}, internal.ErrAccountExists
		}
		span.RecordError(err)
		return User{}, err
	}

	logger.Debug("Updated user profile", zap.String("user_id", id.String()))
	return updated, nil
}
