package session

import (
	"context"
	"net/http"

	"formbuilder/backend/internal"
	"formbuilder/backend/internal/user"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CookieName is the opaque session cookie shared with the frontend.
const CookieName = "formbuilder.sid"

type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Touch(ctx context.Context, id uuid.UUID)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type Middleware struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	problemWriter *problem.HttpWriter
	sessionStore  SessionStore
	userStore     UserStore
}

func NewMiddleware(logger *zap.Logger, problemWriter *problem.HttpWriter, sessionStore SessionStore, userStore UserStore) *Middleware {
	return &Middleware{
		logger:        logger,
		tracer:        otel.Tracer("session/middleware"),
		problemWriter: problemWriter,
		sessionStore:  sessionStore,
		userStore:     userStore,
	}
}

// HandlerFunc requires a live session cookie and rejects with 401 otherwise.
func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceCtx, span := m.tracer.Start(r.Context(), "SessionMiddleware")
		defer span.End()
		logger := logutil.WithContext(traceCtx, m.logger)

		ctx, err := m.resolve(traceCtx, r)
		if err != nil {
			m.problemWriter.WriteError(traceCtx, w, internal.ErrUnauthorizedError, logger)
			return
		}

		next(w, r.WithContext(ctx))
	}
}

// OptionalHandlerFunc attaches the principal when a valid cookie is present
// and lets the request through anonymously otherwise.
func (m *Middleware) OptionalHandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceCtx, span := m.tracer.Start(r.Context(), "OptionalSessionMiddleware")
		defer span.End()

		ctx, err := m.resolve(traceCtx, r)
		if err != nil {
			next(w, r)
			return
		}

		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) resolve(ctx context.Context, r *http.Request) (context.Context, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, internal.ErrSessionNotFound
	}

	sessionID, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil, internal.ErrSessionNotFound
	}

	currentSession, err := m.sessionStore.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	principal, err := m.userStore.GetByID(ctx, currentSession.UserID)
	if err != nil {
		return nil, err
	}

	m.sessionStore.Touch(ctx, sessionID)

	ctx = context.WithValue(ctx, internal.UserContextKey, &principal)
	ctx = context.WithValue(ctx, internal.SessionIDContextKey, sessionID)
	return ctx, nil
}
