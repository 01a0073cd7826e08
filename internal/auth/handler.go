package auth

import (
	"context"
	"net/http"
	"time"

	"formbuilder/backend/internal"
	"formbuilder/backend/internal/session"
	"formbuilder/backend/internal/user"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Username string `json:"username" validate:"required,username_rules,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Username string `json:"username"`
}

// MeResponse keeps userId and username absent for anonymous callers.
type MeResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

type UserStore interface {
	Signup(ctx context.Context, username, email, password string) (user.User, error)
	Login(ctx context.Context, email, password string) (user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (session.Session, error)
	Destroy(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	userStore     UserStore
	sessionStore  SessionStore
	sessionMaxAge time.Duration
	devMode       bool
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	userStore UserStore,
	sessionStore SessionStore,
	sessionMaxAge time.Duration,
	devMode bool,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("auth/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		userStore:     userStore,
		sessionStore:  sessionStore,
		sessionMaxAge: sessionMaxAge,
		devMode:       devMode,
	}
}

func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SignupHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req SignupRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	newUser, err := h.userStore.Signup(traceCtx, req.Username, req.Email, req.Password)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	newSession, err := h.sessionStore.Create(traceCtx, newUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	h.setSessionCookie(w, newSession.ID.String())
	handlerutil.WriteJSONResponse(w, http.StatusOK, AuthResponse{Username: newUser.Username})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "LoginHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req LoginRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	currentUser, err := h.userStore.Login(traceCtx, req.Email, req.Password)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	newSession, err := h.sessionStore.Create(traceCtx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	h.setSessionCookie(w, newSession.ID.String())
	handlerutil.WriteJSONResponse(w, http.StatusOK, AuthResponse{Username: currentUser.Username})
}

// MeHandler reports login state. It never errors, anonymous callers get
// loggedIn false.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "MeHandler")
	defer span.End()

	currentUser, ok := user.GetFromContext(r.Context())
	if !ok {
		handlerutil.WriteJSONResponse(w, http.StatusOK, MeResponse{LoggedIn: false})
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, MeResponse{
		LoggedIn: true,
		UserID:   currentUser.ID.String(),
		Username: currentUser.Username,
	})
}

// LogoutHandler destroys the current session and clears the cookie. It
// succeeds even when the session is already gone.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "LogoutHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	sessionID, ok := internal.GetSessionIDFromContext(traceCtx)
	if ok {
		if err := h.sessionStore.Destroy(traceCtx, sessionID); err != nil {
			logger.Warn("Failed to destroy session on logout", zap.String("session_id", sessionID.String()), zap.Error(err))
		}
	}

	h.clearSessionCookie(w)
	handlerutil.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// setSessionCookie sets the session cookie with HTTP-only and secure flags
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	sameSite := http.SameSiteNoneMode
	secure := true
	if h.devMode {
		sameSite = http.SameSiteLaxMode
		secure = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   int(h.sessionMaxAge.Seconds()),
	})
}

// clearSessionCookie sets the session cookie to an empty value with negative
// MaxAge so the browser deletes it
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteNoneMode
	secure := true
	if h.devMode {
		sameSite = http.SameSiteLaxMode
		secure = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   -1,
	})
}
