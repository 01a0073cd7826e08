package user

import (
	"context"
	"net/http"
	"time"

	"formbuilder/backend/internal"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UpdateProfileRequest struct {
	Username     string `json:"username" validate:"omitempty,username_rules,min=3,max=32"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
}

type ProfileResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfileImage   string    `json:"profileImage"`
	CreatedAt      time.Time `json:"createdAt"`
	TotalForms     int64     `json:"totalForms"`
	TotalResponses int64     `json:"totalResponses"`
}

// ToResponse converts a User storage model into an API ProfileResponse.
func ToResponse(u User, totalForms, totalResponses int64) ProfileResponse {
	return ProfileResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		ProfileImage:   u.ProfileImage.String,
		CreatedAt:      u.CreatedAt.Time,
		TotalForms:     totalForms,
		TotalResponses: totalResponses,
	}
}

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, profileImage string) (User, error)
}

type formCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type responseCounter interface {
	CountByFormOwner(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	store           Store
	formCounter     formCounter
	responseCounter responseCounter
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	store Store,
	formCounter formCounter,
	responseCounter responseCounter,
) *Handler {
	return &Handler{
		logger:          logger,
		tracer:          otel.Tracer("user/handler"),
		validator:       validator,
		problemWriter:   problemWriter,
		store:           store,
		formCounter:     formCounter,
		responseCounter: responseCounter,
	}
}

// GetProfileHandler returns the caller's profile with aggregate counts of
// forms they own and responses those forms have received.
func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetProfileHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	currentUser, ok := GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	totalForms, err := h.formCounter.CountByUser(traceCtx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	totalResponses, err := h.responseCounter.CountByFormOwner(traceCtx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(*currentUser, totalForms, totalResponses))
}

func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "UpdateProfileHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	currentUser, ok := GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	var req UpdateProfileRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updated, err := h.store.UpdateProfile(traceCtx, currentUser.ID, req.Username, req.ProfileImage)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	totalForms, err := h.formCounter.CountByUser(traceCtx, updated.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	totalResponses, err := h.responseCounter.CountByFormOwner(traceCtx, updated.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updated, totalForms, totalResponses))
}
