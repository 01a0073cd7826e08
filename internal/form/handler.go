package form

import (
	"context"
	"net/http"
	"time"

	"formbuilder/backend/internal"
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

type Request struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions" validate:"dive"`
	File        string     `json:"file" validate:"omitempty,url"`
	Theme       string     `json:"theme"`
}

type Response struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Questions      []Question `json:"questions"`
	UserID         string     `json:"userId,omitempty"`
	File           string     `json:"file"`
	Theme          string     `json:"theme"`
	ResponsesCount int64      `json:"responsesCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ToResponse converts a Form storage model into an API Response. The owner
// id is omitted when the owning account has been deleted.
func ToResponse(f Form) Response {
	var userID string
	if f.UserID.Valid {
		userID = uuid.UUID(f.UserID.Bytes).String()
	}

	questions := f.Questions
	if questions == nil {
		questions = []Question{}
	}

	return Response{
		ID:             f.ID.String(),
		Title:          f.Title,
		Description:    f.Description,
		Questions:      questions,
		UserID:         userID,
		File:           f.File,
		Theme:          f.Theme,
		ResponsesCount: f.ResponsesCount,
		CreatedAt:      f.CreatedAt.Time,
		UpdatedAt:      f.UpdatedAt.Time,
	}
}

func toResponseList(forms []Form) []Response {
	responses := make([]Response, 0, len(forms))
	for _, f := range forms {
		responses = append(responses, ToResponse(f))
	}
	return responses
}

type Store interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string, questions []Question, file, theme string) (Form, error)
	GetByID(ctx context.Context, id uuid.UUID) (Form, error)
	Update(ctx context.Context, id, userID uuid.UUID, title, description string, questions []Question, file, theme string) (Form, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context) ([]Form, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Form, error)
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	store Store
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	store Store,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("form/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "CreateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	newForm, err := h.store.Create(traceCtx, currentUser.ID, req.Title, req.Description, req.Questions, req.File, req.Theme)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(newForm))
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	forms, err := h.store.List(traceCtx)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, toResponseList(forms))
}

func (h *Handler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListMineHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	forms, err := h.store.ListByUser(traceCtx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, toResponseList(forms))
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	currentForm, err := h.store.GetByID(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(currentForm))
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "UpdateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updated, err := h.store.Update(traceCtx, id, currentUser.ID, req.Title, req.Description, req.Questions, req.File, req.Theme)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updated))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	if err := h.store.Delete(traceCtx, id, currentUser.ID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}
