package response

import (
	"context"
	"net/http"
	"time"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type APIResponse struct {
	ID            string        `json:"id"`
	FormID        string        `json:"formId"`
	FormTitle     string        `json:"formTitle,omitempty"`
	Answers       []Answer      `json:"answers"`
	SubmitterInfo SubmitterInfo `json:"submitterInfo"`
	SubmittedAt   time.Time     `json:"submittedAt"`
}

func ToAPIResponse(r Response) APIResponse {
	answers := r.Answers
	if answers == nil {
		answers = []Answer{}
	}
	return APIResponse{
		ID:            r.ID.String(),
		FormID:        r.FormID.String(),
		Answers:       answers,
		SubmitterInfo: r.SubmitterInfo,
		SubmittedAt:   r.SubmittedAt.Time,
	}
}

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (Response, error)
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]Response, error)
	ListWithForm(ctx context.Context, formID *uuid.UUID) ([]WithFormTitle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	problemWriter *problem.HttpWriter

	store Store
}

func NewHandler(logger *zap.Logger, problemWriter *problem.HttpWriter, store Store) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("response/handler"),
		problemWriter: problemWriter,
		store:         store,
	}
}

// ListByFormHandler returns a form's responses, newest first.
func (h *Handler) ListByFormHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListByFormHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses, err := h.store.ListByFormID(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	result := make([]APIResponse, 0, len(responses))
	for _, item := range responses {
		result = append(result, ToAPIResponse(item))
	}
	handlerutil.WriteJSONResponse(w, http.StatusOK, result)
}

// ListHandler returns responses across forms, optionally filtered by the
// formId query parameter. Each item carries the owning form's title.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var formID *uuid.UUID
	if raw := r.URL.Query().Get("formId"); raw != "" {
		id, err := handlerutil.ParseUUID(raw)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		formID = &id
	}

	responses, err := h.store.ListWithForm(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	result := make([]APIResponse, 0, len(responses))
	for _, item := range responses {
		converted := ToAPIResponse(item.Response)
		converted.FormTitle = item.FormTitle
		result = append(result, converted)
	}
	handlerutil.WriteJSONResponse(w, http.StatusOK, result)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("responseId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	existing, err := h.store.Get(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToAPIResponse(existing))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("responseId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.Delete(traceCtx, id); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}
