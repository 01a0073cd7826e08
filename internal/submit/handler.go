package submit

import (
	"context"
	"net"
	"net/http"
	"time"

	"formbuilder/backend/internal"
	"formbuilder/backend/internal/response"

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
	Answers []AnswerPayload `json:"answers" validate:"required,min=1,dive"`
}

// BodyRequest carries the target form in the body instead of the path.
type BodyRequest struct {
	FormID  string          `json:"formId" validate:"required,uuid"`
	Answers []AnswerPayload `json:"answers" validate:"required,min=1,dive"`
}

type SubmitResponse struct {
	ResponseID  string    `json:"responseId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Store interface {
	Submit(ctx context.Context, formID uuid.UUID, payloads []AnswerPayload, info response.SubmitterInfo) (response.Response, error)
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
		tracer:        otel.Tracer("submit/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

// SubmitHandler accepts anonymous submissions. When a session is present
// its id is recorded in the submitter metadata.
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	h.submit(traceCtx, w, r, logger, formID, req.Answers)
}

// SubmitBodyHandler accepts the same submissions with the form id carried
// in the request body.
func (h *Handler) SubmitBodyHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitBodyHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req BodyRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	formID, err := handlerutil.ParseUUID(req.FormID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	h.submit(traceCtx, w, r, logger, formID, req.Answers)
}

func (h *Handler) submit(traceCtx context.Context, w http.ResponseWriter, r *http.Request, logger *zap.Logger, formID uuid.UUID, answers []AnswerPayload) {
	info := response.SubmitterInfo{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if sessionID, ok := internal.GetSessionIDFromContext(traceCtx); ok {
		info.SessionID = sessionID.String()
	}

	newResponse, err := h.store.Submit(traceCtx, formID, answers, info)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, SubmitResponse{
		ResponseID:  newResponse.ID.String(),
		SubmittedAt: newResponse.SubmittedAt.Time,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
