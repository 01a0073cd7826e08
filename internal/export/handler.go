package export

import (
	"context"
	"fmt"
	"net/http"

	"formbuilder/backend/internal"
	"formbuilder/backend/internal/user"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Store interface {
	ExportXLSX(ctx context.Context, formID, userID uuid.UUID) ([]byte, string, error)
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
		tracer:        otel.Tracer("export/handler"),
		problemWriter: problemWriter,
		store:         store,
	}
}

// ExportHandler streams the form's responses as an XLSX attachment.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ExportHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	workbook, filename, err := h.store.ExportXLSX(traceCtx, formID, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		logger.Warn("Failed to write workbook to response", zap.Error(err))
	}
}
