package upload

import (
	"context"
	"io"
	"net/http"
	"time"

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

// multipart bodies are capped slightly above the document limit to leave
// room for field overhead
const maxMultipartSize = MaxDocumentSize + 1024*1024

type UploadResponse struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	PublicID         string    `json:"public_id"`
	OriginalFilename string    `json:"originalFilename"`
	ContentType      string    `json:"contentType"`
	Size             int64     `json:"size"`
	Kind             string    `json:"kind"`
	CreatedAt        time.Time `json:"createdAt"`
}

func ToResponse(f File) UploadResponse {
	return UploadResponse{
		ID:               f.ID.String(),
		URL:              f.URL,
		PublicID:         f.PublicID,
		OriginalFilename: f.OriginalFilename,
		ContentType:      f.ContentType,
		Size:             f.Size,
		Kind:             string(f.Kind),
		CreatedAt:        f.CreatedAt.Time,
	}
}

type Store interface {
	SaveFile(ctx context.Context, stream io.Reader, filename, contentType, folder string, kind Kind, uploadedBy uuid.UUID, opts ...ValidatorOption) (File, error)
	ListByUploader(ctx context.Context, userID uuid.UUID) ([]File, error)
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
		tracer:        otel.Tracer("upload/handler"),
		problemWriter: problemWriter,
		store:         store,
	}
}

// UploadImageHandler accepts a multipart "file" field holding an image.
func (h *Handler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "UploadImageHandler", ImageFolder, KindImage, []ValidatorOption{
		WithMaxSize(MaxImageSize),
		WithImageFormats(),
	})
}

// UploadDocumentHandler accepts a multipart "file" field holding a document.
func (h *Handler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "UploadDocumentHandler", DocumentFolder, KindDocument, []ValidatorOption{
		WithMaxSize(MaxDocumentSize),
		WithDocumentFormats(),
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, spanName, folder string, kind Kind, opts []ValidatorOption) {
	traceCtx, span := h.tracer.Start(r.Context(), spanName)
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartSize)
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidMultipart, logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoFileUploaded, logger)
		return
	}
	defer file.Close()

	saved, err := h.store.SaveFile(traceCtx, file, header.Filename, header.Header.Get("Content-Type"), folder, kind, currentUser.ID, opts...)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(saved))
}

// ListMineHandler returns the caller's uploads, newest first.
func (h *Handler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListMineHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	currentUser, ok := user.GetFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	files, err := h.store.ListByUploader(traceCtx, currentUser.ID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	result := make([]UploadResponse, 0, len(files))
	for _, f := range files {
		result = append(result, ToResponse(f))
	}
	handlerutil.WriteJSONResponse(w, http.StatusOK, result)
}
