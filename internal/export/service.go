package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"formbuilder/backend/internal/form"
	"formbuilder/backend/internal/response"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sheetName = "Responses"

type formStore interface {
	RequireOwner(ctx context.Context, id, userID uuid.UUID) (form.Form, error)
}

type responseStore interface {
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]response.Response, error)
}

type Service struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	forms     formStore
	responses responseStore
}

func NewService(logger *zap.Logger, forms formStore, responses responseStore) *Service {
	return &Service{
		logger:    logger,
		tracer:    otel.Tracer("export/service"),
		forms:     forms,
		responses: responses,
	}
}

// ExportXLSX builds a workbook with one column per question plus a
// submittedAt column and one row per response. Only the form owner may
// export.
func (s *Service) ExportXLSX(ctx context.Context, formID, userID uuid.UUID) ([]byte, string, error) {
	traceCtx, span := s.tracer.Start(ctx, "ExportXLSX")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	targetForm, err := s.forms.RequireOwner(traceCtx, formID, userID)
	if err != nil {
		return nil, "", err
	}

	items, err := s.responses.ListByFormID(traceCtx, formID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Warn("Failed to delete default sheet", zap.Error(err))
	}

	headers := make([]string, 0, len(targetForm.Questions)+1)
	headers = append(headers, "Submitted At")
	for _, q := range targetForm.Questions {
		headers = append(headers, q.Text)
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			span.RecordError(err)
			return nil, "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			span.RecordError(err)
			return nil, "", err
		}
	}

	for rowIdx, item := range items {
		byQuestion := make(map[string]string, len(item.Answers))
		for _, answer := range item.Answers {
			byQuestion[answer.QuestionID] = flattenAnswer(answer.Answer)
		}

		row := make([]string, 0, len(headers))
		row = append(row, item.SubmittedAt.Time.Format("2006-01-02 15:04:05"))
		for _, q := range targetForm.Questions {
			row = append(row, byQuestion[q.ID])
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				span.RecordError(err)
				return nil, "", err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				span.RecordError(err)
				return nil, "", err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	filename := fmt.Sprintf("%s-responses.xlsx", sanitizeFilename(targetForm.Title))
	logger.Info("Exported responses",
		zap.String("form_id", formID.String()),
		zap.Int("rows", len(items)))
	return buf.Bytes(), filename, nil
}

// flattenAnswer renders an untyped answer value as a single cell. Arrays
// become comma-separated text, anything else keeps its JSON rendering.
func flattenAnswer(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, flattenAnswer(item))
		}
		return strings.Join(parts, ", ")
	}

	return string(raw)
}

func sanitizeFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "form"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_", "\"", "", "'", "")
	return replacer.Replace(title)
}
