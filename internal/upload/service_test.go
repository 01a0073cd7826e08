package upload

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"formbuilder/backend/internal"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (File, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(File)
	return row, args.Error(1)
}

func (m *mockQuerier) ListByUploader(ctx context.Context, userID uuid.UUID) ([]File, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]File)
	return rows, args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(data []byte, id, folder, filename, contentType string) (string, string, error) {
	args := m.Called(data, id, folder, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func newTestService(t *testing.T) (*Service, *mockQuerier, *mockStorage) {
	t.Helper()

	q := &mockQuerier{}
	st := &mockStorage{}

	return &Service{
		logger:    zap.NewNop(),
		queries:   q,
		tracer:    noop.NewTracerProvider().Tracer("test"),
		validator: NewValidator(),
		storage:   st,
	}, q, st
}

func TestSaveFile_PlacesObjectInRequestedFolder(t *testing.T) {
	t.Parallel()

	service, querier, storage := newTestService(t)
	data := []byte("plain text attachment")

	storage.On("Upload", data, mock.Anything, DocumentFolder, "notes.txt", "text/plain").
		Return(DocumentFolder+"/abc123.txt", "https://storage.example.com/signed", nil)
	querier.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		return arg.PublicID == DocumentFolder+"/abc123.txt" && arg.Kind == KindDocument
	})).Return(File{PublicID: DocumentFolder + "/abc123.txt"}, nil)

	saved, err := service.SaveFile(context.Background(), bytes.NewReader(data), "notes.txt", "text/plain", DocumentFolder, KindDocument, uuid.New())
	require.NoError(t, err)
	require.Equal(t, DocumentFolder+"/abc123.txt", saved.PublicID)
	storage.AssertExpectations(t)
	querier.AssertExpectations(t)
}

func TestSaveFile_StorageFailure(t *testing.T) {
	t.Parallel()

	service, querier, storage := newTestService(t)

	storage.On("Upload", mock.Anything, mock.Anything, ImageFolder, mock.Anything, mock.Anything).
		Return("", "", errors.New("bucket unavailable"))

	_, err := service.SaveFile(context.Background(), bytes.NewReader([]byte("x")), "a.png", "image/png", ImageFolder, KindImage, uuid.New())
	require.ErrorIs(t, err, internal.ErrStorageFailure)
	querier.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
