package response

import (
	"context"
	"testing"

	"formbuilder/backend/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (Response, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Response)
	return row, args.Error(1)
}

func (m *mockQuerier) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Response)
	return row, args.Error(1)
}

func (m *mockQuerier) ListByFormID(ctx context.Context, formID uuid.UUID) ([]Response, error) {
	args := m.Called(ctx, formID)
	rows, _ := args.Get(0).([]Response)
	return rows, args.Error(1)
}

func (m *mockQuerier) ListWithForm(ctx context.Context, formID *uuid.UUID) ([]WithFormTitle, error) {
	args := m.Called(ctx, formID)
	rows, _ := args.Get(0).([]WithFormTitle)
	return rows, args.Error(1)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuerier) CountByFormOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockQuerier) {
	t.Helper()

	q := &mockQuerier{}
	return &Service{
		logger:  zap.NewNop(),
		queries: q,
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}, q
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	q.On("Get", mock.Anything, id).Return(Response{}, pgx.ErrNoRows)

	_, err := service.Get(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrResponseNotFound)
}

func TestDelete_MissingRow(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	q.On("Delete", mock.Anything, id).Return(int64(0), nil)

	err := service.Delete(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrResponseNotFound)
}

func TestDelete_Success(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	q.On("Delete", mock.Anything, id).Return(int64(1), nil)

	require.NoError(t, service.Delete(context.Background(), id))
}

func TestListWithForm_PassesOptionalFilter(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	formID := uuid.New()

	q.On("ListWithForm", mock.Anything, &formID).Return([]WithFormTitle{
		{Response: Response{ID: uuid.New(), FormID: formID}, FormTitle: "Survey"},
	}, nil)

	items, err := service.ListWithForm(context.Background(), &formID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Survey", items[0].FormTitle)
}
