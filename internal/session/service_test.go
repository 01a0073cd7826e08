package session

import (
	"context"
	"testing"
	"time"

	"formbuilder/backend/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (Session, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Session)
	return row, args.Error(1)
}

func (m *mockQuerier) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Session)
	return row, args.Error(1)
}

func (m *mockQuerier) Touch(ctx context.Context, arg TouchParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockQuerier) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockQuerier) {
	t.Helper()

	q := &mockQuerier{}
	return &Service{
		logger:     zap.NewNop(),
		queries:    q,
		tracer:     noop.NewTracerProvider().Tracer("test"),
		expiration: 24 * time.Hour,
	}, q
}

func TestCreate_UsesConfiguredExpiration(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	userID := uuid.New()

	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		remaining := time.Until(arg.ExpiresAt)
		return arg.UserID == userID && remaining > 23*time.Hour && remaining <= 24*time.Hour
	})).Return(Session{ID: uuid.New(), UserID: userID}, nil)

	_, err := service.Create(context.Background(), userID)
	require.NoError(t, err)

	q.AssertExpectations(t)
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	q.On("Get", mock.Anything, id).Return(Session{}, pgx.ErrNoRows)

	_, err := service.Get(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrSessionNotFound)
}

func TestGet_ExpiredSessionIsRejectedAndDeleted(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	expired := Session{
		ID:        id,
		UserID:    uuid.New(),
		ExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(-time.Minute), Valid: true},
	}
	q.On("Get", mock.Anything, id).Return(expired, nil)
	q.On("Delete", mock.Anything, id).Return(nil)

	_, err := service.Get(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrSessionExpired)

	q.AssertCalled(t, "Delete", mock.Anything, id)
}

func TestGet_LiveSession(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	live := Session{
		ID:        id,
		UserID:    uuid.New(),
		ExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(time.Hour), Valid: true},
	}
	q.On("Get", mock.Anything, id).Return(live, nil)

	got, err := service.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, live.UserID, got.UserID)

	q.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTouch_ExtendsSlidingWindow(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	q.On("Touch", mock.Anything, mock.MatchedBy(func(arg TouchParams) bool {
		return arg.ID == id && time.Until(arg.ExpiresAt) > 23*time.Hour
	})).Return(nil)

	service.Touch(context.Background(), id)

	q.AssertExpectations(t)
}
