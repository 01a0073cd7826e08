package form

import (
	"context"
	"testing"

	"formbuilder/backend/internal"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (Form, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) GetByID(ctx context.Context, id uuid.UUID) (Form, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) Update(ctx context.Context, arg UpdateParams) (Form, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuerier) List(ctx context.Context) ([]Form, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]Form)
	return rows, args.Error(1)
}

func (m *mockQuerier) ListByUser(ctx context.Context, userID uuid.UUID) ([]Form, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]Form)
	return rows, args.Error(1)
}

func (m *mockQuerier) IncrementResponsesCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockQuerier) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockQuerier) {
	t.Helper()

	q := &mockQuerier{}
	return &Service{
		logger:    zap.NewNop(),
		queries:   q,
		tracer:    noop.NewTracerProvider().Tracer("test"),
		sanitizer: bluemonday.UGCPolicy(),
	}, q
}

func ownedForm(id, userID uuid.UUID) Form {
	return Form{
		ID:     id,
		Title:  gofakeit.BookTitle(),
		UserID: pgtype.UUID{Bytes: userID, Valid: true},
		Theme:  "default",
	}
}

func TestCreate_DuplicateQuestionID(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)

	questions := []Question{
		{ID: "q1", Text: "First", Type: QuestionTypeShort},
		{ID: "q1", Text: "Second", Type: QuestionTypeLong},
	}

	_, err := service.Create(context.Background(), uuid.New(), "title", "", questions, "", "")
	require.ErrorIs(t, err, internal.ErrDuplicateQuestionID)

	q.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_InvalidQuestionType(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)

	questions := []Question{{ID: "q1", Text: "Bad", Type: "matrix"}}

	_, err := service.Create(context.Background(), uuid.New(), "title", "", questions, "", "")
	require.ErrorIs(t, err, internal.ErrInvalidQuestionType)

	q.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	userID := uuid.New()

	questions := []Question{
		{ID: "q1", Text: "Rate us", Type: QuestionTypeRating},
		{Text: "No id assigned", Type: QuestionTypeShort},
	}

	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		return arg.Theme == "default" &&
			arg.Questions[0].Scale == defaultRatingScale &&
			arg.Questions[1].ID != ""
	})).Return(Form{ID: uuid.New()}, nil)

	_, err := service.Create(context.Background(), userID, "Feedback", "", questions, "", "")
	require.NoError(t, err)

	q.AssertExpectations(t)
}

func TestCreate_SanitizesMarkup(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)

	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		return arg.Title == "Hello" && arg.Questions[0].Text == "Safe?"
	})).Return(Form{ID: uuid.New()}, nil)

	questions := []Question{{ID: "q1", Text: "<script>alert(1)</script>Safe?", Type: QuestionTypeShort}}
	_, err := service.Create(context.Background(), uuid.New(), "<script>x</script>Hello", "", questions, "", "")
	require.NoError(t, err)

	q.AssertExpectations(t)
}

func TestCreate_SanitizesAllQuestionFields(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)

	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		question := arg.Questions[0]
		return question.Description == "Pick one" &&
			question.Placeholder == "Type here" &&
			question.Options[0] == "Red" &&
			question.Categories[0] == "Fruit" &&
			question.Items[0] == "Apple"
	})).Return(Form{ID: uuid.New()}, nil)

	questions := []Question{{
		ID:          "q1",
		Text:        "Favourite?",
		Type:        QuestionTypeMCQ,
		Description: "<script>alert(1)</script>Pick one",
		Placeholder: "<script>steal()</script>Type here",
		Options:     []string{"<script>alert(2)</script>Red"},
		Categories:  []string{"<script>alert(3)</script>Fruit"},
		Items:       []string{"<script>alert(4)</script>Apple"},
	}}
	_, err := service.Create(context.Background(), uuid.New(), "Colours", "", questions, "", "")
	require.NoError(t, err)

	q.AssertExpectations(t)
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	id := uuid.New()

	q.On("GetByID", mock.Anything, id).Return(Form{}, pgx.ErrNoRows)

	_, err := service.GetByID(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrFormNotFound)
}

func TestUpdate_NotOwner(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	formID := uuid.New()
	owner := uuid.New()
	intruder := uuid.New()

	q.On("GetByID", mock.Anything, formID).Return(ownedForm(formID, owner), nil)

	_, err := service.Update(context.Background(), formID, intruder, "new title", "", nil, "", "")
	require.ErrorIs(t, err, internal.ErrNotFormOwner)

	q.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_OrphanedFormHasNoOwner(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	formID := uuid.New()

	orphan := Form{ID: formID, Title: "orphan", Theme: "default"}
	q.On("GetByID", mock.Anything, formID).Return(orphan, nil)

	_, err := service.Update(context.Background(), formID, uuid.New(), "t", "", nil, "", "")
	require.ErrorIs(t, err, internal.ErrNotFormOwner)
}

func TestUpdate_KeepsExistingThemeWhenOmitted(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	formID := uuid.New()
	owner := uuid.New()

	existing := ownedForm(formID, owner)
	existing.Theme = "midnight"
	q.On("GetByID", mock.Anything, formID).Return(existing, nil)
	q.On("Update", mock.Anything, mock.MatchedBy(func(arg UpdateParams) bool {
		return arg.Theme == "midnight"
	})).Return(existing, nil)

	_, err := service.Update(context.Background(), formID, owner, "t", "", nil, "", "")
	require.NoError(t, err)

	q.AssertExpectations(t)
}

func TestDelete_NotOwner(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	formID := uuid.New()
	owner := uuid.New()

	q.On("GetByID", mock.Anything, formID).Return(ownedForm(formID, owner), nil)

	err := service.Delete(context.Background(), formID, uuid.New())
	require.ErrorIs(t, err, internal.ErrNotFormOwner)

	q.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_Owner(t *testing.T) {
	t.Parallel()

	service, q := newTestService(t)
	formID := uuid.New()
	owner := uuid.New()

	q.On("GetByID", mock.Anything, formID).Return(ownedForm(formID, owner), nil)
	q.On("Delete", mock.Anything, formID).Return(int64(1), nil)

	err := service.Delete(context.Background(), formID, owner)
	require.NoError(t, err)

	q.AssertExpectations(t)
}
