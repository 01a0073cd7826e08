package submit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"formbuilder/backend/internal"
	"formbuilder/backend/internal/form"
	"formbuilder/backend/internal/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockFormStore struct {
	mock.Mock
}

func (m *mockFormStore) GetByID(ctx context.Context, id uuid.UUID) (form.Form, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(form.Form)
	return row, args.Error(1)
}

func (m *mockFormStore) IncrementResponsesCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockResponseStore struct {
	mock.Mock
}

func (m *mockResponseStore) Create(ctx context.Context, formID uuid.UUID, answers []response.Answer, info response.SubmitterInfo) (response.Response, error) {
	args := m.Called(ctx, formID, answers, info)
	row, _ := args.Get(0).(response.Response)
	return row, args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockFormStore, *mockResponseStore) {
	t.Helper()

	fs := &mockFormStore{}
	rs := &mockResponseStore{}

	return &Service{
		logger:    zap.NewNop(),
		tracer:    noop.NewTracerProvider().Tracer("test"),
		forms:     fs,
		responses: rs,
	}, fs, rs
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	questions := []form.Question{
		{ID: "q1", Text: "What is your name?", Type: form.QuestionTypeShort},
		{ID: "q2", Text: "Rate the event", Type: form.QuestionTypeRating, Scale: 5},
	}

	type testCase struct {
		name     string
		payloads []AnswerPayload
		expected []response.Answer
	}

	cases := []testCase{
		{
			name: "all answers match their questions",
			payloads: []AnswerPayload{
				{QuestionID: "q1", Answer: rawJSON(t, "Alice")},
				{QuestionID: "q2", Answer: rawJSON(t, 4)},
			},
			expected: []response.Answer{
				{QuestionID: "q1", QuestionText: "What is your name?", QuestionType: "short", Answer: rawJSON(t, "Alice")},
				{QuestionID: "q2", QuestionText: "Rate the event", QuestionType: "rating", Answer: rawJSON(t, 4)},
			},
		},
		{
			name: "unknown question gets the sentinel snapshot",
			payloads: []AnswerPayload{
				{QuestionID: "deleted", Answer: rawJSON(t, "kept verbatim")},
			},
			expected: []response.Answer{
				{QuestionID: "deleted", QuestionText: UnknownQuestionText, QuestionType: UnknownQuestionType, Answer: rawJSON(t, "kept verbatim")},
			},
		},
		{
			name: "mixed known and unknown answers all survive",
			payloads: []AnswerPayload{
				{QuestionID: "q2", Answer: rawJSON(t, 5)},
				{QuestionID: "gone", Answer: rawJSON(t, []string{"a", "b"})},
				{QuestionID: "q1", Answer: rawJSON(t, "Bob")},
			},
			expected: []response.Answer{
				{QuestionID: "q2", QuestionText: "Rate the event", QuestionType: "rating", Answer: rawJSON(t, 5)},
				{QuestionID: "gone", QuestionText: UnknownQuestionText, QuestionType: UnknownQuestionType, Answer: rawJSON(t, []string{"a", "b"})},
				{QuestionID: "q1", QuestionText: "What is your name?", QuestionType: "short", Answer: rawJSON(t, "Bob")},
			},
		},
		{
			name:     "no payloads yields an empty slice",
			payloads: nil,
			expected: []response.Answer{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Reconcile(questions, tc.payloads)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestReconcile_FormWithNoQuestions(t *testing.T) {
	t.Parallel()

	payloads := []AnswerPayload{{QuestionID: "q1", Answer: rawJSON(t, "orphan")}}
	got := Reconcile(nil, payloads)

	require.Len(t, got, 1)
	require.Equal(t, UnknownQuestionText, got[0].QuestionText)
	require.Equal(t, UnknownQuestionType, got[0].QuestionType)
}

func TestSubmit_EmptySubmissionRejected(t *testing.T) {
	t.Parallel()

	service, fs, rs := newTestService(t)

	_, err := service.Submit(context.Background(), uuid.New(), nil, response.SubmitterInfo{})
	require.ErrorIs(t, err, internal.ErrEmptySubmission)

	fs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	rs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_FormNotFound(t *testing.T) {
	t.Parallel()

	service, fs, rs := newTestService(t)
	formID := uuid.New()

	fs.On("GetByID", mock.Anything, formID).Return(form.Form{}, internal.ErrFormNotFound)

	payloads := []AnswerPayload{{QuestionID: "q1", Answer: rawJSON(t, "x")}}
	_, err := service.Submit(context.Background(), formID, payloads, response.SubmitterInfo{})
	require.ErrorIs(t, err, internal.ErrFormNotFound)

	rs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_StoresReconciledAnswers(t *testing.T) {
	t.Parallel()

	service, fs, rs := newTestService(t)
	formID := uuid.New()

	fs.On("GetByID", mock.Anything, formID).Return(form.Form{
		ID: formID,
		Questions: []form.Question{
			{ID: "q1", Text: "Favorite color?", Type: form.QuestionTypeMCQ, Options: []string{"red", "blue"}},
		},
	}, nil)
	fs.On("IncrementResponsesCount", mock.Anything, formID).Return(nil)

	expectedAnswers := []response.Answer{
		{QuestionID: "q1", QuestionText: "Favorite color?", QuestionType: "mcq", Answer: rawJSON(t, "blue")},
	}
	stored := response.Response{ID: uuid.New(), FormID: formID, Answers: expectedAnswers}
	rs.On("Create", mock.Anything, formID, expectedAnswers, mock.Anything).Return(stored, nil)

	payloads := []AnswerPayload{{QuestionID: "q1", Answer: rawJSON(t, "blue")}}
	got, err := service.Submit(context.Background(), formID, payloads, response.SubmitterInfo{IP: "203.0.113.7"})
	require.NoError(t, err)
	require.Equal(t, stored.ID, got.ID)

	fs.AssertCalled(t, "IncrementResponsesCount", mock.Anything, formID)
}

func TestSubmit_CounterFailureDoesNotFailSubmission(t *testing.T) {
	t.Parallel()

	service, fs, rs := newTestService(t)
	formID := uuid.New()

	fs.On("GetByID", mock.Anything, formID).Return(form.Form{ID: formID}, nil)
	fs.On("IncrementResponsesCount", mock.Anything, formID).Return(errors.New("connection reset"))

	stored := response.Response{ID: uuid.New(), FormID: formID}
	rs.On("Create", mock.Anything, formID, mock.Anything, mock.Anything).Return(stored, nil)

	payloads := []AnswerPayload{{QuestionID: "q1", Answer: rawJSON(t, "x")}}
	got, err := service.Submit(context.Background(), formID, payloads, response.SubmitterInfo{})
	require.NoError(t, err)
	require.Equal(t, stored.ID, got.ID)
}

func TestSubmit_ResponseCreateFailurePropagates(t *testing.T) {
	t.Parallel()

	service, fs, rs := newTestService(t)
	formID := uuid.New()

	fs.On("GetByID", mock.Anything, formID).Return(form.Form{ID: formID}, nil)

	storeErr := errors.New("insert failed")
	rs.On("Create", mock.Anything, formID, mock.Anything, mock.Anything).Return(response.Response{}, storeErr)

	payloads := []AnswerPayload{{QuestionID: "q1", Answer: rawJSON(t, "x")}}
	_, err := service.Submit(context.Background(), formID, payloads, response.SubmitterInfo{})
	require.ErrorIs(t, err, storeErr)

	fs.AssertNotCalled(t, "IncrementResponsesCount", mock.Anything, mock.Anything)
}
