package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type examServer struct {
	t         *testing.T
	mu        sync.Mutex
	denied    bool
	remaining int
	saved     map[string]string
	submits   []map[string]string
	saves     []map[string]string
}

func (s *examServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/courses/3/exam", func(w http.ResponseWriter, r *http.Request) {
		if s.denied {
			respond(s.t, w, http.StatusForbidden, nil)
			return
		}
		respond(s.t, w, http.StatusOK, map[string]interface{}{
			"ID": 7, "course_id": 3, "title": "Final", "duration": 1, "passing_grade": 60,
			"questions": []map[string]interface{}{
				{"id": 11, "question": "Q1", "options": []string{"a", "b"}},
				{"id": 12, "question": "Q2", "options": []string{"a", "b"}},
			},
		})
	})
	mux.HandleFunc("/api/exams/7/start", func(w http.ResponseWriter, r *http.Request) {
		respond(s.t, w, http.StatusOK, map[string]interface{}{
			"id": 99, "examId": 7, "status": "IN_PROGRESS", "remainingSeconds": s.remaining,
			"answers": s.saved,
		})
	})
	mux.HandleFunc("/api/exam-attempts/99/answers", func(w http.ResponseWriter, r *http.Request) {
		var body answersBody
		assert.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))
		s.mu.Lock()
		s.saves = append(s.saves, body.Answers)
		s.mu.Unlock()
		respond(s.t, w, http.StatusOK, map[string]interface{}{"id": 99, "answers": body.Answers})
	})
	mux.HandleFunc("/api/exam-attempts/99/submit", func(w http.ResponseWriter, r *http.Request) {
		var body answersBody
		assert.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))
		s.mu.Lock()
		s.submits = append(s.submits, body.Answers)
		s.mu.Unlock()
		correct := 0
		for _, v := range body.Answers {
			if v == "a" {
				correct++
			}
		}
		respond(s.t, w, http.StatusOK, map[string]interface{}{
			"attemptId": 99, "score": correct * 50, "correctAnswers": correct, "totalQuestions": 2, "passed": correct*50 >= 60,
		})
	})
	return mux
}

func newExamSession(t *testing.T, remaining int) (*ExamSession, *examServer) {
	t.Helper()
	fake := &examServer{t: t, remaining: remaining}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewExamSession(New(srv.URL+"/api", "token"), 3), fake
}

func TestExamSessionLoadDenied(t *testing.T) {
	s, fake := newExamSession(t, 60)
	fake.denied = true

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrAccessDenied)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAccessDenied())
	assert.Equal(t, NotStarted, s.State())
}

func TestExamSessionStartRequiresLoad(t *testing.T) {
	s, _ := newExamSession(t, 60)
	assert.ErrorIs(t, s.Start(context.Background()), ErrNotLoaded)
}

func TestExamSessionManualSubmit(t *testing.T) {
	s, fake := newExamSession(t, 60)
	ctx := context.Background()

	exam, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(7), exam.ID)
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, InProgress, s.State())
	assert.Equal(t, 60, s.Remaining())

	assert.False(t, s.CanSubmit())
	_, err = s.Submit(ctx)
	assert.ErrorIs(t, err, ErrIncompleteAnswers)

	assert.ErrorIs(t, s.Answer(13, "a"), ErrUnknownQuestionID)
	require.NoError(t, s.Answer(11, "b"))
	require.NoError(t, s.Answer(11, "a"))
	require.NoError(t, s.Navigate(1))
	assert.Equal(t, 1, s.Current())
	assert.ErrorIs(t, s.Navigate(2), ErrQuestionIndex)
	assert.True(t, s.ToggleFlag(12))
	assert.True(t, s.Flagged(12))
	assert.False(t, s.ToggleFlag(12))
	assert.False(t, s.CanSubmit())

	require.NoError(t, s.Answer(12, "a"))
	assert.True(t, s.CanSubmit())

	res, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, Submitted, s.State())
	assert.Equal(t, res, s.Result())

	_, err = s.Submit(ctx)
	assert.ErrorIs(t, err, ErrNotInProgress)
	assert.ErrorIs(t, s.Answer(11, "b"), ErrNotInProgress)
	require.Len(t, fake.submits, 1)
	assert.Equal(t, map[string]string{"11": "a", "12": "a"}, fake.submits[0])
}

func TestExamSessionTimeoutSubmitsCurrentAnswers(t *testing.T) {
	s, fake := newExamSession(t, 2)
	ctx := context.Background()
	var submitted *Result
	s.OnSubmitted = func(r *Result) { submitted = r }

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, 2, s.Remaining())
	require.NoError(t, s.Answer(11, "a"))

	fired, err := s.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, fired)

	fired, err = s.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, fired)

	assert.Equal(t, Submitted, s.State())
	require.NotNil(t, submitted)
	assert.Equal(t, 50.0, submitted.Score)
	require.Len(t, fake.submits, 1)
	assert.Equal(t, map[string]string{"11": "a"}, fake.submits[0])

	fired, err = s.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestExamSessionRunStopsAfterSubmission(t *testing.T) {
	s, fake := newExamSession(t, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.run(ctx, 5*time.Millisecond))
	assert.Equal(t, Submitted, s.State())
	assert.Len(t, fake.submits, 1)
}

func TestExamSessionRunHonoursContext(t *testing.T) {
	s, _ := newExamSession(t, 60)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.Equal(t, InProgress, s.State())
}

func TestExamSessionSaveAnswers(t *testing.T) {
	s, fake := newExamSession(t, 60)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.SaveAnswers(ctx))
	assert.Empty(t, fake.saves)

	require.NoError(t, s.Answer(12, "b"))
	require.NoError(t, s.SaveAnswers(ctx))
	require.Len(t, fake.saves, 1)
	assert.Equal(t, map[string]string{"12": "b"}, fake.saves[0])
}

func TestExamSessionResumeKeepsServerClock(t *testing.T) {
	s, fake := newExamSession(t, 25)
	fake.saved = map[string]string{"11": "a"}
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	assert.Equal(t, InProgress, s.State())
	assert.Equal(t, 25, s.Remaining())
	assert.Equal(t, map[string]string{"11": "a"}, s.Answers())
	assert.Empty(t, fake.submits)
}

func TestExamSessionResumeWithNoTimeLeftSubmitsAtOnce(t *testing.T) {
	s, fake := newExamSession(t, 0)
	fake.saved = map[string]string{"11": "a"}
	ctx := context.Background()
	var submitted *Result
	s.OnSubmitted = func(r *Result) { submitted = r }

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	assert.Equal(t, Submitted, s.State())
	assert.Zero(t, s.Remaining())
	require.NotNil(t, submitted)
	assert.Equal(t, 50.0, submitted.Score)
	require.Len(t, fake.submits, 1)
	assert.Equal(t, map[string]string{"11": "a"}, fake.submits[0])
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "in_progress", InProgress.String())
	assert.Equal(t, "submitted", Submitted.String())
}
