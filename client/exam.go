package client

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
)

// RedirectDelay is how long a result stays on screen before leaving the exam.
const RedirectDelay = 2 * time.Second

// SessionState is the lifecycle of an exam session. There is no pause.
type SessionState int

const (
	NotStarted SessionState = iota
	InProgress
	Submitted
)

func (s SessionState) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	default:
		return "not_started"
	}
}

var (
	ErrNotLoaded         = errors.New("exam is not loaded")
	ErrNotInProgress     = errors.New("exam is not in progress")
	ErrIncompleteAnswers = errors.New("every question must be answered before submitting")
	ErrSubmitPending     = errors.New("submission already in progress")
	ErrUnknownQuestionID = errors.New("question is not part of this exam")
	ErrQuestionIndex     = errors.New("question index out of range")
)

// ExamSession is one student's run through a course exam: load, start, answer within
// the countdown, submit. When the countdown reaches zero the current answers are
// submitted without the all-answered check.
type ExamSession struct {
	Client   *Client
	CourseID uint

	// OnSubmitted runs after a successful submission.
	OnSubmitted func(*Result)

	mu         sync.Mutex
	state      SessionState
	exam       *Exam
	attempt    *Attempt
	current    int
	answers    map[string]string
	flagged    map[uint]bool
	remaining  int
	submitting bool
	result     *Result
}

// NewExamSession returns a session for the exam of a course.
func NewExamSession(c *Client, courseID uint) *ExamSession {
	return &ExamSession{
		Client:   c,
		CourseID: courseID,
		answers:  make(map[string]string),
		flagged:  make(map[uint]bool),
	}
}

// Load fetches the exam. A student with lessons left gets an error matching
// ErrAccessDenied; an expired session matches ErrUnauthorized.
func (s *ExamSession) Load(ctx context.Context) (*Exam, error) {
	exam, err := s.Client.CourseExam(ctx, s.CourseID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.exam = exam
	s.mu.Unlock()
	return exam, nil
}

// Start opens the attempt and the countdown. A resumed attempt keeps its saved answers
// and the server's remaining time; one with no time left is submitted at once.
func (s *ExamSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.exam == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.state != NotStarted {
		s.mu.Unlock()
		return ErrNotInProgress
	}
	examID, minutes := s.exam.ID, s.exam.Duration
	s.mu.Unlock()

	attempt, err := s.Client.StartExam(ctx, examID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.attempt = attempt
	s.state = InProgress
	s.current = 0
	s.remaining = minutes * 60
	switch {
	case attempt.Status == courseModels.AttemptInProgress:
		// the server clock is authoritative, including a deadline already reached
		s.remaining = min(max(attempt.RemainingSeconds, 0), s.remaining)
	case attempt.RemainingSeconds > 0 && attempt.RemainingSeconds < s.remaining:
		s.remaining = attempt.RemainingSeconds
	}
	for qid, v := range attempt.Answers {
		s.answers[qid] = v
	}
	expired := s.remaining == 0
	s.mu.Unlock()

	if expired {
		log.Printf("[EXAM] attempt=%d resumed with no time left", attempt.ID)
		if _, err := s.submit(ctx, true); err != nil && !errors.Is(err, ErrSubmitPending) {
			return err
		}
		return nil
	}
	log.Printf("[EXAM] attempt=%d started, %ds on the clock", attempt.ID, s.remaining)
	return nil
}

// State returns the session state.
func (s *ExamSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the seconds left on the countdown.
func (s *ExamSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Current returns the index of the displayed question.
func (s *ExamSession) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Navigate moves to question i.
func (s *ExamSession) Navigate(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return ErrNotInProgress
	}
	if i < 0 || i >= len(s.exam.Questions) {
		return ErrQuestionIndex
	}
	s.current = i
	return nil
}

// Answer records the answer of a question, replacing any earlier one.
func (s *ExamSession) Answer(questionID uint, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return ErrNotInProgress
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestionID
	}
	s.answers[strconv.FormatUint(uint64(questionID), 10)] = value
	return nil
}

// ToggleFlag marks a question for review. Flags never leave the client.
func (s *ExamSession) ToggleFlag(questionID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flagged[questionID] = !s.flagged[questionID]
	return s.flagged[questionID]
}

// Flagged reports whether a question is flagged.
func (s *ExamSession) Flagged(questionID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flagged[questionID]
}

// Answers returns a copy of the current answers keyed by question id.
func (s *ExamSession) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyAnswers()
}

// CanSubmit reports whether every question has an answer.
func (s *ExamSession) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmit()
}

func (s *ExamSession) canSubmit() bool {
	if s.state != InProgress || s.exam == nil {
		return false
	}
	for _, q := range s.exam.Questions {
		if s.answers[strconv.FormatUint(uint64(q.ID), 10)] == "" {
			return false
		}
	}
	return true
}

// Tick advances the countdown by one second. It returns true when the tick ran the
// clock out and triggered the automatic submission.
func (s *ExamSession) Tick(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != InProgress {
		s.mu.Unlock()
		return false, nil
	}
	if s.remaining > 0 {
		s.remaining--
	}
	expired := s.remaining == 0
	s.mu.Unlock()

	if !expired {
		return false, nil
	}
	_, err := s.submit(ctx, true)
	if errors.Is(err, ErrSubmitPending) {
		return false, nil
	}
	return true, err
}

// Submit sends the answers. It requires every question answered and refuses a second
// call while one is in flight.
func (s *ExamSession) Submit(ctx context.Context) (*Result, error) {
	return s.submit(ctx, false)
}

func (s *ExamSession) submit(ctx context.Context, auto bool) (*Result, error) {
	s.mu.Lock()
	if s.state != InProgress {
		s.mu.Unlock()
		return nil, ErrNotInProgress
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitPending
	}
	if !auto && !s.canSubmit() {
		s.mu.Unlock()
		return nil, ErrIncompleteAnswers
	}
	s.submitting = true
	attemptID := s.attempt.ID
	answers := s.copyAnswers()
	s.mu.Unlock()

	res, err := s.Client.SubmitExam(ctx, attemptID, answers)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		var apiErr *APIError
		// 409: the server closed the attempt already, e.g. the sweeper graded it
		if errors.As(err, &apiErr) && apiErr.StatusCode == 409 {
			s.state = Submitted
		}
		s.mu.Unlock()
		return nil, err
	}
	s.state = Submitted
	s.result = res
	s.mu.Unlock()

	if auto {
		log.Printf("[EXAM] attempt=%d time is up, submitted automatically", attemptID)
	}
	if s.OnSubmitted != nil {
		s.OnSubmitted(res)
	}
	return res, nil
}

// Result returns the graded outcome once submitted.
func (s *ExamSession) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SaveAnswers checkpoints the current answers so a reload can resume the attempt.
func (s *ExamSession) SaveAnswers(ctx context.Context) error {
	s.mu.Lock()
	if s.state != InProgress {
		s.mu.Unlock()
		return ErrNotInProgress
	}
	attemptID := s.attempt.ID
	answers := s.copyAnswers()
	s.mu.Unlock()

	if len(answers) == 0 {
		return nil
	}
	_, err := s.Client.SaveAnswers(ctx, attemptID, answers)
	return err
}

// Run ticks the countdown once per second until the session is submitted or ctx ends.
func (s *ExamSession) Run(ctx context.Context) error {
	return s.run(ctx, time.Second)
}

func (s *ExamSession) run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if s.State() == Submitted {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *ExamSession) hasQuestion(id uint) bool {
	for _, q := range s.exam.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s *ExamSession) copyAnswers() map[string]string {
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}
