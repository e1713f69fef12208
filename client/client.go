// Package client drives the learning API from Go: lesson progress reporting, timed exam
// sessions and certificate downloads with a local render fallback.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrUnauthorized = errors.New("session expired, please log in again")
	ErrAccessDenied = errors.New("access denied")
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

func (e *APIError) IsAccessDenied() bool { return e.StatusCode == http.StatusForbidden }

// Is lets errors.Is match ErrUnauthorized and ErrAccessDenied.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.IsUnauthorized()
	case ErrAccessDenied:
		return e.IsAccessDenied()
	}
	return false
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the API under baseURL, e.g. http://localhost:3000/api.
type Client struct {
	http *resty.Client
}

// New returns a client authenticated with a bearer token; an empty token sends none.
func New(baseURL, token string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		r.SetAuthToken(token)
	}
	return &Client{http: r}
}

// SetToken replaces the bearer token, e.g. after logging in again.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// do sends a JSON request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	var env envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil && !resp.IsError() {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
		if resp.StatusCode() == http.StatusUnprocessableEntity && len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &apiErr.Errors)
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// raw fetches a binary body, e.g. a certificate download.
func (c *Client) raw(ctx context.Context, path string) ([]byte, string, error) {
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "*/*").Get(path)
	if err != nil {
		return nil, "", err
	}
	if resp.IsError() {
		var env envelope
		_ = json.Unmarshal(resp.Body(), &env)
		return nil, "", &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// ProgressUpdate is the body of a lesson progress report.
type ProgressUpdate struct {
	WatchedDuration int  `json:"watchedDuration"`
	IsCompleted     bool `json:"isCompleted"`
	CourseID        uint `json:"courseId"`
}

// LessonProgress is the stored progress of one lesson.
type LessonProgress struct {
	LessonID        uint `json:"lesson_id"`
	CourseID        uint `json:"course_id"`
	WatchedDuration int  `json:"watched_duration"`
	IsCompleted     bool `json:"is_completed"`
}

// Enrollment is the course level rollup.
type Enrollment struct {
	CourseID         uint       `json:"course_id"`
	Progress         float64    `json:"progress"`
	CompletedLessons int        `json:"completed_lessons"`
	TotalLessons     int        `json:"total_lessons"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// ProgressResult is the answer to a progress report.
type ProgressResult struct {
	Progress   LessonProgress `json:"progress"`
	Enrollment Enrollment     `json:"enrollment"`
}

// UpdateLessonProgress posts one progress tick.
func (c *Client) UpdateLessonProgress(ctx context.Context, lessonID uint, u ProgressUpdate) (*ProgressResult, error) {
	var out ProgressResult
	if err := c.do(ctx, resty.MethodPost, fmt.Sprintf("/lessons/%d/progress", lessonID), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Question is an exam question without its answer key.
type Question struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Order    int      `json:"order"`
	Points   float64  `json:"points"`
}

// Exam is a course exam as served to a student.
type Exam struct {
	ID           uint       `json:"id"`
	CourseID     uint       `json:"course_id"`
	Title        string     `json:"title"`
	Duration     int        `json:"duration"` // minutes
	PassingGrade float64    `json:"passing_grade"`
	Questions    []Question `json:"questions"`
}

// Attempt is the server's view of an exam attempt.
type Attempt struct {
	ID               uint              `json:"id"`
	ExamID           uint              `json:"examId"`
	CourseID         uint              `json:"courseId"`
	Status           string            `json:"status"`
	Answers          map[string]string `json:"answers"`
	StartedAt        time.Time         `json:"startedAt"`
	ExpiresAt        time.Time         `json:"expiresAt"`
	Duration         int               `json:"duration"`
	RemainingSeconds int               `json:"remainingSeconds"`
}

// Result is the graded outcome of a submitted attempt.
type Result struct {
	AttemptID      uint    `json:"attemptId"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Passed         bool    `json:"passed"`
	PassingGrade   float64 `json:"passingGrade"`
	AutoSubmitted  bool    `json:"autoSubmitted"`
	CertificateID  *uint   `json:"certificateId,omitempty"`
}

type answersBody struct {
	Answers map[string]string `json:"answers"`
}

// CourseExam fetches the exam of a course. Students with lessons left get ErrAccessDenied.
func (c *Client) CourseExam(ctx context.Context, courseID uint) (*Exam, error) {
	var out Exam
	if err := c.do(ctx, resty.MethodGet, fmt.Sprintf("/courses/%d/exam", courseID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartExam opens an attempt or resumes the running one.
func (c *Client) StartExam(ctx context.Context, examID uint) (*Attempt, error) {
	var out Attempt
	if err := c.do(ctx, resty.MethodPost, fmt.Sprintf("/exams/%d/start", examID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveAnswers checkpoints the answers of a running attempt.
func (c *Client) SaveAnswers(ctx context.Context, attemptID uint, answers map[string]string) (*Attempt, error) {
	var out Attempt
	if err := c.do(ctx, resty.MethodPut, fmt.Sprintf("/exam-attempts/%d/answers", attemptID), answersBody{answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitExam grades an attempt.
func (c *Client) SubmitExam(ctx context.Context, attemptID uint, answers map[string]string) (*Result, error) {
	var out Result
	if err := c.do(ctx, resty.MethodPost, fmt.Sprintf("/exam-attempts/%d/submit", attemptID), answersBody{answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeneratedCertificate points at a stored certificate artifact.
type GeneratedCertificate struct {
	ImageID string `json:"imageId"`
	Format  string `json:"format"`
	URL     string `json:"url"`
}

// GenerateCertificateRequest is the body of POST /certificates/generate.
type GenerateCertificateRequest struct {
	CertificateID   uint                   `json:"certificateId"`
	TemplateID      *uint                  `json:"templateId,omitempty"`
	CanvasData      string                 `json:"canvasData,omitempty"`
	Format          string                 `json:"format,omitempty"`
	CertificateData map[string]interface{} `json:"certificateData,omitempty"`
}

// GenerateCertificate asks the server to render and store a certificate.
func (c *Client) GenerateCertificate(ctx context.Context, req GenerateCertificateRequest) (*GeneratedCertificate, error) {
	var out GeneratedCertificate
	if err := c.do(ctx, resty.MethodPost, "/certificates/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadCertificate fetches a stored artifact and its content type.
func (c *Client) DownloadCertificate(ctx context.Context, certificateID uint, imageID string) ([]byte, string, error) {
	return c.raw(ctx, fmt.Sprintf("/certificates/%d/download/%s", certificateID, imageID))
}
