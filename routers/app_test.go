package routers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database/dbtest"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	cfg := config.Default()
	cfg.CertificateDir = t.TempDir()
	cfg.RateLimitMax = 0
	config.AppConfig = cfg

	db := dbtest.New(t)
	return NewApp(cfg), db
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(u.ID, u.Name, u.Role, u.Email)
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	status, env := call(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Status)
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := call(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Abdullah", "email": "Abdullah@Example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = call(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Abdullah", "email": "abdullah@example.com", "password": "secret123",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, env := call(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{"name": "A", "email": "nope"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Data), "email")

	status, _ = call(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{"email": "abdullah@example.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env = call(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{"email": "abdullah@example.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.Token)

	status, _ = call(t, app, fiber.MethodGet, "/api/auth/me", login.Token, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app, _ := newTestApp(t)
	status, _ := call(t, app, fiber.MethodGet, "/api/enrollments", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLearningFlow(t *testing.T) {
	app, db := newTestApp(t)
	student := dbtest.CreateUser(t, db, "Ibrahim", models.RoleStudent)
	token := tokenFor(t, student)
	course, lessons := dbtest.CreateCourse(t, db, "Forty Hadith", 2, 600)
	exam, questions := dbtest.CreateExam(t, db, course.ID, 2, 60)
	coursePath := fmt.Sprintf("/api/courses/%d", course.ID)

	status, _ := call(t, app, fiber.MethodPost, coursePath+"/enroll", token, nil)
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = call(t, app, fiber.MethodPost, coursePath+"/enroll", token, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	// exam stays locked until every lesson is completed
	status, _ = call(t, app, fiber.MethodGet, coursePath+"/exam", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env := call(t, app, fiber.MethodPost, fmt.Sprintf("/api/lessons/%d/progress", lessons[0].ID), token, fiber.Map{
		"watchedDuration": 545, "isCompleted": false, "courseId": course.ID,
	})
	require.Equal(t, fiber.StatusOK, status)
	var progress struct {
		Progress   courseModels.LessonProgress `json:"progress"`
		Enrollment courseModels.Enrollment     `json:"enrollment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.True(t, progress.Progress.IsCompleted)
	assert.Equal(t, 50.0, progress.Enrollment.Progress)

	status, _ = call(t, app, fiber.MethodGet, coursePath+"/exam", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	// a completion claim without the watch time behind it is not honored
	status, env = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/lessons/%d/progress", lessons[1].ID), token, fiber.Map{
		"watchedDuration": 12, "isCompleted": true, "courseId": course.ID,
	})
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.False(t, progress.Progress.IsCompleted)
	assert.Equal(t, 12, progress.Progress.WatchedDuration)

	status, _ = call(t, app, fiber.MethodGet, coursePath+"/exam", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/lessons/%d/progress", lessons[1].ID), token, fiber.Map{
		"watchedDuration": 600, "isCompleted": true, "courseId": course.ID,
	})
	require.Equal(t, fiber.StatusOK, status)

	status, env = call(t, app, fiber.MethodGet, coursePath+"/exam", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(env.Data), "correct_answer")

	status, env = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/exams/%d/start", exam.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var attempt struct {
		ID               uint `json:"id"`
		RemainingSeconds int  `json:"remainingSeconds"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &attempt))
	assert.InDelta(t, 30*60, attempt.RemainingSeconds, 2)

	answers := map[string]string{}
	for _, q := range questions {
		answers[strconv.FormatUint(uint64(q.ID), 10)] = "first"
	}
	submitPath := fmt.Sprintf("/api/exam-attempts/%d/submit", attempt.ID)
	status, env = call(t, app, fiber.MethodPost, submitPath, token, fiber.Map{"answers": answers})
	require.Equal(t, fiber.StatusOK, status)
	var result struct {
		Score         float64 `json:"score"`
		Passed        bool    `json:"passed"`
		CertificateID *uint   `json:"certificateId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
	require.NotNil(t, result.CertificateID)

	status, _ = call(t, app, fiber.MethodPost, submitPath, token, fiber.Map{"answers": answers})
	assert.Equal(t, fiber.StatusConflict, status)

	// no diploma template configured: clients render locally
	status, _ = call(t, app, fiber.MethodPost, "/api/certificates/generate", token, fiber.Map{"certificateId": *result.CertificateID})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	var cert courseModels.Certificate
	require.NoError(t, db.First(&cert, *result.CertificateID).Error)
	status, env = call(t, app, fiber.MethodGet, "/api/certificates/verify/"+cert.CertificateNumber, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), "Ibrahim")

	status, _ = call(t, app, fiber.MethodGet, "/api/certificates/verify/HAD-1999-00000000", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminRoutesRequirePermission(t *testing.T) {
	app, db := newTestApp(t)
	student := dbtest.CreateUser(t, db, "Student", models.RoleStudent)
	admin := dbtest.CreateUser(t, db, "Admin", models.RoleAdmin)

	body := fiber.Map{"title": "Usul al-Hadith", "level": "INTERMEDIATE", "duration": 12}

	status, _ := call(t, app, fiber.MethodPost, "/api/admin/courses", tokenFor(t, student), body)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env := call(t, app, fiber.MethodPost, "/api/admin/courses", tokenFor(t, admin), body)
	require.Equal(t, fiber.StatusCreated, status)
	var course courseModels.Course
	require.NoError(t, json.Unmarshal(env.Data, &course))
	assert.Equal(t, "Usul al-Hadith", course.Title)

	status, _ = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/admin/courses/%d/lessons", course.ID), tokenFor(t, admin), fiber.Map{
		"title": "Chains of narration", "video_url": "https://youtu.be/abc123", "duration": 900,
	})
	require.Equal(t, fiber.StatusCreated, status)

	var lesson courseModels.Lesson
	require.NoError(t, db.Where("course_id = ?", course.ID).First(&lesson).Error)
	assert.Equal(t, courseModels.ProviderYouTube, lesson.VideoProvider)
	assert.Equal(t, 900, lesson.Duration)
	assert.True(t, lesson.DurationNormalized)

	status, _ = call(t, app, fiber.MethodGet, "/api/admin/dashboard/stats", tokenFor(t, admin), nil)
	assert.Equal(t, fiber.StatusOK, status)
}
