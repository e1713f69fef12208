package examsvc

import (
	"strconv"
	"testing"
	"time"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database/dbtest"
	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type examFixture struct {
	db        *gorm.DB
	user      models.User
	course    courseModels.Course
	lessons   []courseModels.Lesson
	exam      courseModels.Exam
	questions []courseModels.ExamQuestion
}

func setup(t *testing.T, lessons, questions int, completeAll bool) examFixture {
	t.Helper()
	cfg := config.Default()
	cfg.CertificateDir = t.TempDir()
	config.AppConfig = cfg

	db := dbtest.New(t)
	f := examFixture{db: db}
	f.user = dbtest.CreateUser(t, db, "student", models.RoleStudent)
	f.course, f.lessons = dbtest.CreateCourse(t, db, "Hadith Sciences", lessons, 600)
	dbtest.Enroll(t, db, f.user.ID, f.course)
	if completeAll {
		dbtest.CompleteLessons(t, db, f.user.ID, f.lessons...)
	}
	f.exam, f.questions = dbtest.CreateExam(t, db, f.course.ID, questions, 60)
	return f
}

func (f examFixture) answers(correct int) courseModels.AnswerSheet {
	s := courseModels.AnswerSheet{}
	for i, q := range f.questions {
		v := "B"
		if i < correct {
			v = "A"
		}
		s[strconv.FormatUint(uint64(q.ID), 10)] = v
	}
	return s
}

func TestCourseExamDeniedWithLessonsLeft(t *testing.T) {
	f := setup(t, 5, 3, false)
	dbtest.CompleteLessons(t, f.db, f.user.ID, f.lessons[:4]...)

	_, err := CourseExam(f.db, f.user.ID, f.course.ID)
	assert.ErrorIs(t, err, ErrLessonsIncomplete)
	assert.True(t, IsAccessDenied(err))

	_, err = StartAttempt(f.db, f.user.ID, f.exam.ID, time.Now())
	assert.ErrorIs(t, err, ErrLessonsIncomplete)
}

func TestCourseExamDeniedWhenNotEnrolled(t *testing.T) {
	f := setup(t, 1, 1, true)
	stranger := dbtest.CreateUser(t, f.db, "stranger", models.RoleStudent)

	_, err := CourseExam(f.db, stranger.ID, f.course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCourseExamHidesAnswerKeys(t *testing.T) {
	f := setup(t, 2, 3, true)

	view, err := CourseExam(f.db, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, f.exam.ID, view.ID)
	require.Len(t, view.Questions, 3)
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, view.Questions[0].Options)
}

func TestStartAttemptResumesOpenAttempt(t *testing.T) {
	f := setup(t, 1, 2, true)
	now := time.Now().Truncate(time.Second)

	first, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)
	assert.Equal(t, courseModels.AttemptInProgress, first.Status)
	assert.Equal(t, now.Add(30*time.Minute+30*time.Second), first.ExpiresAt)
	assert.Equal(t, now.Add(30*time.Minute), Deadline(first))

	again, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestStartAttemptEnforcesMaxAttempts(t *testing.T) {
	f := setup(t, 1, 1, true)
	require.NoError(t, f.db.Model(&f.exam).Update("max_attempts", 1).Error)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)
	_, err = SubmitAttempt(f.db, attempt.ID, f.user.ID, f.answers(0), now.Add(time.Minute))
	require.NoError(t, err)

	_, err = StartAttempt(f.db, f.user.ID, f.exam.ID, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrMaxAttemptsReached)
}

func TestSubmitAttemptCompletesExactlyOnce(t *testing.T) {
	f := setup(t, 1, 5, true)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)

	res, err := SubmitAttempt(f.db, attempt.ID, f.user.ID, f.answers(4), now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Score)
	assert.Equal(t, 4, res.CorrectAnswers)
	assert.Equal(t, 5, res.TotalQuestions)
	assert.True(t, res.Passed)
	require.NotNil(t, res.CertificateID)

	_, err = SubmitAttempt(f.db, attempt.ID, f.user.ID, f.answers(5), now.Add(11*time.Minute))
	assert.ErrorIs(t, err, ErrAttemptClosed)

	stored, err := GetAttempt(f.db, attempt.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.AttemptSubmitted, stored.Status)
	assert.Equal(t, 80.0, stored.Score)
	assert.Equal(t, 600, stored.Duration)

	var certs int64
	f.db.Model(&courseModels.Certificate{}).Where("exam_attempt_id = ?", attempt.ID).Count(&certs)
	assert.Equal(t, int64(1), certs)
}

func TestSubmitAttemptFailingIssuesNoCertificate(t *testing.T) {
	f := setup(t, 1, 5, true)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)

	res, err := SubmitAttempt(f.db, attempt.ID, f.user.ID, f.answers(2), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Score)
	assert.False(t, res.Passed)
	assert.Nil(t, res.CertificateID)

	cert, err := EnsureCertificate(f.db, attempt)
	require.NoError(t, err)
	assert.Nil(t, cert)
}

func TestSubmitAttemptRejectsForeignQuestions(t *testing.T) {
	f := setup(t, 1, 2, true)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)

	_, err = SubmitAttempt(f.db, attempt.ID, f.user.ID, courseModels.AnswerSheet{"424242": "A"}, now)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestLateSubmissionIsGradedOnSavedAnswers(t *testing.T) {
	f := setup(t, 1, 4, true)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)

	saved := f.answers(4)
	delete(saved, strconv.FormatUint(uint64(f.questions[3].ID), 10))
	delete(saved, strconv.FormatUint(uint64(f.questions[2].ID), 10))
	_, err = SaveAnswers(f.db, attempt.ID, f.user.ID, saved, now.Add(time.Minute))
	require.NoError(t, err)

	res, err := SubmitAttempt(f.db, attempt.ID, f.user.ID, f.answers(4), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Score)
	assert.True(t, res.AutoSubmitted)
}

func TestSaveAnswersMergesAndClosesAfterExpiry(t *testing.T) {
	f := setup(t, 1, 2, true)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)
	q1 := strconv.FormatUint(uint64(f.questions[0].ID), 10)
	q2 := strconv.FormatUint(uint64(f.questions[1].ID), 10)

	_, err = SaveAnswers(f.db, attempt.ID, f.user.ID, courseModels.AnswerSheet{q1: "A"}, now)
	require.NoError(t, err)
	updated, err := SaveAnswers(f.db, attempt.ID, f.user.ID, courseModels.AnswerSheet{q2: "C"}, now)
	require.NoError(t, err)
	assert.Equal(t, courseModels.AnswerSheet{q1: "A", q2: "C"}, updated.Sheet())

	_, err = SaveAnswers(f.db, attempt.ID, f.user.ID, courseModels.AnswerSheet{q1: "B"}, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAttemptExpired)
}

func TestExpireAbandonedAutoSubmitsOverdueAttempts(t *testing.T) {
	f := setup(t, 1, 2, true)
	now := time.Now()

	attempt, err := StartAttempt(f.db, f.user.ID, f.exam.ID, now)
	require.NoError(t, err)
	_, err = SaveAnswers(f.db, attempt.ID, f.user.ID, f.answers(2), now)
	require.NoError(t, err)

	closed, err := ExpireAbandoned(f.db, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	closed, err = ExpireAbandoned(f.db, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	stored, err := GetAttempt(f.db, attempt.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.AttemptSubmitted, stored.Status)
	assert.True(t, stored.AutoSubmitted)
	assert.Equal(t, 100.0, stored.Score)
	assert.Equal(t, int((30*time.Minute + 30*time.Second).Seconds()), stored.Duration)

	_, err = SubmitAttempt(f.db, attempt.ID, f.user.ID, nil, now.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrAttemptClosed)
}
