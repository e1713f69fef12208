package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a student, or an admin with its permissions when role is ADMIN.
func CreateUser(t testing.TB, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%d@example.com", name, seq.Add(1)),
		Role:     role,
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	for _, p := range models.DefaultPermissions(role) {
		require.NoError(t, db.Create(&models.Permission{UserID: user.ID, Role: role, Permission: p}).Error)
	}
	return user
}

// CreateCourse inserts an active course with n lessons of lessonSeconds each, in order.
func CreateCourse(t testing.TB, db *gorm.DB, title string, n, lessonSeconds int) (courseModels.Course, []courseModels.Lesson) {
	t.Helper()
	course := courseModels.Course{Title: title, Level: courseModels.LevelBeginner, TotalLessons: n}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]courseModels.Lesson, n)
	for i := range lessons {
		lessons[i] = courseModels.Lesson{
			CourseID:           course.ID,
			Title:              fmt.Sprintf("%s lesson %d", title, i+1),
			VideoURL:           fmt.Sprintf("https://cdn.example.com/%d.mp4", i+1),
			VideoProvider:      courseModels.ProviderNative,
			Duration:           lessonSeconds,
			Order:              i + 1,
			DurationNormalized: true,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}
	return course, lessons
}

// Enroll enrolls a user in a course.
func Enroll(t testing.TB, db *gorm.DB, userID uint, course courseModels.Course) courseModels.Enrollment {
	t.Helper()
	e := courseModels.Enrollment{UserID: userID, CourseID: course.ID, TotalLessons: course.TotalLessons, EnrolledAt: time.Now()}
	require.NoError(t, db.Create(&e).Error)
	return e
}

// CompleteLessons marks lessons as completed for a user without touching the enrollment.
func CompleteLessons(t testing.TB, db *gorm.DB, userID uint, lessons ...courseModels.Lesson) {
	t.Helper()
	now := time.Now()
	for _, l := range lessons {
		require.NoError(t, db.Create(&courseModels.LessonProgress{
			UserID:          userID,
			LessonID:        l.ID,
			CourseID:        l.CourseID,
			WatchedDuration: l.Duration,
			IsCompleted:     true,
			CompletedAt:     &now,
			LastWatchedAt:   now,
		}).Error)
	}
}

// CreateExam inserts an exam whose questions have options A-D with "A" as the key.
func CreateExam(t testing.TB, db *gorm.DB, courseID uint, questions int, passingGrade float64) (courseModels.Exam, []courseModels.ExamQuestion) {
	t.Helper()
	exam := courseModels.Exam{
		CourseID:       courseID,
		Title:          "Final exam",
		Duration:       30,
		PassingGrade:   passingGrade,
		TotalQuestions: questions,
	}
	require.NoError(t, db.Create(&exam).Error)

	qs := make([]courseModels.ExamQuestion, questions)
	for i := range qs {
		qs[i] = courseModels.ExamQuestion{
			ExamID:        exam.ID,
			Question:      fmt.Sprintf("Question %d", i+1),
			Options:       []string{"first", "second", "third", "fourth"},
			CorrectAnswer: "A",
			Order:         i + 1,
			Points:        1,
		}
		require.NoError(t, db.Create(&qs[i]).Error)
	}
	return exam, qs
}
