package scheduler

import (
	"testing"
	"time"

	"github.com/Umairanwarr/hadith-sub001/database/dbtest"
	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAttemptSchedulerRejectsBadSchedule(t *testing.T) {
	db := dbtest.New(t)
	_, err := InitializeAttemptScheduler(db, "every now and then")
	assert.Error(t, err)
}

func TestInitializeAttemptSchedulerDefaultSchedule(t *testing.T) {
	db := dbtest.New(t)
	c, err := InitializeAttemptScheduler(db, "")
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}

func TestSweepAttemptsClosesOverdueAttempts(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.CreateUser(t, db, "yusuf", models.RoleStudent)
	course, _ := dbtest.CreateCourse(t, db, "Sunan", 1, 300)
	exam, _ := dbtest.CreateExam(t, db, course.ID, 2, 60)

	started := time.Now().Add(-2 * time.Hour)
	overdue := courseModels.ExamAttempt{
		UserID: user.ID, ExamID: exam.ID, CourseID: course.ID,
		Status: courseModels.AttemptInProgress, StartedAt: started, ExpiresAt: started.Add(31 * time.Minute),
	}
	running := courseModels.ExamAttempt{
		UserID: user.ID, ExamID: exam.ID, CourseID: course.ID,
		Status: courseModels.AttemptInProgress, StartedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&overdue).Error)
	require.NoError(t, db.Create(&running).Error)

	SweepAttempts(db)

	var closed, open courseModels.ExamAttempt
	require.NoError(t, db.First(&closed, overdue.ID).Error)
	assert.Equal(t, courseModels.AttemptSubmitted, closed.Status)
	assert.True(t, closed.AutoSubmitted)
	assert.Equal(t, 0.0, closed.Score)

	require.NoError(t, db.First(&open, running.ID).Error)
	assert.Equal(t, courseModels.AttemptInProgress, open.Status)
}
