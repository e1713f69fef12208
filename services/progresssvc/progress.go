// Package progresssvc keeps lesson watch progress and the enrollment rollup.
package progresssvc

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionThreshold is the watched share of a lesson that counts as completed.
const CompletionThreshold = 0.9

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrNotEnrolled    = errors.New("user is not enrolled in this course")
	ErrCourseMismatch = errors.New("lesson does not belong to this course")
)

// IsLessonCompleted reports whether watched seconds reach the completion threshold.
// A lesson without a known duration is never completed by watching.
func IsLessonCompleted(watched, duration int) bool {
	if duration <= 0 {
		return false
	}
	return float64(watched) >= CompletionThreshold*float64(duration)
}

// Report is one progress tick from a player.
type Report struct {
	UserID          uint
	LessonID        uint
	CourseID        uint
	WatchedDuration int
	// ClaimedComplete is the player's own completion flag. It is only logged when it
	// disagrees with the stored watched duration.
	ClaimedComplete bool
}

// Upsert stores a progress report and refreshes the enrollment. The stored watched
// duration never decreases, so late or reordered ticks cannot undo progress.
func Upsert(db *gorm.DB, r Report) (*courseModels.LessonProgress, *courseModels.Enrollment, error) {
	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", r.LessonID, false).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLessonNotFound
		}
		return nil, nil, err
	}
	if lesson.CourseID != r.CourseID {
		return nil, nil, ErrCourseMismatch
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", r.UserID, r.CourseID, false).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotEnrolled
		}
		return nil, nil, err
	}

	watched := r.WatchedDuration
	if watched < 0 {
		watched = 0
	}

	now := time.Now()
	var progress courseModels.LessonProgress

	err := db.Transaction(func(tx *gorm.DB) error {
		row := courseModels.LessonProgress{
			UserID:          r.UserID,
			LessonID:        r.LessonID,
			CourseID:        r.CourseID,
			WatchedDuration: watched,
			LastWatchedAt:   now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}

		// max(existing, incoming) in one statement keeps concurrent ticks monotonic
		if err := tx.Model(&courseModels.LessonProgress{}).
			Where("user_id = ? AND lesson_id = ?", r.UserID, r.LessonID).
			Updates(map[string]interface{}{
				"watched_duration": gorm.Expr("CASE WHEN watched_duration < ? THEN ? ELSE watched_duration END", watched, watched),
				"last_watched_at":  now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ? AND lesson_id = ?", r.UserID, r.LessonID).First(&progress).Error; err != nil {
			return err
		}

		if progress.IsCompleted || !IsLessonCompleted(progress.WatchedDuration, lesson.Duration) {
			return nil
		}
		progress.IsCompleted = true
		progress.CompletedAt = &now
		return tx.Model(&courseModels.LessonProgress{}).
			Where("id = ? AND is_completed = ?", progress.ID, false).
			Updates(map[string]interface{}{
				"is_completed": true,
				"completed_at": now,
			}).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("upsert lesson progress: %w", err)
	}
	if r.ClaimedComplete && !progress.IsCompleted {
		log.Printf("[PROGRESS] user=%d lesson=%d claimed completion at %ds of %ds, ignored",
			r.UserID, r.LessonID, progress.WatchedDuration, lesson.Duration)
	}

	updated, err := RecalculateEnrollment(db, r.UserID, r.CourseID)
	if err != nil {
		return &progress, nil, err
	}
	return &progress, updated, nil
}

// RecalculateEnrollment recomputes an enrollment from completed active lessons.
func RecalculateEnrollment(db *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	completed, total, err := countCompletion(db, userID, courseID)
	if err != nil {
		return nil, err
	}

	enrollment.CompletedLessons = completed
	enrollment.TotalLessons = total
	enrollment.Progress = Percentage(completed, total)
	if enrollment.Progress >= 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := db.Model(&enrollment).Updates(map[string]interface{}{
		"completed_lessons": enrollment.CompletedLessons,
		"total_lessons":     enrollment.TotalLessons,
		"progress":          enrollment.Progress,
		"completed_at":      enrollment.CompletedAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	log.Printf("[PROGRESS] user=%d course=%d progress=%.2f (%d/%d)", userID, courseID, enrollment.Progress, completed, total)
	return &enrollment, nil
}

// Percentage returns completed/total as a 0-100 value with two decimals.
func Percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(completed) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return math.Round(p*100) / 100
}

// AllLessonsCompleted reports whether every active lesson of the course is completed.
// A course without lessons is never complete.
func AllLessonsCompleted(db *gorm.DB, userID, courseID uint) (completed, total int, ok bool, err error) {
	completed, total, err = countCompletion(db, userID, courseID)
	if err != nil {
		return 0, 0, false, err
	}
	return completed, total, total > 0 && completed >= total, nil
}

func countCompletion(db *gorm.DB, userID, courseID uint) (int, int, error) {
	var total int64
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := db.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.course_id = ? AND lesson_progresses.is_completed = ?", userID, courseID, true).
		Where("lessons.is_active = ? AND lessons.is_deleted = ? AND lessons.deleted_at IS NULL", true, false).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return int(completed), int(total), nil
}

// LessonState is a lesson together with the user's progress on it.
type LessonState struct {
	courseModels.Lesson
	WatchedDuration int        `json:"watched_duration"`
	IsCompleted     bool       `json:"is_completed"`
	IsUnlocked      bool       `json:"is_unlocked"`
	LastWatchedAt   *time.Time `json:"last_watched_at"`
}

// CourseProgress is the progress view of one course for one user.
type CourseProgress struct {
	Enrollment     *courseModels.Enrollment `json:"enrollment"`
	Lessons        []LessonState            `json:"lessons"`
	NextLessonID   *uint                    `json:"next_lesson_id"`
	ExamUnlocked   bool                     `json:"exam_unlocked"`
	CompletedCount int                      `json:"completed_count"`
	TotalCount     int                      `json:"total_count"`
}

// GetCourseProgress builds the per-lesson view. Lessons unlock in order: a lesson is
// available once every earlier lesson is completed.
func GetCourseProgress(db *gorm.DB, userID, courseID uint) (*CourseProgress, error) {
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return nil, err
	}

	var rows []courseModels.LessonProgress
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byLesson := make(map[uint]courseModels.LessonProgress, len(rows))
	for _, p := range rows {
		byLesson[p.LessonID] = p
	}

	out := &CourseProgress{Enrollment: &enrollment, Lessons: make([]LessonState, len(lessons)), TotalCount: len(lessons)}
	unlocked := true
	for i, l := range lessons {
		st := LessonState{Lesson: l, IsUnlocked: unlocked}
		if p, ok := byLesson[l.ID]; ok {
			st.WatchedDuration = p.WatchedDuration
			st.IsCompleted = p.IsCompleted
			last := p.LastWatchedAt
			st.LastWatchedAt = &last
		}
		if st.IsCompleted {
			out.CompletedCount++
		} else {
			if out.NextLessonID == nil && unlocked {
				id := l.ID
				out.NextLessonID = &id
			}
			unlocked = false
		}
		out.Lessons[i] = st
	}
	out.ExamUnlocked = out.TotalCount > 0 && out.CompletedCount == out.TotalCount
	return out, nil
}

// NormalizeLegacyDuration converts a legacy lesson duration to seconds. Legacy rows
// stored either minutes or seconds; values under one minute are read as minutes.
// Only the one-off migration uses this.
func NormalizeLegacyDuration(value int) int {
	if value <= 0 {
		return 0
	}
	if value < 60 {
		return value * 60
	}
	return value
}

// NormalizeLessonDurations rewrites every lesson not yet flagged as normalized to
// seconds and flags it. Running it twice changes nothing.
func NormalizeLessonDurations(db *gorm.DB) (int, error) {
	var lessons []courseModels.Lesson
	if err := db.Where("duration_normalized = ?", false).Find(&lessons).Error; err != nil {
		return 0, err
	}

	changed := 0
	for _, l := range lessons {
		seconds := NormalizeLegacyDuration(l.Duration)
		if err := db.Model(&courseModels.Lesson{}).Where("id = ? AND duration_normalized = ?", l.ID, false).
			Updates(map[string]interface{}{"duration": seconds, "duration_normalized": true}).Error; err != nil {
			return changed, fmt.Errorf("normalize lesson %d: %w", l.ID, err)
		}
		if seconds != l.Duration {
			log.Printf("[MIGRATE] lesson=%d duration %d -> %ds", l.ID, l.Duration, seconds)
			changed++
		}
	}
	return changed, nil
}
