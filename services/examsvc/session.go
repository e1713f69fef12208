// Package examsvc runs exam access checks, timed attempts and grading.
package examsvc

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Umairanwarr/hadith-sub001/config"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/certsvc"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrAttemptNotFound    = errors.New("exam attempt not found")
	ErrNotEnrolled        = errors.New("user is not enrolled in this course")
	ErrLessonsIncomplete  = errors.New("all course lessons must be completed before the exam")
	ErrAttemptClosed      = errors.New("exam attempt already submitted")
	ErrAttemptExpired     = errors.New("exam attempt time is over")
	ErrMaxAttemptsReached = errors.New("maximum number of exam attempts reached")
	ErrUnknownQuestion    = errors.New("answer references a question outside this exam")
)

// IsAccessDenied reports whether err is a business-rule refusal rather than a failure.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrNotEnrolled) || errors.Is(err, ErrLessonsIncomplete) || errors.Is(err, ErrMaxAttemptsReached)
}

// QuestionView is a question as shown to a student: no answer key.
type QuestionView struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Order    int      `json:"order"`
	Points   float64  `json:"points"`
}

// ExamView is an exam with its student-safe questions.
type ExamView struct {
	courseModels.Exam
	Questions []QuestionView `json:"questions"`
}

// CheckExamAccess refuses users that are not enrolled or have lessons left.
func CheckExamAccess(db *gorm.DB, userID, courseID uint) error {
	var count int64
	if err := db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotEnrolled
	}

	completed, total, ok, err := progresssvc.AllLessonsCompleted(db, userID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w (%d of %d completed)", ErrLessonsIncomplete, completed, total)
	}
	return nil
}

// CourseExam returns the active exam of a course for a user allowed to take it.
func CourseExam(db *gorm.DB, userID, courseID uint) (*ExamView, error) {
	if err := CheckExamAccess(db, userID, courseID); err != nil {
		return nil, err
	}

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Order("id asc").First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	questions, err := Questions(db, exam.ID)
	if err != nil {
		return nil, err
	}

	view := &ExamView{Exam: exam, Questions: make([]QuestionView, len(questions))}
	view.TotalQuestions = len(questions)
	for i, q := range questions {
		view.Questions[i] = QuestionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
			Order:    q.Order,
			Points:   q.Points,
		}
	}
	return view, nil
}

// Questions loads the questions of an exam, answer keys included.
func Questions(db *gorm.DB, examID uint) ([]courseModels.ExamQuestion, error) {
	var questions []courseModels.ExamQuestion
	err := db.Where("exam_id = ? AND is_deleted = ?", examID, false).
		Order("order_index asc, id asc").Find(&questions).Error
	return questions, err
}

func grace() time.Duration {
	return time.Duration(config.Get().ExamGraceSeconds) * time.Second
}

// Deadline is the end of the attempt as shown to the exam taker. ExpiresAt adds a
// grace period on top for submissions still in flight.
func Deadline(a *courseModels.ExamAttempt) time.Time {
	return a.ExpiresAt.Add(-grace())
}

// StartAttempt opens a timed attempt. A still-running attempt of the same exam is
// returned instead of opening a second one; an overdue one is closed first.
func StartAttempt(db *gorm.DB, userID, examID uint, now time.Time) (*courseModels.ExamAttempt, error) {
	var exam courseModels.Exam
	if err := db.Where("id = ? AND is_active = ? AND is_deleted = ?", examID, true, false).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	if err := CheckExamAccess(db, userID, exam.CourseID); err != nil {
		return nil, err
	}

	var open []courseModels.ExamAttempt
	if err := db.Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, courseModels.AttemptInProgress).
		Order("started_at desc").Find(&open).Error; err != nil {
		return nil, err
	}
	for i := range open {
		if now.Before(open[i].ExpiresAt) {
			return &open[i], nil
		}
		if _, err := finalize(db, &open[i], nil, now, true); err != nil && !errors.Is(err, ErrAttemptClosed) {
			return nil, err
		}
	}

	if exam.MaxAttempts > 0 {
		var used int64
		if err := db.Model(&courseModels.ExamAttempt{}).
			Where("user_id = ? AND exam_id = ?", userID, examID).Count(&used).Error; err != nil {
			return nil, err
		}
		if int(used) >= exam.MaxAttempts {
			return nil, ErrMaxAttemptsReached
		}
	}

	var total int64
	if err := db.Model(&courseModels.ExamQuestion{}).
		Where("exam_id = ? AND is_deleted = ?", examID, false).Count(&total).Error; err != nil {
		return nil, err
	}

	attempt := courseModels.ExamAttempt{
		UserID:         userID,
		ExamID:         examID,
		CourseID:       exam.CourseID,
		Status:         courseModels.AttemptInProgress,
		Answers:        datatypes.NewJSONType(courseModels.AnswerSheet{}),
		TotalQuestions: int(total),
		StartedAt:      now,
		ExpiresAt:      now.Add(time.Duration(exam.Duration)*time.Minute + grace()),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	log.Printf("[EXAM] user=%d started attempt=%d exam=%d expires=%s", userID, attempt.ID, examID, attempt.ExpiresAt.Format(time.RFC3339))
	return &attempt, nil
}

// GetAttempt loads an attempt owned by userID.
func GetAttempt(db *gorm.DB, attemptID, userID uint) (*courseModels.ExamAttempt, error) {
	var attempt courseModels.ExamAttempt
	if err := db.Where("id = ? AND user_id = ?", attemptID, userID).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// SaveAnswers merges answers into a running attempt so it survives a page reload.
func SaveAnswers(db *gorm.DB, attemptID, userID uint, answers courseModels.AnswerSheet, now time.Time) (*courseModels.ExamAttempt, error) {
	attempt, err := GetAttempt(db, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != courseModels.AttemptInProgress {
		return nil, ErrAttemptClosed
	}
	if !now.Before(attempt.ExpiresAt) {
		return nil, ErrAttemptExpired
	}
	if err := checkQuestions(db, attempt.ExamID, answers); err != nil {
		return nil, err
	}

	sheet := attempt.Sheet()
	for qid, a := range answers {
		sheet[qid] = a
	}
	res := db.Model(&courseModels.ExamAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, courseModels.AttemptInProgress).
		Update("answers", datatypes.NewJSONType(sheet))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAttemptClosed
	}
	attempt.Answers = datatypes.NewJSONType(sheet)
	return attempt, nil
}

// SubmitResult is returned to the exam taker after submission.
type SubmitResult struct {
	AttemptID      uint    `json:"attemptId"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Passed         bool    `json:"passed"`
	PassingGrade   float64 `json:"passingGrade"`
	AutoSubmitted  bool    `json:"autoSubmitted"`
	CertificateID  *uint   `json:"certificateId,omitempty"`
}

// SubmitAttempt grades and closes an attempt. It completes exactly once; a second call
// returns ErrAttemptClosed. Answers arriving after the deadline are ignored and the
// attempt is graded on what was saved in time.
func SubmitAttempt(db *gorm.DB, attemptID, userID uint, answers courseModels.AnswerSheet, now time.Time) (*SubmitResult, error) {
	attempt, err := GetAttempt(db, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != courseModels.AttemptInProgress {
		return nil, ErrAttemptClosed
	}
	if err := checkQuestions(db, attempt.ExamID, answers); err != nil {
		return nil, err
	}

	late := !now.Before(attempt.ExpiresAt)
	if late {
		answers = nil
	}
	return finalize(db, attempt, answers, now, late)
}

func finalize(db *gorm.DB, attempt *courseModels.ExamAttempt, answers courseModels.AnswerSheet, now time.Time, auto bool) (*SubmitResult, error) {
	var exam courseModels.Exam
	if err := db.Unscoped().Where("id = ?", attempt.ExamID).First(&exam).Error; err != nil {
		return nil, fmt.Errorf("load exam %d: %w", attempt.ExamID, err)
	}
	questions, err := Questions(db, exam.ID)
	if err != nil {
		return nil, err
	}

	sheet := attempt.Sheet()
	for qid, a := range answers {
		sheet[qid] = a
	}
	graded := Grade(questions, sheet, exam.PassingGrade)

	end := now
	if auto && end.After(attempt.ExpiresAt) {
		end = attempt.ExpiresAt
	}
	taken := int(end.Sub(attempt.StartedAt).Seconds())
	if taken < 0 {
		taken = 0
	}

	res := db.Model(&courseModels.ExamAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, courseModels.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":          courseModels.AttemptSubmitted,
			"answers":         datatypes.NewJSONType(sheet),
			"score":           graded.Score,
			"correct_answers": graded.CorrectAnswers,
			"total_questions": graded.TotalQuestions,
			"passed":          graded.Passed,
			"completed_at":    end,
			"duration":        taken,
			"auto_submitted":  auto,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("submit attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAttemptClosed
	}

	attempt.Status = courseModels.AttemptSubmitted
	attempt.Answers = datatypes.NewJSONType(sheet)
	attempt.Score = graded.Score
	attempt.CorrectAnswers = graded.CorrectAnswers
	attempt.TotalQuestions = graded.TotalQuestions
	attempt.Passed = graded.Passed
	attempt.CompletedAt = &end
	attempt.Duration = taken
	attempt.AutoSubmitted = auto

	log.Printf("[EXAM] attempt=%d user=%d score=%.0f passed=%t auto=%t", attempt.ID, attempt.UserID, graded.Score, graded.Passed, auto)

	out := &SubmitResult{
		AttemptID:      attempt.ID,
		Score:          graded.Score,
		CorrectAnswers: graded.CorrectAnswers,
		TotalQuestions: graded.TotalQuestions,
		Passed:         graded.Passed,
		PassingGrade:   exam.PassingGrade,
		AutoSubmitted:  auto,
	}
	if graded.Passed {
		cert, err := certsvc.IssueForAttempt(db, attempt)
		if err != nil {
			// the attempt stays passed; EnsureCertificate retries on the next read
			log.Printf("[EXAM] attempt=%d certificate issue failed: %v", attempt.ID, err)
		} else {
			out.CertificateID = &cert.ID
		}
	}
	return out, nil
}

// EnsureCertificate issues the certificate of a passed attempt if it is missing.
func EnsureCertificate(db *gorm.DB, attempt *courseModels.ExamAttempt) (*courseModels.Certificate, error) {
	if attempt.Status != courseModels.AttemptSubmitted || !attempt.Passed {
		return nil, nil
	}
	return certsvc.IssueForAttempt(db, attempt)
}

func checkQuestions(db *gorm.DB, examID uint, answers courseModels.AnswerSheet) error {
	if len(answers) == 0 {
		return nil
	}
	var ids []uint
	if err := db.Model(&courseModels.ExamQuestion{}).
		Where("exam_id = ? AND is_deleted = ?", examID, false).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[fmt.Sprint(id)] = true
	}
	for qid := range answers {
		if !known[qid] {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, qid)
		}
	}
	return nil
}

// ExpireAbandoned auto-submits running attempts whose deadline has passed, grading
// whatever answers were saved. It returns the number of attempts closed.
func ExpireAbandoned(db *gorm.DB, now time.Time) (int, error) {
	var overdue []courseModels.ExamAttempt
	if err := db.Where("status = ? AND expires_at <= ?", courseModels.AttemptInProgress, now).
		Limit(500).Find(&overdue).Error; err != nil {
		return 0, err
	}

	closed := 0
	for i := range overdue {
		if _, err := finalize(db, &overdue[i], nil, now, true); err != nil {
			if errors.Is(err, ErrAttemptClosed) {
				continue
			}
			log.Printf("[EXAM] auto-submit attempt=%d failed: %v", overdue[i].ID, err)
			continue
		}
		closed++
	}
	return closed, nil
}
