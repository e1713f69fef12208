package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt states.
const (
	AttemptInProgress = "IN_PROGRESS"
	AttemptSubmitted  = "SUBMITTED"
)

// Exam is the final exam of a course.
type Exam struct {
	gorm.Model
	CourseID       uint    `json:"course_id" gorm:"index;not null"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Duration       int     `json:"duration" gorm:"default:30"`      // minutes
	PassingGrade   float64 `json:"passing_grade" gorm:"default:60"` // percentage
	TotalQuestions int     `json:"total_questions" gorm:"default:0"`
	MaxAttempts    int     `json:"max_attempts" gorm:"default:0"` // 0 = unlimited
	IsActive       bool    `json:"is_active" gorm:"default:true"`
	IsDeleted      bool    `json:"-" gorm:"default:false"`
}

// ExamQuestion is a multiple choice question. Options are kept in order; CorrectAnswer
// is either the option letter (A, B, ...) or the option value itself.
type ExamQuestion struct {
	gorm.Model
	ExamID        uint                        `json:"exam_id" gorm:"index;not null"`
	Question      string                      `json:"question"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `json:"correct_answer,omitempty"`
	Order         int                         `json:"order" gorm:"column:order_index;default:0"`
	Points        float64                     `json:"points" gorm:"default:1"`
	IsDeleted     bool                        `json:"-" gorm:"default:false"`
}

// ExamAttempt is one timed sitting of an exam. Answers maps question id to answer.
type ExamAttempt struct {
	gorm.Model
	UserID         uint                            `json:"user_id" gorm:"index;not null"`
	ExamID         uint                            `json:"exam_id" gorm:"index;not null"`
	CourseID       uint                            `json:"course_id" gorm:"index;not null"`
	Status         string                          `json:"status" gorm:"default:'IN_PROGRESS';index"`
	Answers        datatypes.JSONType[AnswerSheet] `json:"answers"`
	Score          float64                         `json:"score" gorm:"default:0"`
	CorrectAnswers int                             `json:"correct_answers" gorm:"default:0"`
	TotalQuestions int                             `json:"total_questions" gorm:"default:0"`
	Passed         bool                            `json:"passed" gorm:"default:false"`
	StartedAt      time.Time                       `json:"started_at"`
	ExpiresAt      time.Time                       `json:"expires_at" gorm:"index"`
	CompletedAt    *time.Time                      `json:"completed_at"`
	Duration       int                             `json:"duration" gorm:"default:0"` // seconds actually taken
	AutoSubmitted  bool                            `json:"auto_submitted" gorm:"default:false"`
}

// AnswerSheet maps question id (as string, the JSON wire form) to the chosen answer.
type AnswerSheet map[string]string

// Sheet returns the attempt's answers, never nil.
func (a *ExamAttempt) Sheet() AnswerSheet {
	s := a.Answers.Data()
	if s == nil {
		return AnswerSheet{}
	}
	return s
}
