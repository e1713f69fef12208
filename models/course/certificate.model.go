package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Certificate is issued for a passing exam attempt.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          uint      `json:"course_id" gorm:"index;not null"`
	ExamAttemptID     uint      `json:"exam_attempt_id" gorm:"uniqueIndex;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex;not null"`
	Grade             float64   `json:"grade"`
	StudentName       string    `json:"student_name"`
	CourseName        string    `json:"course_name"`
	DiplomaTemplateID *uint     `json:"diploma_template_id"`
	IssuedAt          time.Time `json:"issued_at"`
	IsValid           bool      `json:"is_valid" gorm:"default:true"`
}

// CertificateImage is a rendered artifact of a certificate.
type CertificateImage struct {
	gorm.Model
	CertificateID uint   `json:"certificate_id" gorm:"index;not null"`
	TemplateID    *uint  `json:"template_id"`
	ImageID       string `json:"image_id" gorm:"uniqueIndex;not null"`
	Format        string `json:"format"` // pdf, png
	Path          string `json:"-"`
}

// DiplomaTemplate is the visual configuration used to render certificates.
type DiplomaTemplate struct {
	gorm.Model
	Name          string                             `json:"name"`
	Level         string                             `json:"level" gorm:"index"`
	BackgroundURL string                             `json:"background_url"`
	Layout        datatypes.JSONType[TemplateLayout] `json:"layout"`
	IsDefault     bool                               `json:"is_default" gorm:"default:false"`
	IsActive      bool                               `json:"is_active" gorm:"default:true"`
	IsDeleted     bool                               `json:"-" gorm:"default:false"`
}

// TemplateLayout positions the text fields of a certificate. Texts may contain the
// placeholders {{student}}, {{course}}, {{grade}}, {{date}} and {{number}}.
type TemplateLayout struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Background string          `json:"background"` // hex colour, used when no image
	Border     string          `json:"border"`
	Font       string          `json:"font"` // TrueType/OpenType file; empty uses CERTIFICATE_FONT
	Fields     []TemplateField `json:"fields"`
}

type TemplateField struct {
	Text  string `json:"text"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Scale int    `json:"scale"`
	Color string `json:"color"`
	Align string `json:"align"` // left, center, right
}
