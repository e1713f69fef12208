// Package certsvc issues certificates for passed exams and renders their artifacts.
package certsvc

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrAttemptNotPassed    = errors.New("exam attempt did not pass")
	ErrNoTemplate          = errors.New("no diploma template available")
	ErrImageNotFound       = errors.New("certificate image not found")
	ErrCertificateRevoked  = errors.New("certificate has been revoked")
)

// NewCertificateNumber returns a fresh certificate number, e.g. HAD-2026-1F3A9C0B.
func NewCertificateNumber(issued time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("HAD-%d-%s", issued.Year(), strings.ToUpper(id[:8]))
}

// IssueForAttempt creates the certificate of a passed attempt. Calling it again for
// the same attempt returns the existing certificate.
func IssueForAttempt(db *gorm.DB, attempt *courseModels.ExamAttempt) (*courseModels.Certificate, error) {
	if !attempt.Passed {
		return nil, ErrAttemptNotPassed
	}

	var existing courseModels.Certificate
	err := db.Where("exam_attempt_id = ?", attempt.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	if err := db.Unscoped().Where("id = ?", attempt.UserID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("load user %d: %w", attempt.UserID, err)
	}
	var course courseModels.Course
	if err := db.Unscoped().Where("id = ?", attempt.CourseID).First(&course).Error; err != nil {
		return nil, fmt.Errorf("load course %d: %w", attempt.CourseID, err)
	}

	now := time.Now()
	cert := courseModels.Certificate{
		UserID:        attempt.UserID,
		CourseID:      attempt.CourseID,
		ExamAttemptID: attempt.ID,
		Grade:         attempt.Score,
		StudentName:   user.Name,
		CourseName:    course.Title,
		IssuedAt:      now,
		IsValid:       true,
	}
	if tpl, err := DefaultTemplate(db, course.Level); err == nil {
		cert.DiplomaTemplateID = &tpl.ID
	}

	// a number collision is astronomically rare; a duplicate attempt id means another
	// request issued the certificate first
	for try := 0; try < 3; try++ {
		cert.ID = 0
		cert.CertificateNumber = NewCertificateNumber(now)
		if err = db.Create(&cert).Error; err == nil {
			break
		}
		if db.Where("exam_attempt_id = ?", attempt.ID).First(&existing).Error == nil {
			return &existing, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	log.Printf("[CERT] issued %s to user=%d course=%d grade=%.0f", cert.CertificateNumber, cert.UserID, cert.CourseID, cert.Grade)
	go utils.SendCertificateEmail(user.Email, user.Name, course.Title, cert.CertificateNumber)

	return &cert, nil
}

// DefaultTemplate picks the active default template for a course level, falling back
// to any active default template.
func DefaultTemplate(db *gorm.DB, level string) (*courseModels.DiplomaTemplate, error) {
	var tpl courseModels.DiplomaTemplate
	base := db.Where("is_active = ? AND is_deleted = ? AND is_default = ?", true, false, true)
	if level != "" {
		if err := base.Session(&gorm.Session{}).Where("level = ?", level).Order("id asc").First(&tpl).Error; err == nil {
			return &tpl, nil
		}
	}
	if err := base.Session(&gorm.Session{}).Order("id asc").First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTemplate
		}
		return nil, err
	}
	return &tpl, nil
}

// Get loads a certificate owned by userID.
func Get(db *gorm.DB, certificateID, userID uint) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	if err := db.Where("id = ? AND user_id = ?", certificateID, userID).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Verify looks a certificate up by its public number.
func Verify(db *gorm.DB, number string) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	if err := db.Where("certificate_number = ?", strings.ToUpper(strings.TrimSpace(number))).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Revoke marks a certificate invalid.
func Revoke(db *gorm.DB, certificateID uint) (*courseModels.Certificate, error) {
	var cert courseModels.Certificate
	if err := db.Where("id = ?", certificateID).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	if err := db.Model(&cert).Update("is_valid", false).Error; err != nil {
		return nil, err
	}
	cert.IsValid = false
	log.Printf("[CERT] revoked %s", cert.CertificateNumber)
	return &cert, nil
}

// DataFor builds the render data of a certificate.
func DataFor(cert *courseModels.Certificate) Data {
	return Data{
		StudentName: cert.StudentName,
		CourseName:  cert.CourseName,
		Grade:       cert.Grade,
		IssuedAt:    cert.IssuedAt,
		Number:      cert.CertificateNumber,
	}
}
