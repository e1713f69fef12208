package controllers

import (
	"time"

	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/certsvc"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// AdminGetCourseEnrollments lists the students enrolled in a course with their progress
func AdminGetCourseEnrollments(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", courseID, false)

	var total int64
	db.Count(&total)

	type EnrollmentWithUser struct {
		courseModels.Enrollment
		UserName  string `json:"user_name"`
		UserEmail string `json:"user_email"`
	}

	var result []EnrollmentWithUser
	if err := db.Select("enrollments.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = enrollments.user_id").
		Order("enrollments.created_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Scan(&result).Error; err != nil {
		return serviceError(c, err, "Failed to fetch enrollments!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// AdminListCertificates lists issued certificates, newest first
func AdminListCertificates(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Certificate{})
	if reqData.Search != "" {
		like := "%" + reqData.Search + "%"
		db = db.Where("certificate_number LIKE ? OR student_name LIKE ? OR course_name LIKE ?", like, like, like)
	}

	var total int64
	db.Count(&total)

	var certificates []courseModels.Certificate
	if err := db.Order("issued_at desc").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&certificates).Error; err != nil {
		return serviceError(c, err, "Failed to fetch certificates!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// AdminRevokeCertificate invalidates a certificate
func AdminRevokeCertificate(c *fiber.Ctx) error {
	certificateID := c.Locals("certificateID").(int)

	cert, err := certsvc.Revoke(database.Database.Db, uint(certificateID))
	if err != nil {
		return serviceError(c, err, "Failed to revoke certificate!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked successfully!", cert)
}

// DashboardStats are the admin dashboard counters.
type DashboardStats struct {
	TotalStudents        int64   `json:"total_students"`
	TotalCourses         int64   `json:"total_courses"`
	ActiveCourses        int64   `json:"active_courses"`
	TotalEnrollments     int64   `json:"total_enrollments"`
	EnrollmentsToday     int64   `json:"enrollments_today"`
	EnrollmentsThisWeek  int64   `json:"enrollments_this_week"`
	EnrollmentsThisMonth int64   `json:"enrollments_this_month"`
	CompletedCourses     int64   `json:"completed_courses"`
	ExamAttempts         int64   `json:"exam_attempts"`
	PassedAttempts       int64   `json:"passed_attempts"`
	PassRate             float64 `json:"pass_rate"`
	CertificatesIssued   int64   `json:"certificates_issued"`
	CertificatesMonth    int64   `json:"certificates_this_month"`
}

// CollectDashboardStats counts platform activity relative to at.
func CollectDashboardStats(db *gorm.DB, at time.Time) (*DashboardStats, error) {
	n := now.With(at)
	s := &DashboardStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.TotalStudents, db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", models.RoleStudent, false)},
		{&s.TotalCourses, db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)},
		{&s.ActiveCourses, db.Model(&courseModels.Course{}).Where("is_active = ? AND is_deleted = ?", true, false)},
		{&s.TotalEnrollments, db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false)},
		{&s.EnrollmentsToday, db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND enrolled_at >= ?", false, n.BeginningOfDay())},
		{&s.EnrollmentsThisWeek, db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND enrolled_at >= ?", false, n.BeginningOfWeek())},
		{&s.EnrollmentsThisMonth, db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND enrolled_at >= ?", false, n.BeginningOfMonth())},
		{&s.CompletedCourses, db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND completed_at IS NOT NULL", false)},
		{&s.ExamAttempts, db.Model(&courseModels.ExamAttempt{}).Where("status = ?", courseModels.AttemptSubmitted)},
		{&s.PassedAttempts, db.Model(&courseModels.ExamAttempt{}).Where("status = ? AND passed = ?", courseModels.AttemptSubmitted, true)},
		{&s.CertificatesIssued, db.Model(&courseModels.Certificate{}).Where("is_valid = ?", true)},
		{&s.CertificatesMonth, db.Model(&courseModels.Certificate{}).Where("is_valid = ? AND issued_at >= ?", true, n.BeginningOfMonth())},
	}
	for _, q := range counts {
		if err := q.query.Count(q.dst).Error; err != nil {
			return nil, err
		}
	}

	if s.ExamAttempts > 0 {
		s.PassRate = float64(s.PassedAttempts*10000/s.ExamAttempts) / 100
	}
	return s, nil
}

// AdminDashboardStats returns platform counters for the dashboard
func AdminDashboardStats(c *fiber.Ctx) error {
	stats, err := CollectDashboardStats(database.Database.Db, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to fetch dashboard stats!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", stats)
}
