package courseRoutes

import (
	controllers "github.com/Umairanwarr/hadith-sub001/controllers/course"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/models"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin management routes
func SetupAdminCourseRoutes(router fiber.Router) {
	adminGroup := router.Group("/admin", middleware.JWTMiddleware)

	courses := middleware.CheckPermissionMiddleware(models.PermManageCourses)
	exams := middleware.CheckPermissionMiddleware(models.PermManageExams)
	certs := middleware.CheckPermissionMiddleware(models.PermManageCertificates)
	templates := middleware.CheckPermissionMiddleware(models.PermManageTemplates)
	dashboard := middleware.CheckPermissionMiddleware(models.PermViewDashboard)

	// Course CRUD
	adminGroup.Get("/courses", courses, validators.List(), controllers.AdminGetAllCourses)
	adminGroup.Post("/courses", courses, validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Get("/courses/:id", courses, validators.CourseID(), controllers.AdminGetCourseDetails)
	adminGroup.Put("/courses/:id", courses, validators.CourseID(), validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Post("/courses/:id/deactivate", courses, validators.CourseID(), controllers.AdminDeactivateCourse)
	adminGroup.Delete("/courses/:id", courses, validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Get("/courses/:id/enrollments", courses, validators.CourseID(), validators.List(), controllers.AdminGetCourseEnrollments)

	// Lessons
	adminGroup.Post("/courses/:id/lessons", courses, validators.CourseID(), validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Put("/lessons/:id", courses, validators.LessonID(), validators.UpdateLesson(), controllers.AdminUpdateLesson)
	adminGroup.Delete("/lessons/:id", courses, validators.LessonID(), controllers.AdminDeleteLesson)

	// Exams & questions
	adminGroup.Post("/courses/:id/exams", exams, validators.CourseID(), validators.CreateExam(), controllers.AdminCreateExam)
	adminGroup.Get("/exams/:id", exams, validators.ExamID(), controllers.AdminGetExam)
	adminGroup.Put("/exams/:id", exams, validators.ExamID(), validators.UpdateExam(), controllers.AdminUpdateExam)
	adminGroup.Delete("/exams/:id", exams, validators.ExamID(), controllers.AdminDeleteExam)
	adminGroup.Post("/exams/:id/questions", exams, validators.ExamID(), validators.CreateQuestion(), controllers.AdminCreateQuestion)
	adminGroup.Put("/questions/:id", exams, validators.QuestionID(), validators.UpdateQuestion(), controllers.AdminUpdateQuestion)
	adminGroup.Delete("/questions/:id", exams, validators.QuestionID(), controllers.AdminDeleteQuestion)

	// Diploma templates
	adminGroup.Get("/templates", templates, controllers.AdminListTemplates)
	adminGroup.Post("/templates", templates, validators.CreateTemplate(), controllers.AdminCreateTemplate)
	adminGroup.Put("/templates/:id", templates, validators.TemplateID(), validators.UpdateTemplate(), controllers.AdminUpdateTemplate)
	adminGroup.Delete("/templates/:id", templates, validators.TemplateID(), controllers.AdminDeleteTemplate)
	adminGroup.Post("/templates/:id/background", templates, validators.TemplateID(), controllers.AdminUploadTemplateBackground)
	adminGroup.Get("/templates/:id/preview", templates, validators.TemplateID(), controllers.AdminPreviewTemplate)

	// Certificates
	adminGroup.Get("/certificates", certs, validators.List(), controllers.AdminListCertificates)
	adminGroup.Post("/certificates/:id/revoke", certs, validators.CertificateID(), controllers.AdminRevokeCertificate)

	// Dashboard
	adminGroup.Get("/dashboard/stats", dashboard, controllers.AdminDashboardStats)
}
