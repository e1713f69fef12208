package courseRoutes

import (
	controllers "github.com/Umairanwarr/hadith-sub001/controllers/course"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student facing routes
func SetupCourseRoutes(router fiber.Router) {
	// Catalog (public)
	courseGroup := router.Group("/courses")
	courseGroup.Get("/", validators.List(), controllers.GetAllCourses)
	courseGroup.Get("/:id", validators.CourseID(), controllers.GetCourseDetails)
	courseGroup.Get("/:id/lessons", validators.CourseID(), controllers.GetCourseLessons)

	// Enrollment & progress
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetUserProgress)
	router.Get("/enrollments", middleware.JWTMiddleware, validators.List(), controllers.GetEnrollments)
	router.Post("/lessons/:id/progress", middleware.JWTMiddleware, validators.LessonProgress(), controllers.UpdateLessonProgress)

	// Exams
	courseGroup.Get("/:id/exam", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseExam)
	router.Post("/exams/:id/start", middleware.JWTMiddleware, validators.ExamID(), controllers.StartExam)

	attemptGroup := router.Group("/exam-attempts", middleware.JWTMiddleware)
	attemptGroup.Get("/", validators.List(), controllers.GetExamAttempts)
	attemptGroup.Get("/:id", validators.AttemptID(), controllers.GetExamAttempt)
	attemptGroup.Put("/:id/answers", validators.Answers(true), controllers.SaveExamAnswers)
	attemptGroup.Post("/:id/submit", validators.Answers(false), controllers.SubmitExam)

	// Certificates; verify is public and registered before /:id
	certGroup := router.Group("/certificates")
	certGroup.Get("/verify/:number", validators.CertificateNumber(), controllers.VerifyCertificate)
	certGroup.Get("/", middleware.JWTMiddleware, controllers.GetUserCertificates)
	certGroup.Post("/generate", middleware.JWTMiddleware, validators.Generate(), controllers.GenerateCertificate)
	certGroup.Get("/:id", middleware.JWTMiddleware, validators.CertificateID(), controllers.GetCertificate)
	certGroup.Get("/:id/download/:imageId", middleware.JWTMiddleware, validators.Download(), controllers.DownloadCertificate)

	// Diplomas
	diplomaGroup := router.Group("/diplomas")
	diplomaGroup.Get("/", controllers.GetDiplomas)
	diplomaGroup.Get("/:level", validators.DiplomaLevel(), controllers.GetDiploma)
	diplomaGroup.Get("/:level/progress", middleware.JWTMiddleware, validators.DiplomaLevel(), controllers.GetDiplomaProgress)
}
