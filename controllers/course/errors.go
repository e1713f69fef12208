package controllers

import (
	"errors"
	"log"

	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/services/certsvc"
	"github.com/Umairanwarr/hadith-sub001/services/diplomasvc"
	"github.com/Umairanwarr/hadith-sub001/services/examsvc"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// serviceError maps a service error to a response; unknown errors are logged and
// answered with fallback.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, progresssvc.ErrLessonNotFound),
		errors.Is(err, examsvc.ErrExamNotFound),
		errors.Is(err, examsvc.ErrAttemptNotFound),
		errors.Is(err, certsvc.ErrCertificateNotFound),
		errors.Is(err, certsvc.ErrImageNotFound),
		errors.Is(err, diplomasvc.ErrLevelNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, progresssvc.ErrNotEnrolled),
		examsvc.IsAccessDenied(err):
		status = fiber.StatusForbidden
	case errors.Is(err, examsvc.ErrAttemptClosed),
		errors.Is(err, examsvc.ErrAttemptExpired),
		errors.Is(err, certsvc.ErrCertificateRevoked):
		status = fiber.StatusConflict
	case errors.Is(err, progresssvc.ErrCourseMismatch),
		errors.Is(err, examsvc.ErrUnknownQuestion),
		errors.Is(err, certsvc.ErrInvalidCanvas),
		errors.Is(err, certsvc.ErrNoTemplate),
		errors.Is(err, certsvc.ErrAttemptNotPassed):
		status = fiber.StatusUnprocessableEntity
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("[API] %s %s: %v", c.Method(), c.Path(), err)
		return middleware.JsonResponse(c, status, false, fallback, nil)
	}
	return middleware.JsonResponse(c, status, false, err.Error(), nil)
}

func unauthorized(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
}
