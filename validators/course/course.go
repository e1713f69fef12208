package courseValidator

import (
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/validators"

	"github.com/gofiber/fiber/v2"
)

type ListRequest struct {
	Page   int    `query:"page" json:"page" validate:"gte=0"`
	Limit  int    `query:"limit" json:"limit" validate:"gte=0,lte=100"`
	Level  string `query:"level" json:"level"`
	Search string `query:"search" json:"search"`
}

// Normalize applies the default page and limit.
func (r *ListRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 20
	}
}

// Offset of the requested page.
func (r *ListRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// IDParam validates a positive integer route param and stores it under localKey.
func IDParam(param, localKey, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validators.ParamID(c, param)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+" ID!", nil)
		}
		c.Locals(localKey, id)
		return c.Next()
	}
}

// CourseID validates the :id course param.
func CourseID() fiber.Handler {
	return IDParam("id", "courseID", "Course")
}

// ExamID validates the :id exam param.
func ExamID() fiber.Handler {
	return IDParam("id", "examID", "Exam")
}

// AttemptID validates the :id attempt param.
func AttemptID() fiber.Handler {
	return IDParam("id", "attemptID", "Attempt")
}

// CertificateID validates the :id certificate param.
func CertificateID() fiber.Handler {
	return IDParam("id", "certificateID", "Certificate")
}

// List validates pagination and filter query params.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData.Normalize()
		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

// LessonID validates the :id lesson param.
func LessonID() fiber.Handler {
	return IDParam("id", "lessonID", "Lesson")
}

// QuestionID validates the :id question param.
func QuestionID() fiber.Handler {
	return IDParam("id", "questionID", "Question")
}

// TemplateID validates the :id template param.
func TemplateID() fiber.Handler {
	return IDParam("id", "templateID", "Template")
}
