package courseValidator

import (
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/validators"

	"github.com/gofiber/fiber/v2"
)

// ProgressRequest is the body of POST /api/lessons/:id/progress.
type ProgressRequest struct {
	WatchedDuration int  `json:"watchedDuration" validate:"gte=0"`
	IsCompleted     bool `json:"isCompleted"`
	CourseID        uint `json:"courseId" validate:"required,gt=0"`
}

// LessonProgress validates a lesson progress report.
func LessonProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(ProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("lessonID", lessonID)
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}
