package courseValidator

import (
	"strings"

	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/validators"

	"github.com/gofiber/fiber/v2"
)

// AnswersRequest is the body of the answer checkpoint and submit endpoints.
type AnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// Answers validates an attempt id and an optional answers map.
func Answers(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attemptID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Attempt ID!", nil)
		}

		reqData := new(AnswersRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		errors := make(map[string]string)
		if required && len(reqData.Answers) == 0 {
			errors["answers"] = "answers is required!"
		}
		clean := make(map[string]string, len(reqData.Answers))
		for qid, ans := range reqData.Answers {
			qid = strings.TrimSpace(qid)
			if _, ok := validators.Atoi(qid); !ok {
				errors["answers."+qid] = "Question ID must be a positive integer!"
				continue
			}
			clean[qid] = strings.TrimSpace(ans)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Answers = clean

		c.Locals("attemptID", attemptID)
		c.Locals("validatedAnswers", reqData)
		return c.Next()
	}
}
