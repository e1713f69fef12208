package courseValidator

import (
	"strings"

	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GenerateRequest is the body of POST /api/certificates/generate.
type GenerateRequest struct {
	CertificateID uint   `json:"certificateId" validate:"required,gt=0"`
	TemplateID    *uint  `json:"templateId" validate:"omitempty,gt=0"`
	CanvasData    string `json:"canvasData" validate:"omitempty,max=15000000"`
	Format        string `json:"format" validate:"omitempty,oneof=pdf png"`
	// CertificateData is what the client rendered with; the server renders from the
	// stored certificate.
	CertificateData map[string]interface{} `json:"certificateData"`
}

// Generate validates a certificate generation request.
func Generate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GenerateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Format = strings.ToLower(strings.TrimSpace(reqData.Format))

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGenerate", reqData)
		return c.Next()
	}
}

// Download validates the certificate id and image id of a download.
func Download() fiber.Handler {
	return func(c *fiber.Ctx) error {
		certificateID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Certificate ID!", nil)
		}
		imageID := strings.TrimSpace(c.Params("imageId"))
		if _, err := uuid.Parse(imageID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Image ID!", nil)
		}

		c.Locals("certificateID", certificateID)
		c.Locals("imageID", imageID)
		return c.Next()
	}
}

// CertificateNumber validates the :number param of the public verify endpoint.
func CertificateNumber() fiber.Handler {
	return func(c *fiber.Ctx) error {
		number := strings.ToUpper(strings.TrimSpace(c.Params("number")))
		if len(number) < 8 || len(number) > 40 || !strings.HasPrefix(number, "HAD-") {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate number!", nil)
		}
		c.Locals("certificateNumber", number)
		return c.Next()
	}
}

// DiplomaLevel stores the :level param.
func DiplomaLevel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		level := strings.ToLower(strings.TrimSpace(c.Params("level")))
		if level == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid diploma level!", nil)
		}
		c.Locals("diplomaLevel", level)
		return c.Next()
	}
}
