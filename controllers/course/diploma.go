package controllers

import (
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/services/diplomasvc"

	"github.com/gofiber/fiber/v2"
)

func GetDiplomas(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Diplomas fetched successfully!", diplomasvc.List())
}

// GetDiploma returns one level with its courses
func GetDiploma(c *fiber.Ctx) error {
	level, courses, err := diplomasvc.Courses(database.Database.Db, c.Locals("diplomaLevel").(string))
	if err != nil {
		return serviceError(c, err, "Failed to fetch diploma!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Diploma fetched successfully!", fiber.Map{
		"level":   level,
		"courses": courses,
	})
}

func GetDiplomaProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	progress, err := diplomasvc.UserProgress(database.Database.Db, userID, c.Locals("diplomaLevel").(string))
	if err != nil {
		return serviceError(c, err, "Failed to fetch diploma progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Diploma progress fetched successfully!", progress)
}
