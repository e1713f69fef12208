package userController

import (
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the authenticated user with a learning summary
func GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var permissions []string
	db.Model(&models.Permission{}).Where("user_id = ? AND is_deleted = ?", userID, false).Pluck("permission", &permissions)

	var enrollments, completed, certificates int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND is_deleted = ?", userID, false).Count(&enrollments)
	db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND is_deleted = ? AND completed_at IS NOT NULL", userID, false).Count(&completed)
	db.Model(&courseModels.Certificate{}).Where("user_id = ? AND is_valid = ?", userID, true).Count(&certificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", fiber.Map{
		"user":        user,
		"permissions": permissions,
		"summary": fiber.Map{
			"enrollments":      enrollments,
			"completedCourses": completed,
			"certificates":     certificates,
		},
	})
}

// LoginHistoryList lists the user's logins, newest first
func LoginHistoryList(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userID, false)

	var total int64
	db.Count(&total)

	var history []models.LoginTracking
	if err := db.Order("timestamp desc").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&history).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}
