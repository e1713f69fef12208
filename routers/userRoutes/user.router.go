package userProfileRoutes

import (
	userProfileController "github.com/Umairanwarr/hadith-sub001/controllers/userControllers"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseValidator "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(router fiber.Router) {
	userGroup := router.Group("/user")

	userGroup.Get("/profile", middleware.JWTMiddleware, userProfileController.GetProfile)
	userGroup.Get("/login/history", middleware.JWTMiddleware, courseValidator.List(), userProfileController.LoginHistoryList)
}
