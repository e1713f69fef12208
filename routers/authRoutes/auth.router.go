package authRoutes

import (
	authControllers "github.com/Umairanwarr/hadith-sub001/controllers/auth"
	userProfileController "github.com/Umairanwarr/hadith-sub001/controllers/userControllers"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	authValidators "github.com/Umairanwarr/hadith-sub001/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(router fiber.Router) {
	authGroup := router.Group("/auth")

	authGroup.Post("/register", middleware.LoginRateLimiter(), authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", middleware.LoginRateLimiter(), authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", authControllers.Logout)
	authGroup.Get("/me", middleware.JWTMiddleware, userProfileController.GetProfile)
}
