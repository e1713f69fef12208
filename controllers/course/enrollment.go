package controllers

import (
	"time"

	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	"github.com/Umairanwarr/hadith-sub001/models"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"
	"github.com/Umairanwarr/hadith-sub001/utils"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := db.Where("id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
	}

	enrollment := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   course.ID,
		EnrolledAt: time.Now(),
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if res.Error != nil {
		return serviceError(c, res.Error, "Failed to enroll in course!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	}

	// lessons may already exist, so the rollup starts from the real lesson count
	updated, err := progresssvc.RecalculateEnrollment(db, userID, course.ID)
	if err != nil {
		return serviceError(c, err, "Failed to enroll in course!")
	}

	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", updated)
}

func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND is_deleted = ?", userID, false)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return serviceError(c, err, "Failed to fetch enrollments!")
	}

	var enrollments []courseModels.Enrollment
	if err := db.Preload("Course").Order("created_at desc").Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&enrollments).Error; err != nil {
		return serviceError(c, err, "Failed to fetch enrollments!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// GetUserProgress returns per-lesson progress of a course, with unlock state
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID := c.Locals("courseID").(int)

	progress, err := progresssvc.GetCourseProgress(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return serviceError(c, err, "Failed to fetch progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", progress)
}

// UpdateLessonProgress stores a player progress tick
func UpdateLessonProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	lessonID := c.Locals("lessonID").(int)
	reqData, ok := c.Locals("validatedProgress").(*validators.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	progress, enrollment, err := progresssvc.Upsert(database.Database.Db, progresssvc.Report{
		UserID:          userID,
		LessonID:        uint(lessonID),
		CourseID:        reqData.CourseID,
		WatchedDuration: reqData.WatchedDuration,
		ClaimedComplete: reqData.IsCompleted,
	})
	if err != nil {
		return serviceError(c, err, "Failed to update progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", fiber.Map{
		"progress":   progress,
		"enrollment": enrollment,
	})
}
