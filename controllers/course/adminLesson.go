package controllers

import (
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateLesson adds a lesson to a course. Duration is in seconds.
func AdminCreateLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData, ok := c.Locals("validatedLesson").(*validators.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	lesson := courseModels.Lesson{CourseID: course.ID, DurationNormalized: true}
	if reqData.Order == nil {
		var last int
		db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).
			Select("COALESCE(MAX(order_index), 0)").Scan(&last)
		lesson.Order = last + 1
	}
	applyLesson(&lesson, reqData)

	if err := db.Create(&lesson).Error; err != nil {
		return serviceError(c, err, "Failed to create lesson!")
	}
	if reqData.IsActive != nil && !*reqData.IsActive {
		db.Model(&lesson).Update("is_active", false)
	}
	refreshCourseLessons(db, course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates the provided fields of a lesson
func AdminUpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)
	reqData, ok := c.Locals("validatedLesson").(*validators.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	applyLesson(&lesson, reqData)
	if err := db.Save(&lesson).Error; err != nil {
		return serviceError(c, err, "Failed to update lesson!")
	}
	refreshCourseLessons(db, lesson.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func applyLesson(lesson *courseModels.Lesson, req *validators.LessonRequest) {
	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = *req.Description
	}
	if req.VideoURL != nil {
		lesson.VideoURL = *req.VideoURL
		lesson.VideoProvider = courseModels.DetectProvider(*req.VideoURL)
	}
	if req.Duration != nil {
		lesson.Duration = *req.Duration
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.IsActive != nil {
		lesson.IsActive = *req.IsActive
	}
}

// AdminDeleteLesson soft deletes a lesson
func AdminDeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)
	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if err := db.Model(&lesson).Updates(map[string]interface{}{"is_deleted": true, "is_active": false}).Error; err != nil {
		return serviceError(c, err, "Failed to delete lesson!")
	}
	refreshCourseLessons(db, lesson.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
