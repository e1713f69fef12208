package controllers

import (
	"strings"

	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists active courses with optional level and search filters
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_active = ? AND is_deleted = ?", true, false)
	if reqData.Level != "" {
		db = db.Where("level = ?", strings.ToUpper(reqData.Level))
	}
	if s := strings.TrimSpace(reqData.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(instructor) LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return serviceError(c, err, "Failed to fetch courses!")
	}

	var courses []courseModels.Course
	if err := db.Order("created_at desc").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&courses).Error; err != nil {
		return serviceError(c, err, "Failed to fetch courses!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// GetCourseDetails returns a course with its lesson count and exam summary
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessonCount int64
	db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).Count(&lessonCount)

	var exam *fiber.Map
	var e courseModels.Exam
	if err := db.Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).First(&e).Error; err == nil {
		exam = &fiber.Map{
			"id":              e.ID,
			"title":           e.Title,
			"duration":        e.Duration,
			"passing_grade":   e.PassingGrade,
			"total_questions": e.TotalQuestions,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":       course,
		"lesson_count": lessonCount,
		"exam":         exam,
	})
}

// GetCourseLessons lists the active lessons of a course in order
func GetCourseLessons(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return serviceError(c, err, "Failed to fetch lessons!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}
