package controllers

import (
	"log"

	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/progresssvc"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateCourse creates a new course
func AdminCreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*validators.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	course := courseModels.Course{Level: courseModels.LevelBeginner}
	applyCourse(&course, reqData)

	if err := db.Create(&course).Error; err != nil {
		return serviceError(c, err, "Failed to create course!")
	}
	// gorm skips false for columns defaulting to true
	if reqData.IsActive != nil && !*reqData.IsActive {
		if err := db.Model(&course).Update("is_active", false).Error; err != nil {
			return serviceError(c, err, "Failed to create course!")
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates the provided fields of a course
func AdminUpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData, ok := c.Locals("validatedCourse").(*validators.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	applyCourse(&course, reqData)
	if err := db.Save(&course).Error; err != nil {
		return serviceError(c, err, "Failed to update course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func applyCourse(course *courseModels.Course, req *validators.CourseRequest) {
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Level != nil && *req.Level != "" {
		course.Level = *req.Level
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = *req.ThumbnailURL
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
}

// AdminDeactivateCourse hides a course from the catalog without deleting it
func AdminDeactivateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	res := database.Database.Db.Model(&courseModels.Course{}).
		Where("id = ? AND is_deleted = ?", courseID, false).
		Update("is_active", false)
	if res.Error != nil {
		return serviceError(c, res.Error, "Failed to deactivate course!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deactivated successfully!", nil)
}

// AdminDeleteCourse soft deletes a course
func AdminDeleteCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	res := database.Database.Db.Model(&courseModels.Course{}).
		Where("id = ? AND is_deleted = ?", courseID, false).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false})
	if res.Error != nil {
		return serviceError(c, res.Error, "Failed to delete course!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminGetAllCourses lists every course, inactive ones included
func AdminGetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	if reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
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

// AdminGetCourseDetails returns a course with all its lessons and exams
func AdminGetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessons []courseModels.Lesson
	db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc, id asc").Find(&lessons)

	var exams []courseModels.Exam
	db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("id asc").Find(&exams)

	var enrolled int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&enrolled)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":      course,
		"lessons":     lessons,
		"exams":       exams,
		"enrollments": enrolled,
	})
}

// refreshCourseLessons keeps the course lesson count and every enrollment rollup in
// line after lessons change.
func refreshCourseLessons(db *gorm.DB, courseID uint) {
	var total int64
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_active = ? AND is_deleted = ?", courseID, true, false).
		Count(&total).Error; err != nil {
		log.Printf("[ADMIN] count lessons of course %d: %v", courseID, err)
		return
	}
	db.Model(&courseModels.Course{}).Where("id = ?", courseID).Update("total_lessons", total)

	var userIDs []uint
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Pluck("user_id", &userIDs)
	for _, uid := range userIDs {
		if _, err := progresssvc.RecalculateEnrollment(db, uid, courseID); err != nil {
			log.Printf("[ADMIN] recalculate enrollment user=%d course=%d: %v", uid, courseID, err)
		}
	}
}
