package controllers

import (
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/examsvc"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminCreateExam adds the final exam of a course
func AdminCreateExam(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData, ok := c.Locals("validatedExam").(*validators.ExamRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	exam := courseModels.Exam{CourseID: course.ID, Duration: 30, PassingGrade: 60}
	applyExam(&exam, reqData)

	if err := db.Create(&exam).Error; err != nil {
		return serviceError(c, err, "Failed to create exam!")
	}
	if reqData.IsActive != nil && !*reqData.IsActive {
		db.Model(&exam).Update("is_active", false)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created successfully!", exam)
}

// AdminUpdateExam updates the provided fields of an exam
func AdminUpdateExam(c *fiber.Ctx) error {
	examID := c.Locals("examID").(int)
	reqData, ok := c.Locals("validatedExam").(*validators.ExamRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", examID, false).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	applyExam(&exam, reqData)
	if err := db.Save(&exam).Error; err != nil {
		return serviceError(c, err, "Failed to update exam!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated successfully!", exam)
}

func applyExam(exam *courseModels.Exam, req *validators.ExamRequest) {
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.PassingGrade != nil {
		exam.PassingGrade = *req.PassingGrade
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = *req.MaxAttempts
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
}

// AdminDeleteExam soft deletes an exam
func AdminDeleteExam(c *fiber.Ctx) error {
	examID := c.Locals("examID").(int)

	res := database.Database.Db.Model(&courseModels.Exam{}).
		Where("id = ? AND is_deleted = ?", examID, false).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false})
	if res.Error != nil {
		return serviceError(c, res.Error, "Failed to delete exam!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam deleted successfully!", nil)
}

// AdminGetExam returns an exam with its questions, answer keys included
func AdminGetExam(c *fiber.Ctx) error {
	examID := c.Locals("examID").(int)
	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", examID, false).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	questions, err := examsvc.Questions(db, exam.ID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch exam!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully!", fiber.Map{
		"exam":      exam,
		"questions": questions,
	})
}

// AdminCreateQuestion adds a question to an exam
func AdminCreateQuestion(c *fiber.Ctx) error {
	examID := c.Locals("examID").(int)
	reqData, ok := c.Locals("validatedQuestion").(*validators.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", examID, false).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	question := courseModels.ExamQuestion{ExamID: exam.ID, Points: 1}
	if reqData.Order == nil {
		var count int64
		db.Model(&courseModels.ExamQuestion{}).Where("exam_id = ? AND is_deleted = ?", exam.ID, false).Count(&count)
		question.Order = int(count) + 1
	}
	applyQuestion(&question, reqData)

	if err := db.Create(&question).Error; err != nil {
		return serviceError(c, err, "Failed to create question!")
	}
	refreshQuestionCount(db, exam.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

// AdminUpdateQuestion updates the provided fields of a question
func AdminUpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Locals("questionID").(int)
	reqData, ok := c.Locals("validatedQuestion").(*validators.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var question courseModels.ExamQuestion
	if err := db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	applyQuestion(&question, reqData)
	if !validators.KeyMatchesOption(question.Options, question.CorrectAnswer) {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"correct_answer": "correct_answer must be an option letter or one of the options!",
		})
	}
	if err := db.Save(&question).Error; err != nil {
		return serviceError(c, err, "Failed to update question!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

func applyQuestion(q *courseModels.ExamQuestion, req *validators.QuestionRequest) {
	if req.Question != nil {
		q.Question = *req.Question
	}
	if len(req.Options) > 0 {
		q.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
	if req.Points != nil {
		q.Points = *req.Points
	}
}

// AdminDeleteQuestion soft deletes a question
func AdminDeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Locals("questionID").(int)
	db := database.Database.Db

	var question courseModels.ExamQuestion
	if err := db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	if err := db.Model(&question).Update("is_deleted", true).Error; err != nil {
		return serviceError(c, err, "Failed to delete question!")
	}
	refreshQuestionCount(db, question.ExamID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

func refreshQuestionCount(db *gorm.DB, examID uint) {
	var count int64
	db.Model(&courseModels.ExamQuestion{}).Where("exam_id = ? AND is_deleted = ?", examID, false).Count(&count)
	db.Model(&courseModels.Exam{}).Where("id = ?", examID).Update("total_questions", count)
}
