package controllers

import (
	"time"

	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/examsvc"
	validators "github.com/Umairanwarr/hadith-sub001/validators/course"

	"github.com/gofiber/fiber/v2"
)

// GetCourseExam returns the course exam without answer keys. Students with lessons
// left get 403.
func GetCourseExam(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	courseID := c.Locals("courseID").(int)

	view, err := examsvc.CourseExam(database.Database.Db, userID, uint(courseID))
	if err != nil {
		return serviceError(c, err, "Failed to fetch exam!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully!", view)
}

// attemptView is the exam taker's view of an attempt: timing is server-authoritative.
func attemptView(a *courseModels.ExamAttempt, now time.Time) fiber.Map {
	deadline := examsvc.Deadline(a)
	remaining := int(deadline.Sub(now).Seconds())
	if remaining < 0 || a.Status != courseModels.AttemptInProgress {
		remaining = 0
	}
	return fiber.Map{
		"id":               a.ID,
		"examId":           a.ExamID,
		"courseId":         a.CourseID,
		"status":           a.Status,
		"answers":          a.Sheet(),
		"startedAt":        a.StartedAt,
		"expiresAt":        deadline,
		"duration":         int(deadline.Sub(a.StartedAt).Seconds()),
		"remainingSeconds": remaining,
		"score":            a.Score,
		"correctAnswers":   a.CorrectAnswers,
		"totalQuestions":   a.TotalQuestions,
		"passed":           a.Passed,
		"completedAt":      a.CompletedAt,
		"autoSubmitted":    a.AutoSubmitted,
	}
}

// StartExam opens a timed attempt, or resumes the one still running
func StartExam(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	examID := c.Locals("examID").(int)

	now := time.Now()
	attempt, err := examsvc.StartAttempt(database.Database.Db, userID, uint(examID), now)
	if err != nil {
		return serviceError(c, err, "Failed to start exam!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam started!", attemptView(attempt, now))
}

// SaveExamAnswers checkpoints answers of a running attempt
func SaveExamAnswers(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	attemptID := c.Locals("attemptID").(int)
	reqData := c.Locals("validatedAnswers").(*validators.AnswersRequest)

	now := time.Now()
	attempt, err := examsvc.SaveAnswers(database.Database.Db, uint(attemptID), userID, reqData.Answers, now)
	if err != nil {
		return serviceError(c, err, "Failed to save answers!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answers saved!", attemptView(attempt, now))
}

// SubmitExam grades an attempt. A second submission gets 409.
func SubmitExam(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	attemptID := c.Locals("attemptID").(int)
	reqData := c.Locals("validatedAnswers").(*validators.AnswersRequest)

	result, err := examsvc.SubmitAttempt(database.Database.Db, uint(attemptID), userID, reqData.Answers, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to submit exam!")
	}

	msg := "Exam submitted. Unfortunately you did not pass."
	if result.Passed {
		msg = "Congratulations, you passed the exam!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, result)
}

// GetExamAttempts lists the user's attempts, newest first
func GetExamAttempts(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	reqData, ok := c.Locals("validatedList").(*validators.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&courseModels.ExamAttempt{}).Where("user_id = ?", userID)
	if courseID := c.QueryInt("courseId"); courseID > 0 {
		db = db.Where("course_id = ?", courseID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return serviceError(c, err, "Failed to fetch attempts!")
	}

	var attempts []courseModels.ExamAttempt
	if err := db.Order("started_at desc").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&attempts).Error; err != nil {
		return serviceError(c, err, "Failed to fetch attempts!")
	}

	now := time.Now()
	out := make([]fiber.Map, len(attempts))
	for i := range attempts {
		out[i] = attemptView(&attempts[i], now)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts": out,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// GetExamAttempt returns one attempt; a passed attempt whose certificate is missing
// gets it issued here.
func GetExamAttempt(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	attemptID := c.Locals("attemptID").(int)
	db := database.Database.Db

	attempt, err := examsvc.GetAttempt(db, uint(attemptID), userID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch attempt!")
	}

	view := attemptView(attempt, time.Now())
	if cert, err := examsvc.EnsureCertificate(db, attempt); err != nil {
		return serviceError(c, err, "Failed to fetch attempt!")
	} else if cert != nil {
		view["certificateId"] = cert.ID
		view["certificateNumber"] = cert.CertificateNumber
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt fetched successfully!", view)
}
