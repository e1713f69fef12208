package courseValidator

import (
	"strings"

	"github.com/Umairanwarr/hadith-sub001/middleware"
	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
	"github.com/Umairanwarr/hadith-sub001/services/diplomasvc"
	"github.com/Umairanwarr/hadith-sub001/validators"

	"github.com/gofiber/fiber/v2"
)

type CourseRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Instructor   *string `json:"instructor" validate:"omitempty,max=120"`
	Level        *string `json:"level"`
	Duration     *int64  `json:"duration" validate:"omitempty,gte=0"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	IsActive     *bool   `json:"is_active"`
}

type LessonRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	VideoURL    *string `json:"video_url" validate:"omitempty,url"`
	Duration    *int    `json:"duration" validate:"omitempty,gte=0"` // seconds
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

type ExamRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=5000"`
	Duration     *int     `json:"duration" validate:"omitempty,gte=1,lte=600"` // minutes
	PassingGrade *float64 `json:"passing_grade" validate:"omitempty,gte=0,lte=100"`
	MaxAttempts  *int     `json:"max_attempts" validate:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active"`
}

type QuestionRequest struct {
	Question      *string  `json:"question" validate:"omitempty,min=3"`
	Options       []string `json:"options" validate:"omitempty,min=2,max=10,dive,required"`
	CorrectAnswer *string  `json:"correct_answer"`
	Order         *int     `json:"order" validate:"omitempty,gte=0"`
	Points        *float64 `json:"points" validate:"omitempty,gt=0"`
}

type TemplateRequest struct {
	Name          *string                      `json:"name" validate:"omitempty,min=3,max=120"`
	Level         *string                      `json:"level"`
	BackgroundURL *string                      `json:"background_url"`
	Layout        *courseModels.TemplateLayout `json:"layout"`
	IsDefault     *bool                        `json:"is_default"`
	IsActive      *bool                        `json:"is_active"`
}

// CreateCourse validates a new course. Title is required.
func CreateCourse() fiber.Handler {
	return courseBody(true)
}

// UpdateCourse validates a partial course update.
func UpdateCourse() fiber.Handler {
	return courseBody(false)
}

func courseBody(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Title, reqData.Description, reqData.Instructor, reqData.ThumbnailURL)

		errors := validators.Struct(reqData)
		if create && empty(reqData.Title) {
			errors["title"] = "title is required!"
		}
		if reqData.Level != nil {
			*reqData.Level = strings.ToUpper(strings.TrimSpace(*reqData.Level))
			if _, ok := diplomasvc.LevelFor(*reqData.Level); !ok {
				errors["level"] = "level is not a known course level!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// CreateLesson validates a new lesson. Title and video URL are required.
func CreateLesson() fiber.Handler {
	return lessonBody(true)
}

// UpdateLesson validates a partial lesson update.
func UpdateLesson() fiber.Handler {
	return lessonBody(false)
}

func lessonBody(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Title, reqData.Description, reqData.VideoURL)

		errors := validators.Struct(reqData)
		if create {
			if empty(reqData.Title) {
				errors["title"] = "title is required!"
			}
			if empty(reqData.VideoURL) {
				errors["video_url"] = "video_url is required!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// CreateExam validates a new exam. Title is required.
func CreateExam() fiber.Handler {
	return examBody(true)
}

// UpdateExam validates a partial exam update.
func UpdateExam() fiber.Handler {
	return examBody(false)
}

func examBody(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ExamRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Title, reqData.Description)

		errors := validators.Struct(reqData)
		if create && empty(reqData.Title) {
			errors["title"] = "title is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExam", reqData)
		return c.Next()
	}
}

// CreateQuestion validates a new question: text, options and a key that names one of
// the options.
func CreateQuestion() fiber.Handler {
	return questionBody(true)
}

// UpdateQuestion validates a partial question update.
func UpdateQuestion() fiber.Handler {
	return questionBody(false)
}

func questionBody(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(QuestionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Question, reqData.CorrectAnswer)
		for i := range reqData.Options {
			reqData.Options[i] = strings.TrimSpace(reqData.Options[i])
		}

		errors := validators.Struct(reqData)
		if create {
			if empty(reqData.Question) {
				errors["question"] = "question is required!"
			}
			if len(reqData.Options) == 0 {
				errors["options"] = "options is required!"
			}
			if empty(reqData.CorrectAnswer) {
				errors["correct_answer"] = "correct_answer is required!"
			}
		}
		// the key can only be checked against options sent in the same request
		if len(reqData.Options) > 0 && !empty(reqData.CorrectAnswer) && !KeyMatchesOption(reqData.Options, *reqData.CorrectAnswer) {
			errors["correct_answer"] = "correct_answer must be an option letter or one of the options!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// KeyMatchesOption reports whether key is an option letter in range or equals an option.
func KeyMatchesOption(options []string, key string) bool {
	key = strings.TrimSpace(key)
	if len(key) == 1 {
		idx := int(strings.ToUpper(key)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return true
		}
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), key) {
			return true
		}
	}
	return false
}

// CreateTemplate validates a new diploma template. Name is required.
func CreateTemplate() fiber.Handler {
	return templateBody(true)
}

// UpdateTemplate validates a partial template update.
func UpdateTemplate() fiber.Handler {
	return templateBody(false)
}

func templateBody(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TemplateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Name, reqData.BackgroundURL)

		errors := validators.Struct(reqData)
		if create && empty(reqData.Name) {
			errors["name"] = "name is required!"
		}
		if reqData.Level != nil {
			*reqData.Level = strings.ToUpper(strings.TrimSpace(*reqData.Level))
			if _, ok := diplomasvc.LevelFor(*reqData.Level); *reqData.Level != "" && !ok {
				errors["level"] = "level is not a known course level!"
			}
		}
		if l := reqData.Layout; l != nil {
			if l.Width < 0 || l.Height < 0 || l.Width > 4000 || l.Height > 4000 {
				errors["layout"] = "layout width and height must be between 0 and 4000!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTemplate", reqData)
		return c.Next()
	}
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func empty(s *string) bool {
	return s == nil || *s == ""
}
