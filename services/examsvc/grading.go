package examsvc

import (
	"math"
	"strconv"
	"strings"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"
)

// GradeResult is the outcome of grading an answer sheet.
type GradeResult struct {
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	PointsEarned   float64 `json:"pointsEarned"`
	TotalPoints    float64 `json:"totalPoints"`
	Passed         bool    `json:"passed"`
}

// Grade scores answers against the stored keys. Score is pointsEarned / totalPoints
// as a rounded percentage; passed means score >= passingGrade. Unanswered questions
// earn nothing. Stored points are used as-is; a question with no positive points carries
// no weight.
func Grade(questions []courseModels.ExamQuestion, answers courseModels.AnswerSheet, passingGrade float64) GradeResult {
	res := GradeResult{TotalQuestions: len(questions)}

	for _, q := range questions {
		points := max(q.Points, 0)
		res.TotalPoints += points

		given, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if !ok {
			continue
		}
		if IsCorrect(q, given) {
			res.CorrectAnswers++
			res.PointsEarned += points
		}
	}

	if res.TotalPoints > 0 {
		res.Score = math.Round(res.PointsEarned / res.TotalPoints * 100)
	}
	res.Passed = res.Score >= passingGrade
	return res
}

// IsCorrect compares an answer with the question key. Keys and answers may be given
// either as option letters (A, B, ...) or as the option text.
func IsCorrect(q courseModels.ExamQuestion, given string) bool {
	given = normalize(given)
	if given == "" {
		return false
	}
	key := normalize(q.CorrectAnswer)
	if key == "" {
		return false
	}
	if given == key {
		return true
	}
	return normalize(resolveOption(q.Options, q.CorrectAnswer)) == normalize(resolveOption(q.Options, given))
}

// resolveOption maps a single letter to its option text; anything else is returned as is.
func resolveOption(options []string, v string) string {
	v = strings.TrimSpace(v)
	if len(v) == 1 {
		idx := int(strings.ToUpper(v)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return options[idx]
		}
	}
	return v
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// OptionLetter returns the letter of the i-th option.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}
