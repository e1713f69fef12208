package examsvc

import (
	"strconv"
	"testing"

	courseModels "github.com/Umairanwarr/hadith-sub001/models/course"

	"github.com/stretchr/testify/assert"
)

func questions(n int) []courseModels.ExamQuestion {
	qs := make([]courseModels.ExamQuestion, n)
	for i := range qs {
		qs[i].ID = uint(i + 1)
		qs[i].Options = []string{"Bukhari", "Muslim", "Tirmidhi", "Abu Dawud"}
		qs[i].CorrectAnswer = "B"
		qs[i].Points = 1
	}
	return qs
}

func sheet(correct, total int) courseModels.AnswerSheet {
	s := courseModels.AnswerSheet{}
	for i := 1; i <= total; i++ {
		if i <= correct {
			s[strconv.Itoa(i)] = "B"
		} else {
			s[strconv.Itoa(i)] = "C"
		}
	}
	return s
}

func TestGradeScoreIsRoundedShareOfCorrectAnswers(t *testing.T) {
	cases := []struct {
		n, k int
		want float64
	}{
		{10, 7, 70},
		{3, 1, 33},
		{3, 2, 67},
		{6, 5, 83},
		{4, 0, 0},
		{4, 4, 100},
	}
	for _, c := range cases {
		res := Grade(questions(c.n), sheet(c.k, c.n), 60)
		assert.Equal(t, c.want, res.Score, "%d of %d", c.k, c.n)
		assert.Equal(t, c.k, res.CorrectAnswers)
		assert.Equal(t, c.n, res.TotalQuestions)
	}
}

func TestGradePassedIffScoreReachesPassingGrade(t *testing.T) {
	qs := questions(10)
	assert.True(t, Grade(qs, sheet(6, 10), 60).Passed)
	assert.False(t, Grade(qs, sheet(5, 10), 60).Passed)
	assert.True(t, Grade(qs, sheet(10, 10), 100).Passed)
	assert.True(t, Grade(qs, sheet(0, 10), 0).Passed)
}

func TestGradeUnansweredEarnsNothing(t *testing.T) {
	res := Grade(questions(4), courseModels.AnswerSheet{"1": "B"}, 50)
	assert.Equal(t, 25.0, res.Score)
	assert.False(t, res.Passed)
}

func TestGradeWeightsPoints(t *testing.T) {
	qs := questions(2)
	qs[0].Points = 3
	res := Grade(qs, courseModels.AnswerSheet{"1": "B", "2": "A"}, 60)
	assert.Equal(t, 75.0, res.Score)
	assert.Equal(t, 3.0, res.PointsEarned)
	assert.Equal(t, 4.0, res.TotalPoints)
}

func TestGradeUsesStoredPointsAsIs(t *testing.T) {
	qs := questions(3)
	qs[1].Points = 0
	qs[2].Points = -2
	res := Grade(qs, courseModels.AnswerSheet{"1": "C", "2": "B", "3": "B"}, 50)
	assert.Equal(t, 1.0, res.TotalPoints)
	assert.Equal(t, 0.0, res.PointsEarned)
	assert.Equal(t, 2, res.CorrectAnswers)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Passed)
}

func TestGradeNoQuestions(t *testing.T) {
	res := Grade(nil, nil, 60)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Passed)
}

func TestIsCorrectAcceptsLetterOrOptionText(t *testing.T) {
	q := questions(1)[0]
	assert.True(t, IsCorrect(q, "B"))
	assert.True(t, IsCorrect(q, " b "))
	assert.True(t, IsCorrect(q, "muslim"))
	assert.False(t, IsCorrect(q, "A"))
	assert.False(t, IsCorrect(q, ""))

	q.CorrectAnswer = "Muslim"
	assert.True(t, IsCorrect(q, "B"))
	assert.True(t, IsCorrect(q, "MUSLIM"))
	assert.False(t, IsCorrect(q, "Bukhari"))
}

func TestOptionLetter(t *testing.T) {
	assert.Equal(t, "A", OptionLetter(0))
	assert.Equal(t, "D", OptionLetter(3))
}
