package courseValidator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMatchesOption(t *testing.T) {
	options := []string{"Sahih", "Hasan", "Da'if"}

	assert.True(t, KeyMatchesOption(options, "A"))
	assert.True(t, KeyMatchesOption(options, "c"))
	assert.True(t, KeyMatchesOption(options, " hasan "))
	assert.False(t, KeyMatchesOption(options, "D"))
	assert.False(t, KeyMatchesOption(options, "Mawdu"))
	assert.False(t, KeyMatchesOption(nil, "A"))
}

func TestQuestionPointsMustBePositive(t *testing.T) {
	app := fiber.New()
	app.Post("/questions", CreateQuestion(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	cases := map[string]int{
		`{"question":"Which book?","options":["a","b"],"correct_answer":"A","points":0}`:  fiber.StatusUnprocessableEntity,
		`{"question":"Which book?","options":["a","b"],"correct_answer":"A","points":-1}`: fiber.StatusUnprocessableEntity,
		`{"question":"Which book?","options":["a","b"],"correct_answer":"A","points":2}`:  fiber.StatusCreated,
		`{"question":"Which book?","options":["a","b"],"correct_answer":"A"}`:             fiber.StatusCreated,
	}
	for body, want := range cases {
		req := httptest.NewRequest(fiber.MethodPost, "/questions", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, body)
	}
}
