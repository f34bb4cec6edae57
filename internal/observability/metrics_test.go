package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesQuizCollectors(t *testing.T) {
	QuizAttempts().WithLabelValues("passed", "dual").Inc()
	QuizPercentage().Observe(72.5)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	require.True(t, strings.Contains(text, `formkit_quiz_attempts_total{mode="dual",result="passed"}`))
	require.True(t, strings.Contains(text, "formkit_quiz_percentage_bucket"))
}
