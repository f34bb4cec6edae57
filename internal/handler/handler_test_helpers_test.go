package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/config"
	"github.com/noah-isme/formkit-api/internal/handler"
	"github.com/noah-isme/formkit-api/internal/models"
	"github.com/noah-isme/formkit-api/internal/repository"
	"github.com/noah-isme/formkit-api/internal/router"
	"github.com/noah-isme/formkit-api/internal/service"
)

type apiEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
	Meta    json.RawMessage   `json:"meta"`
}

// identifyFromHeader stands in for JWT auth: X-User-ID becomes the authenticated user.
func identifyFromHeader(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			if required {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			return c.Next()
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("user_id", uint(id))
		return c.Next()
	}
}

func setupFormApp(t *testing.T) *fiber.App {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Form{}, &models.Question{}, &models.FormResponse{}, &models.QuestionResponse{}, &models.QuizAttempt{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	formRepo := repository.NewFormRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	dashboardService := service.NewDashboardService(repository.NewDashboardRepository(db), nil, 0, logger)
	formService := service.NewFormService(formRepo, dashboardService, validate, logger)
	submissionService := service.NewSubmissionService(formRepo, responseRepo, attemptRepo, nil, dashboardService, validate, logger)
	responseService := service.NewResponseService(formRepo, responseRepo, attemptRepo, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		FormHandler:           handler.NewFormHandler(formService, logger),
		ResponseHandler:       handler.NewResponseHandler(responseService, logger),
		DashboardHandler:      handler.NewDashboardHandler(dashboardService, logger),
		PublicFormHandler:     handler.NewPublicFormHandler(submissionService, logger),
		JWTMiddleware:         identifyFromHeader(true),
		OptionalJWTMiddleware: identifyFromHeader(false),
	})

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, userID uint, body any) (int, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.FormatUint(uint64(userID), 10))
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope apiEnvelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	}
	return resp.StatusCode, envelope
}

type formView struct {
	ID          uint   `json:"id"`
	PublicID    string `json:"public_id"`
	Status      string `json:"status"`
	TotalPoints int    `json:"total_points"`
	TotalMCQs   int    `json:"total_mcqs"`
	Questions   []struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	} `json:"questions"`
}

func decodeData[T any](t *testing.T, envelope apiEnvelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(envelope.Data, &out))
	return out
}

var quizQuestions = map[string]any{
	"questions": []map[string]any{
		{"type": "multiple_choice", "title": "Capital of France?", "required": true, "options": []string{"Paris", "Rome"}, "correct_answers": []string{"Paris"}, "points": 2},
		{"type": "checkbox", "title": "Pick the vowels", "options": []string{"A", "B", "E"}, "correct_answers": []string{"A", "E"}},
		{"type": "text", "title": "Any comments?"},
	},
}

// createPublishedQuiz builds a quiz owned by ownerID and returns its owner view after publishing.
func createPublishedQuiz(t *testing.T, app *fiber.App, ownerID uint, settings map[string]any) formView {
	t.Helper()

	payload := map[string]any{"title": "Geography", "is_quiz": true}
	for key, value := range settings {
		payload[key] = value
	}

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/forms", ownerID, payload)
	require.Equal(t, http.StatusCreated, status, envelope.Message)
	created := decodeData[formView](t, envelope)

	status, envelope = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/forms/%d/questions", created.ID), ownerID, quizQuestions)
	require.Equal(t, http.StatusOK, status, envelope.Message)

	status, envelope = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/forms/%d/publish", created.ID), ownerID, nil)
	require.Equal(t, http.StatusOK, status, envelope.Message)
	return decodeData[formView](t, envelope)
}

func questionKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
