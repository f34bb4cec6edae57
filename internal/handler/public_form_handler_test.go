package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type quizView struct {
	Score       int     `json:"score"`
	TotalPoints int     `json:"total_points"`
	Percentage  float64 `json:"percentage"`
	Passed      bool    `json:"passed"`
	CorrectMCQs int     `json:"correct_mcqs"`
	TotalMCQs   int     `json:"total_mcqs"`
	PassingMode string  `json:"passing_mode"`
	Breakdown   []struct {
		QuestionID uint   `json:"question_id"`
		Status     string `json:"status"`
	} `json:"breakdown"`
}

type submissionView struct {
	ResponseID uint      `json:"response_id"`
	Message    string    `json:"message"`
	Quiz       *quizView `json:"quiz"`
}

func correctAnswers(form formView) map[string]any {
	return map[string]any{
		"answers": map[string]any{
			questionKey(form.Questions[0].ID): "Paris",
			questionKey(form.Questions[1].ID): []string{"E", "A"},
			questionKey(form.Questions[2].ID): "great quiz",
		},
	}
}

func TestPublicFormHidesAnswerKeys(t *testing.T) {
	app := setupFormApp(t)
	form := createPublishedQuiz(t, app, 1, nil)

	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/public/forms/"+form.PublicID, 0, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotContains(t, string(envelope.Data), "correct_answers")

	var public struct {
		Questions []json.RawMessage `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &public))
	require.Len(t, public.Questions, 3)
}

func TestPublicFormUnknownAndDraft(t *testing.T) {
	app := setupFormApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/public/forms/missing", 0, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/forms", 1, map[string]any{"title": "Draft"})
	require.Equal(t, http.StatusCreated, status)
	draft := decodeData[formView](t, envelope)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/public/forms/"+draft.PublicID+"/responses", 0, map[string]any{"answers": map[string]any{}})
	require.Equal(t, http.StatusConflict, status)
}

func TestPublicSubmitGradesQuiz(t *testing.T) {
	app := setupFormApp(t)
	form := createPublishedQuiz(t, app, 1, nil)

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/public/forms/"+form.PublicID+"/responses", 0, correctAnswers(form))
	require.Equal(t, http.StatusCreated, status, envelope.Message)

	result := decodeData[submissionView](t, envelope)
	require.NotZero(t, result.ResponseID)
	require.NotNil(t, result.Quiz)
	require.Equal(t, 3, result.Quiz.Score)
	require.Equal(t, 4, result.Quiz.TotalPoints)
	require.InDelta(t, 75.0, result.Quiz.Percentage, 0.0001)
	require.True(t, result.Quiz.Passed)
	require.Equal(t, 2, result.Quiz.CorrectMCQs)
	require.Equal(t, 2, result.Quiz.TotalMCQs)
	require.Equal(t, "default", result.Quiz.PassingMode)
	require.Len(t, result.Quiz.Breakdown, 3)

	status, envelope = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/forms/%d/responses", form.ID), 1, nil)
	require.Equal(t, http.StatusOK, status)
	var responses []struct {
		ID      uint `json:"id"`
		Attempt *struct {
			Score int `json:"score"`
		} `json:"attempt"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &responses))
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Attempt)
	require.Equal(t, 3, responses[0].Attempt.Score)

	status, envelope = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/forms/%d/responses/%d", form.ID, responses[0].ID), 1, nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/forms/%d/stats", form.ID), 1, nil)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		ResponseCount int64   `json:"response_count"`
		PassRate      float64 `json:"pass_rate"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &stats))
	require.Equal(t, int64(1), stats.ResponseCount)
	require.InDelta(t, 100.0, stats.PassRate, 0.0001)

	status, envelope = doJSON(t, app, http.MethodGet, "/api/v1/dashboard", 1, nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard struct {
		TotalForms     int64 `json:"total_forms"`
		TotalResponses int64 `json:"total_responses"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &dashboard))
	require.Equal(t, int64(1), dashboard.TotalForms)
	require.Equal(t, int64(1), dashboard.TotalResponses)
}

func TestPublicSubmitMissingRequiredAnswer(t *testing.T) {
	app := setupFormApp(t)
	form := createPublishedQuiz(t, app, 1, nil)

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/public/forms/"+form.PublicID+"/responses", 0, map[string]any{
		"answers": map[string]any{questionKey(form.Questions[1].ID): []string{"A"}},
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "is required", envelope.Details["answers."+questionKey(form.Questions[0].ID)])
}

func TestPublicSubmitRequiresLogin(t *testing.T) {
	app := setupFormApp(t)
	form := createPublishedQuiz(t, app, 1, map[string]any{"require_login": true})

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/public/forms/"+form.PublicID+"/responses", 0, correctAnswers(form))
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/public/forms/"+form.PublicID+"/responses", 9, correctAnswers(form))
	require.Equal(t, http.StatusCreated, status)
}

func TestPublicSubmitBlocksRetake(t *testing.T) {
	app := setupFormApp(t)
	form := createPublishedQuiz(t, app, 1, nil)
	path := "/api/v1/public/forms/" + form.PublicID + "/responses"

	status, _ := doJSON(t, app, http.MethodPost, path, 5, correctAnswers(form))
	require.Equal(t, http.StatusCreated, status)

	status, envelope := doJSON(t, app, http.MethodPost, path, 5, correctAnswers(form))
	require.Equal(t, http.StatusConflict, status)
	require.False(t, envelope.Success)

	status, _ = doJSON(t, app, http.MethodPost, path, 6, correctAnswers(form))
	require.Equal(t, http.StatusCreated, status)
}

func TestPublicSubmitHidesBreakdownWhenResultsDisabled(t *testing.T) {
	app := setupFormApp(t)
	form := createPublishedQuiz(t, app, 1, map[string]any{"show_results": false})

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/public/forms/"+form.PublicID+"/responses", 0, correctAnswers(form))
	require.Equal(t, http.StatusCreated, status)

	result := decodeData[submissionView](t, envelope)
	require.NotNil(t, result.Quiz)
	require.Empty(t, result.Quiz.Breakdown)
}
