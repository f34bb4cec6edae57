package dto

import (
	"time"

	"github.com/noah-isme/formkit-api/internal/models"
)

// ResponseListRequest defines pagination for a form's responses.
type ResponseListRequest struct {
	Page     int
	PageSize int
}

// AnswerDetail is one stored answer.
type AnswerDetail struct {
	QuestionID uint `json:"question_id"`
	Answer     any  `json:"answer"`
}

// AttemptSummary is the stored outcome of a graded response.
type AttemptSummary struct {
	ID               uint      `json:"id"`
	Score            int       `json:"score"`
	TotalPoints      int       `json:"total_points"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	CorrectMCQs      int       `json:"correct_mcqs"`
	TotalMCQs        int       `json:"total_mcqs"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	TimeTakenSeconds *int      `json:"time_taken_seconds"`
}

// NewAttemptSummary converts an attempt model.
func NewAttemptSummary(model models.QuizAttempt) AttemptSummary {
	return AttemptSummary{
		ID:               model.ID,
		Score:            model.Score,
		TotalPoints:      model.TotalPoints,
		Percentage:       model.Percentage,
		Passed:           model.Passed,
		CorrectMCQs:      model.CorrectMCQs,
		TotalMCQs:        model.TotalMCQs,
		StartedAt:        model.StartedAt,
		CompletedAt:      model.CompletedAt,
		TimeTakenSeconds: model.TimeTakenSeconds,
	}
}

// ResponseDetail is the owner view of one submission.
type ResponseDetail struct {
	ID              uint            `json:"id"`
	FormID          uint            `json:"form_id"`
	RespondentID    *uint           `json:"respondent_id"`
	RespondentEmail string          `json:"respondent_email"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	Answers         []AnswerDetail  `json:"answers"`
	Attempt         *AttemptSummary `json:"attempt,omitempty"`
}

// NewResponseDetail converts a response with its answers and attempt.
func NewResponseDetail(model models.FormResponse) ResponseDetail {
	answers := make([]AnswerDetail, 0, len(model.Answers))
	for _, answer := range model.Answers {
		answers = append(answers, AnswerDetail{QuestionID: answer.QuestionID, Answer: decodeJSON(answer.Answer)})
	}

	var attempt *AttemptSummary
	if model.Attempt != nil {
		summary := NewAttemptSummary(*model.Attempt)
		attempt = &summary
	}

	return ResponseDetail{
		ID:              model.ID,
		FormID:          model.FormID,
		RespondentID:    model.RespondentID,
		RespondentEmail: model.RespondentEmail,
		SubmittedAt:     model.SubmittedAt,
		Answers:         answers,
		Attempt:         attempt,
	}
}

// ResponseListResponse wraps a paginated response list.
type ResponseListResponse struct {
	Items      []ResponseDetail `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// FormStats aggregates responses and attempts for one form.
type FormStats struct {
	FormID            uint     `json:"form_id"`
	ResponseCount     int64    `json:"response_count"`
	AttemptCount      int64    `json:"attempt_count"`
	PassCount         int64    `json:"pass_count"`
	PassRate          float64  `json:"pass_rate"`
	AveragePercentage float64  `json:"average_percentage"`
	HighestPercentage *float64 `json:"highest_percentage"`
	LowestPercentage  *float64 `json:"lowest_percentage"`
}
