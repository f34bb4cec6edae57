package dto

import (
	"time"

	"github.com/noah-isme/formkit-api/internal/models"
)

// SubmitRequest is the public payload for answering a form. Answers are keyed by question id.
type SubmitRequest struct {
	Answers   map[string]any `json:"answers"`
	Email     string         `json:"email" validate:"omitempty,email,max=255"`
	StartedAt *time.Time     `json:"started_at"`
}

// PublicQuestion is a question as shown to respondents. Answer keys and explanations are never included.
type PublicQuestion struct {
	ID          uint     `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
	Points      *int     `json:"points,omitempty"`
	OrderIndex  int      `json:"order_index"`
}

// PublicForm is a published form as shown to respondents.
type PublicForm struct {
	PublicID         string           `json:"public_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	IsQuiz           bool             `json:"is_quiz"`
	AllowAnonymous   bool             `json:"allow_anonymous"`
	CollectEmail     bool             `json:"collect_email"`
	RequireLogin     bool             `json:"require_login"`
	TimeLimitMinutes *int             `json:"time_limit_minutes"`
	TotalPoints      int              `json:"total_points"`
	Questions        []PublicQuestion `json:"questions"`
}

// NewPublicForm converts a published form into the respondent view.
func NewPublicForm(model models.Form) PublicForm {
	questions := make([]PublicQuestion, 0, len(model.Questions))
	for _, question := range model.Questions {
		item := PublicQuestion{
			ID:          question.ID,
			Type:        question.Type,
			Title:       question.Title,
			Description: question.Description,
			Required:    question.Required,
			Options:     question.OptionList(),
			OrderIndex:  question.OrderIndex,
		}
		if model.IsQuiz {
			item.Points = question.Points
		}
		questions = append(questions, item)
	}

	totalPoints := 0
	if model.IsQuiz {
		totalPoints = model.TotalPoints
	}

	return PublicForm{
		PublicID:         model.PublicID,
		Title:            model.Title,
		Description:      model.Description,
		IsQuiz:           model.IsQuiz,
		AllowAnonymous:   model.AllowAnonymous,
		CollectEmail:     model.CollectEmail,
		RequireLogin:     model.RequireLogin,
		TimeLimitMinutes: model.TimeLimitMinutes,
		TotalPoints:      totalPoints,
		Questions:        questions,
	}
}

// QuestionResult is the per-question breakdown shown after a quiz when results are visible.
type QuestionResult struct {
	QuestionID     uint   `json:"question_id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	Points         int    `json:"points"`
	Awarded        int    `json:"awarded"`
	Answer         any    `json:"answer"`
	CorrectAnswers any    `json:"correct_answers"`
	Explanation    string `json:"explanation,omitempty"`
}

// QuizResult summarizes a graded attempt.
type QuizResult struct {
	AttemptID        uint             `json:"attempt_id"`
	Score            int              `json:"score"`
	TotalPoints      int              `json:"total_points"`
	Percentage       float64          `json:"percentage"`
	Passed           bool             `json:"passed"`
	CorrectMCQs      int              `json:"correct_mcqs"`
	TotalMCQs        int              `json:"total_mcqs"`
	PassingMode      string           `json:"passing_mode"`
	TimeTakenSeconds *int             `json:"time_taken_seconds"`
	Breakdown        []QuestionResult `json:"breakdown,omitempty"`
}

// SubmissionResult is returned after a successful submission.
type SubmissionResult struct {
	ResponseID  uint        `json:"response_id"`
	Message     string      `json:"message"`
	SubmittedAt time.Time   `json:"submitted_at"`
	Quiz        *QuizResult `json:"quiz,omitempty"`
}
