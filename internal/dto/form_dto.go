package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/formkit-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// FormCreateRequest describes the payload for creating a form. Unset toggles use the form defaults.
type FormCreateRequest struct {
	Title                 string   `json:"title" validate:"required,min=1,max=255"`
	Description           string   `json:"description" validate:"omitempty,max=5000"`
	AllowAnonymous        *bool    `json:"allow_anonymous"`
	CollectEmail          *bool    `json:"collect_email"`
	RequireLogin          *bool    `json:"require_login"`
	IsQuiz                *bool    `json:"is_quiz"`
	AllowRetake           *bool    `json:"allow_retake"`
	ShowResults           *bool    `json:"show_results"`
	TimeLimitMinutes      *int     `json:"time_limit_minutes" validate:"omitempty,gte=1,lte=1440"`
	PassingScore          *float64 `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	MinCorrectMCQs        *int     `json:"min_correct_mcqs" validate:"omitempty,gte=0"`
	UsePercentageCriteria *bool    `json:"use_percentage_criteria"`
	UseMCQCriteria        *bool    `json:"use_mcq_criteria"`
	CustomThankYouMessage string   `json:"custom_thank_you_message" validate:"omitempty,max=2000"`
}

// FormUpdateRequest patches form settings. Clear* flags reset the nullable limits.
type FormUpdateRequest struct {
	Title                 *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description           *string  `json:"description" validate:"omitempty,max=5000"`
	AllowAnonymous        *bool    `json:"allow_anonymous"`
	CollectEmail          *bool    `json:"collect_email"`
	RequireLogin          *bool    `json:"require_login"`
	IsQuiz                *bool    `json:"is_quiz"`
	AllowRetake           *bool    `json:"allow_retake"`
	ShowResults           *bool    `json:"show_results"`
	TimeLimitMinutes      *int     `json:"time_limit_minutes" validate:"omitempty,gte=1,lte=1440"`
	PassingScore          *float64 `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	MinCorrectMCQs        *int     `json:"min_correct_mcqs" validate:"omitempty,gte=0"`
	UsePercentageCriteria *bool    `json:"use_percentage_criteria"`
	UseMCQCriteria        *bool    `json:"use_mcq_criteria"`
	CustomThankYouMessage *string  `json:"custom_thank_you_message" validate:"omitempty,max=2000"`
	ClearTimeLimit        bool     `json:"clear_time_limit"`
	ClearPassingScore     bool     `json:"clear_passing_score"`
	ClearMinCorrectMCQs   bool     `json:"clear_min_correct_mcqs"`
}

// FormListRequest defines filters for listing an owner's forms.
type FormListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string `validate:"omitempty,oneof=draft published closed"`
	Sort     string
}

// QuestionInput is one question in a SaveQuestions payload.
type QuestionInput struct {
	Type           string          `json:"type" validate:"required,oneof=text textarea multiple_choice checkbox dropdown number email date rating"`
	Title          string          `json:"title" validate:"required,min=1,max=500"`
	Description    string          `json:"description" validate:"omitempty,max=2000"`
	Required       bool            `json:"required"`
	Options        []string        `json:"options" validate:"omitempty,max=50,dive,required,max=500"`
	CorrectAnswers json.RawMessage `json:"correct_answers"`
	Points         *int            `json:"points" validate:"omitempty,gte=1,lte=1000"`
	Explanation    string          `json:"explanation" validate:"omitempty,max=2000"`
}

// SaveQuestionsRequest replaces the full question set of a form.
type SaveQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" validate:"omitempty,max=200,dive"`
}

// QuestionDetail is the owner view of a question, including its answer key.
type QuestionDetail struct {
	ID             uint      `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Required       bool      `json:"required"`
	Options        []string  `json:"options"`
	CorrectAnswers any       `json:"correct_answers"`
	Points         *int      `json:"points"`
	Explanation    string    `json:"explanation"`
	OrderIndex     int       `json:"order_index"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewQuestionDetail converts a model into the owner view.
func NewQuestionDetail(model models.Question) QuestionDetail {
	return QuestionDetail{
		ID:             model.ID,
		Type:           model.Type,
		Title:          model.Title,
		Description:    model.Description,
		Required:       model.Required,
		Options:        model.OptionList(),
		CorrectAnswers: decodeJSON(model.CorrectAnswers),
		Points:         model.Points,
		Explanation:    model.Explanation,
		OrderIndex:     model.OrderIndex,
		CreatedAt:      model.CreatedAt,
	}
}

// FormSummary is the list representation of a form.
type FormSummary struct {
	ID          uint      `json:"id"`
	PublicID    string    `json:"public_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	IsQuiz      bool      `json:"is_quiz"`
	TotalPoints int       `json:"total_points"`
	TotalMCQs   int       `json:"total_mcqs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFormSummary converts a model into a list item.
func NewFormSummary(model models.Form) FormSummary {
	return FormSummary{
		ID:          model.ID,
		PublicID:    model.PublicID,
		Title:       model.Title,
		Status:      model.Status,
		IsQuiz:      model.IsQuiz,
		TotalPoints: model.TotalPoints,
		TotalMCQs:   model.TotalMCQs,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewFormSummarySlice converts a slice of models into list items.
func NewFormSummarySlice(forms []models.Form) []FormSummary {
	items := make([]FormSummary, 0, len(forms))
	for _, form := range forms {
		items = append(items, NewFormSummary(form))
	}
	return items
}

// FormDetail is the full owner view of a form.
type FormDetail struct {
	FormSummary
	Description           string           `json:"description"`
	AllowAnonymous        bool             `json:"allow_anonymous"`
	CollectEmail          bool             `json:"collect_email"`
	RequireLogin          bool             `json:"require_login"`
	AllowRetake           bool             `json:"allow_retake"`
	ShowResults           bool             `json:"show_results"`
	TimeLimitMinutes      *int             `json:"time_limit_minutes"`
	PassingScore          *float64         `json:"passing_score"`
	MinCorrectMCQs        *int             `json:"min_correct_mcqs"`
	UsePercentageCriteria bool             `json:"use_percentage_criteria"`
	UseMCQCriteria        bool             `json:"use_mcq_criteria"`
	PassingMode           string           `json:"passing_mode"`
	CustomThankYouMessage string           `json:"custom_thank_you_message"`
	Questions             []QuestionDetail `json:"questions"`
}

// NewFormDetail converts a model and its loaded questions into the owner view.
func NewFormDetail(model models.Form) FormDetail {
	questions := make([]QuestionDetail, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, NewQuestionDetail(question))
	}

	return FormDetail{
		FormSummary:           NewFormSummary(model),
		Description:           model.Description,
		AllowAnonymous:        model.AllowAnonymous,
		CollectEmail:          model.CollectEmail,
		RequireLogin:          model.RequireLogin,
		AllowRetake:           model.AllowRetake,
		ShowResults:           model.ShowResults,
		TimeLimitMinutes:      model.TimeLimitMinutes,
		PassingScore:          model.PassingScore,
		MinCorrectMCQs:        model.MinCorrectMCQs,
		UsePercentageCriteria: model.UsePercentageCriteria,
		UseMCQCriteria:        model.UseMCQCriteria,
		PassingMode:           model.PassingPolicy().Mode(),
		CustomThankYouMessage: model.CustomThankYouMessage,
		Questions:             questions,
	}
}

// FormListResponse wraps a paginated form list.
type FormListResponse struct {
	Items      []FormSummary  `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// decodeJSON returns the decoded value of a JSON column, or nil when it is empty or malformed.
func decodeJSON(data datatypes.JSON) any {
	if len(data) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}
	return value
}
