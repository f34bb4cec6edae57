package models

import (
	"time"

	"github.com/noah-isme/formkit-api/internal/scoring"
)

const (
	// FormStatusDraft marks a form that is still being built.
	FormStatusDraft = "draft"
	// FormStatusPublished marks a form that accepts responses.
	FormStatusPublished = "published"
	// FormStatusClosed marks a form that no longer accepts responses.
	FormStatusClosed = "closed"
)

// Form is a survey or quiz owned by a single user.
type Form struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	PublicID              string     `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	OwnerID               uint       `gorm:"index;not null" json:"owner_id"`
	Title                 string     `gorm:"size:255;not null" json:"title"`
	Description           string     `gorm:"type:text" json:"description"`
	Status                string     `gorm:"size:16;not null;default:draft;index" json:"status"`
	AllowAnonymous        bool       `gorm:"not null" json:"allow_anonymous"`
	CollectEmail          bool       `gorm:"not null;default:false" json:"collect_email"`
	RequireLogin          bool       `gorm:"not null;default:false" json:"require_login"`
	IsQuiz                bool       `gorm:"not null;default:false" json:"is_quiz"`
	AllowRetake           bool       `gorm:"not null;default:false" json:"allow_retake"`
	ShowResults           bool       `gorm:"not null" json:"show_results"`
	TimeLimitMinutes      *int       `json:"time_limit_minutes"`
	PassingScore          *float64   `json:"passing_score"`
	MinCorrectMCQs        *int       `gorm:"column:min_correct_mcqs" json:"min_correct_mcqs"`
	UsePercentageCriteria bool       `gorm:"not null;default:false" json:"use_percentage_criteria"`
	UseMCQCriteria        bool       `gorm:"column:use_mcq_criteria;not null;default:false" json:"use_mcq_criteria"`
	TotalPoints           int        `gorm:"not null;default:0" json:"total_points"`
	TotalMCQs             int        `gorm:"column:total_mcqs;not null;default:0" json:"total_mcqs"`
	CustomThankYouMessage string     `gorm:"type:text" json:"custom_thank_you_message"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Questions             []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// IsPublished reports whether the form currently accepts responses.
func (f Form) IsPublished() bool {
	return f.Status == FormStatusPublished
}

// PassingPolicy extracts the grading policy configured on the form.
func (f Form) PassingPolicy() scoring.PassingPolicy {
	return scoring.PassingPolicy{
		UsePercentage:  f.UsePercentageCriteria,
		UseMCQ:         f.UseMCQCriteria,
		PassingScore:   f.PassingScore,
		MinCorrectMCQs: f.MinCorrectMCQs,
	}
}

// ScoringQuestions converts the loaded questions into grading input.
func (f Form) ScoringQuestions() []scoring.Question {
	questions := make([]scoring.Question, 0, len(f.Questions))
	for _, question := range f.Questions {
		questions = append(questions, question.ScoringQuestion())
	}
	return questions
}
