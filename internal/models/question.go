package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/formkit-api/internal/scoring"
)

// Question is a single item on a form.
type Question struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FormID         uint           `gorm:"index;not null" json:"form_id"`
	Type           string         `gorm:"size:32;not null" json:"type"`
	Title          string         `gorm:"size:500;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Required       bool           `gorm:"not null;default:false" json:"required"`
	Options        datatypes.JSON `gorm:"type:json" json:"options"`
	CorrectAnswers datatypes.JSON `gorm:"type:json" json:"correct_answers"`
	Points         *int           `json:"points"`
	Explanation    string         `gorm:"type:text" json:"explanation"`
	OrderIndex     int            `gorm:"not null;default:0" json:"order_index"`
	CreatedAt      time.Time      `json:"created_at"`
}

// QuestionKey formats a question id the way answers are keyed.
func QuestionKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// OptionList decodes the stored options. Malformed data yields an empty list.
func (q Question) OptionList() []string {
	if len(q.Options) == 0 {
		return []string{}
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return []string{}
	}
	return options
}

// ScoringQuestion converts the persisted question into grading input. The answer key is
// decoded lazily by the grader so malformed JSON only affects this question.
func (q Question) ScoringQuestion() scoring.Question {
	var key any
	if len(q.CorrectAnswers) > 0 {
		key = json.RawMessage(q.CorrectAnswers)
	}

	points := 0
	if q.Points != nil {
		points = *q.Points
	}

	return scoring.Question{
		ID:             QuestionKey(q.ID),
		Type:           scoring.QuestionType(q.Type),
		Options:        q.OptionList(),
		CorrectAnswers: key,
		Points:         points,
	}
}
