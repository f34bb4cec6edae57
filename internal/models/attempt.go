package models

import "time"

// QuizAttempt records the graded outcome of a quiz response.
type QuizAttempt struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FormID           uint      `gorm:"index;not null" json:"form_id"`
	FormResponseID   uint      `gorm:"uniqueIndex;not null" json:"form_response_id"`
	RespondentID     *uint     `gorm:"index" json:"respondent_id"`
	RespondentEmail  string    `gorm:"size:255;index" json:"respondent_email"`
	Score            int       `gorm:"not null" json:"score"`
	TotalPoints      int       `gorm:"not null" json:"total_points"`
	Percentage       float64   `gorm:"not null" json:"percentage"`
	Passed           bool      `gorm:"not null" json:"passed"`
	CorrectMCQs      int       `gorm:"column:correct_mcqs;not null;default:0" json:"correct_mcqs"`
	TotalMCQs        int       `gorm:"column:total_mcqs;not null;default:0" json:"total_mcqs"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `gorm:"index" json:"completed_at"`
	TimeTakenSeconds *int      `json:"time_taken_seconds"`
}
