package models

import (
	"time"

	"gorm.io/datatypes"
)

// FormResponse is one submission of a form.
type FormResponse struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	FormID          uint               `gorm:"index;not null" json:"form_id"`
	RespondentID    *uint              `gorm:"index" json:"respondent_id"`
	RespondentEmail string             `gorm:"size:255;index" json:"respondent_email"`
	IPAddress       string             `gorm:"size:64" json:"ip_address"`
	UserAgent       string             `gorm:"size:512" json:"user_agent"`
	SubmittedAt     time.Time          `gorm:"index" json:"submitted_at"`
	Answers         []QuestionResponse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
	Attempt         *QuizAttempt       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"attempt,omitempty"`
}

// QuestionResponse stores the raw answer given to one question.
type QuestionResponse struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FormResponseID uint           `gorm:"index;not null" json:"form_response_id"`
	QuestionID     uint           `gorm:"index;not null" json:"question_id"`
	Answer         datatypes.JSON `gorm:"type:json" json:"answer"`
	CreatedAt      time.Time      `json:"created_at"`
}
