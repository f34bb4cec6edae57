package dto

import "time"

// DashboardSummary aggregates an owner's forms and results.
type DashboardSummary struct {
	TotalForms        int64         `json:"total_forms"`
	PublishedForms    int64         `json:"published_forms"`
	Quizzes           int64         `json:"quizzes"`
	TotalResponses    int64         `json:"total_responses"`
	TotalAttempts     int64         `json:"total_attempts"`
	PassRate          float64       `json:"pass_rate"`
	AveragePercentage float64       `json:"average_percentage"`
	RecentForms       []FormSummary `json:"recent_forms"`
	GeneratedAt       time.Time     `json:"generated_at"`
}
