package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
)

// AttemptStats aggregates quiz attempts. Percentages are nil when there are no attempts.
type AttemptStats struct {
	Attempts int64
	Passed   int64
	Average  *float64
	Highest  *float64
	Lowest   *float64
}

// AttemptRepository reads quiz attempts.
type AttemptRepository interface {
	ExistsForRespondent(ctx context.Context, formID uint, respondentID *uint, email string) (bool, error)
	StatsByForm(ctx context.Context, formID uint) (AttemptStats, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository constructs an attempt repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// ExistsForRespondent reports whether the user or email already has an attempt on the form.
// Anonymous respondents without an email cannot be matched and always report false.
func (r *attemptRepository) ExistsForRespondent(ctx context.Context, formID uint, respondentID *uint, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if respondentID == nil && email == "" {
		return false, nil
	}

	query := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).Where("form_id = ?", formID)
	switch {
	case respondentID != nil && email != "":
		query = query.Where("respondent_id = ? OR LOWER(respondent_email) = ?", *respondentID, email)
	case respondentID != nil:
		query = query.Where("respondent_id = ?", *respondentID)
	default:
		query = query.Where("LOWER(respondent_email) = ?", email)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *attemptRepository) StatsByForm(ctx context.Context, formID uint) (AttemptStats, error) {
	var stats AttemptStats
	err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(attemptStatsColumns("quiz_attempts")).
		Where("form_id = ?", formID).
		Scan(&stats).Error
	return stats, err
}

func attemptStatsColumns(table string) string {
	return "COUNT(" + table + ".id) AS attempts, " +
		"COALESCE(SUM(CASE WHEN " + table + ".passed THEN 1 ELSE 0 END), 0) AS passed, " +
		"AVG(" + table + ".percentage) AS average, " +
		"MAX(" + table + ".percentage) AS highest, " +
		"MIN(" + table + ".percentage) AS lowest"
}
