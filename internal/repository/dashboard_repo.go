package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
)

// FormCounts summarizes an owner's forms.
type FormCounts struct {
	Total     int64
	Published int64
	Quizzes   int64
}

// DashboardRepository supplies owner-wide aggregates.
type DashboardRepository interface {
	CountForms(ctx context.Context, ownerID uint) (FormCounts, error)
	CountResponses(ctx context.Context, ownerID uint) (int64, error)
	AttemptStats(ctx context.Context, ownerID uint) (AttemptStats, error)
	RecentForms(ctx context.Context, ownerID uint, limit int) ([]models.Form, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository constructs the dashboard repository.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountForms(ctx context.Context, ownerID uint) (FormCounts, error) {
	var counts FormCounts
	err := r.db.WithContext(ctx).
		Model(&models.Form{}).
		Select("COUNT(id) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS published, "+
			"COALESCE(SUM(CASE WHEN is_quiz THEN 1 ELSE 0 END), 0) AS quizzes", models.FormStatusPublished).
		Where("owner_id = ?", ownerID).
		Scan(&counts).Error
	return counts, err
}

func (r *dashboardRepository) CountResponses(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FormResponse{}).
		Joins("JOIN forms ON forms.id = form_responses.form_id").
		Where("forms.owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) AttemptStats(ctx context.Context, ownerID uint) (AttemptStats, error) {
	var stats AttemptStats
	err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(attemptStatsColumns("quiz_attempts")).
		Joins("JOIN forms ON forms.id = quiz_attempts.form_id").
		Where("forms.owner_id = ?", ownerID).
		Scan(&stats).Error
	return stats, err
}

func (r *dashboardRepository) RecentForms(ctx context.Context, ownerID uint, limit int) ([]models.Form, error) {
	var forms []models.Form
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&forms).Error
	return forms, err
}
