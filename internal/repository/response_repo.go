package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
)

// ResponseFilter paginates a form's responses.
type ResponseFilter struct {
	FormID   uint
	Page     int
	PageSize int
}

// ResponseRepository persists form submissions.
type ResponseRepository interface {
	CreateSubmission(ctx context.Context, response *models.FormResponse, attempt *models.QuizAttempt) error
	List(ctx context.Context, filter ResponseFilter) ([]models.FormResponse, int64, error)
	GetByID(ctx context.Context, formID, id uint) (models.FormResponse, error)
	CountByForm(ctx context.Context, formID uint) (int64, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository constructs a repository backed by GORM.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// CreateSubmission stores the response, its answers and the optional attempt in one transaction.
func (r *responseRepository) CreateSubmission(ctx context.Context, response *models.FormResponse, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Attempt").Create(response).Error; err != nil {
			return err
		}

		if attempt == nil {
			return nil
		}

		attempt.FormResponseID = response.ID
		attempt.FormID = response.FormID
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		response.Attempt = attempt
		return nil
	})
}

func (r *responseRepository) List(ctx context.Context, filter ResponseFilter) ([]models.FormResponse, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FormResponse{}).Where("form_id = ?", filter.FormID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Attempt").
		Order("submitted_at DESC").
		Order("id DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var responses []models.FormResponse
	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r *responseRepository) GetByID(ctx context.Context, formID, id uint) (models.FormResponse, error) {
	var response models.FormResponse
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Attempt").
		Where("form_id = ?", formID).
		First(&response, id).Error
	if err != nil {
		return models.FormResponse{}, err
	}
	return response, nil
}

func (r *responseRepository) CountByForm(ctx context.Context, formID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FormResponse{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}
