package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/models"
)

// FormFilter describes pagination and search options for an owner's forms.
type FormFilter struct {
	OwnerID  uint
	Search   string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// FormTotals are the aggregates derived from a form's question set.
type FormTotals struct {
	TotalPoints int
	TotalMCQs   int
}

// FormRepository defines persistence operations for forms and their questions.
type FormRepository interface {
	List(ctx context.Context, filter FormFilter) ([]models.Form, int64, error)
	GetByID(ctx context.Context, id uint) (models.Form, error)
	GetByPublicID(ctx context.Context, publicID string) (models.Form, error)
	Create(ctx context.Context, form *models.Form) error
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id uint) error
	ReplaceQuestions(ctx context.Context, formID uint, questions []models.Question, totals FormTotals) error
}

type formRepository struct {
	db *gorm.DB
}

// NewFormRepository instantiates a GORM-backed repository.
func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) List(ctx context.Context, filter FormFilter) ([]models.Form, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Form{}).Where("owner_id = ?", filter.OwnerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(normalizeFormSort(filter.Sort)).Order("id DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var forms []models.Form
	if err := query.Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

func (r *formRepository) GetByID(ctx context.Context, id uint) (models.Form, error) {
	var form models.Form
	if err := r.withQuestions(ctx).First(&form, id).Error; err != nil {
		return models.Form{}, err
	}
	return form, nil
}

func (r *formRepository) GetByPublicID(ctx context.Context, publicID string) (models.Form, error) {
	var form models.Form
	if err := r.withQuestions(ctx).Where("public_id = ?", publicID).First(&form).Error; err != nil {
		return models.Form{}, err
	}
	return form, nil
}

func (r *formRepository) Create(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Omit("Questions").Create(form).Error
}

func (r *formRepository) Update(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Omit("Questions").Save(form).Error
}

// Delete removes the form together with its questions, responses, answers and attempts.
func (r *formRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		responseIDs := tx.Model(&models.FormResponse{}).Select("id").Where("form_id = ?", id)

		if err := tx.Where("form_id = ?", id).Delete(&models.QuizAttempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_response_id IN (?)", responseIDs).Delete(&models.QuestionResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.FormResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Form{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ReplaceQuestions swaps the whole question set and stores the recomputed totals atomically.
func (r *formRepository) ReplaceQuestions(ctx context.Context, formID uint, questions []models.Question, totals FormTotals) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", formID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].ID = 0
			questions[i].FormID = formID
			questions[i].OrderIndex = i
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&models.Form{}).
			Where("id = ?", formID).
			Updates(map[string]interface{}{
				"total_points": totals.TotalPoints,
				"total_mcqs":   totals.TotalMCQs,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *formRepository) withQuestions(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC").Order("id ASC")
	})
}

func normalizeFormSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "created_at", "created_at:asc", "created_at.asc":
		return "created_at ASC"
	case "updated_at", "updated_at:asc", "updated_at.asc":
		return "updated_at ASC"
	case "-updated_at", "updated_at:desc", "updated_at.desc":
		return "updated_at DESC"
	case "title", "title:asc", "title.asc":
		return "title ASC"
	case "-title", "title:desc", "title.desc":
		return "title DESC"
	default:
		return "created_at DESC"
	}
}
