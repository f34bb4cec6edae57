package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/models"
	"github.com/noah-isme/formkit-api/internal/repository"
)

// ErrFormHasNoQuestions indicates a publish attempt on an empty form.
var ErrFormHasNoQuestions = errors.New("form has no questions")

// DashboardInvalidator drops cached owner aggregates after writes.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, ownerID uint)
}

// FormService exposes owner operations on forms and their questions.
type FormService interface {
	Create(ctx context.Context, ownerID uint, req dto.FormCreateRequest) (dto.FormDetail, error)
	Get(ctx context.Context, ownerID, id uint) (dto.FormDetail, error)
	List(ctx context.Context, ownerID uint, req dto.FormListRequest) (dto.FormListResponse, error)
	Update(ctx context.Context, ownerID, id uint, req dto.FormUpdateRequest) (dto.FormDetail, error)
	Delete(ctx context.Context, ownerID, id uint) error
	SaveQuestions(ctx context.Context, ownerID, id uint, req dto.SaveQuestionsRequest) (dto.FormDetail, error)
	Publish(ctx context.Context, ownerID, id uint) (dto.FormDetail, error)
	Close(ctx context.Context, ownerID, id uint) (dto.FormDetail, error)
}

type formService struct {
	repo      repository.FormRepository
	dashboard DashboardInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFormService constructs the form builder service. dashboard may be nil.
func NewFormService(repo repository.FormRepository, dashboard DashboardInvalidator, validate *validator.Validate, logger zerolog.Logger) FormService {
	return &formService{
		repo:      repo,
		dashboard: dashboard,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "form_service").Logger(),
		now:       time.Now,
	}
}

func (s *formService) Create(ctx context.Context, ownerID uint, req dto.FormCreateRequest) (dto.FormDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FormDetail{}, err
	}

	title := s.sanitize(req.Title)
	if title == "" {
		return dto.FormDetail{}, &ValidationError{Fields: map[string]string{"title": "is required"}}
	}

	form := models.Form{
		PublicID:              uuid.NewString(),
		OwnerID:               ownerID,
		Title:                 title,
		Description:           s.sanitize(req.Description),
		Status:                models.FormStatusDraft,
		AllowAnonymous:        boolOr(req.AllowAnonymous, true),
		CollectEmail:          boolOr(req.CollectEmail, false),
		RequireLogin:          boolOr(req.RequireLogin, false),
		IsQuiz:                boolOr(req.IsQuiz, false),
		AllowRetake:           boolOr(req.AllowRetake, false),
		ShowResults:           boolOr(req.ShowResults, true),
		TimeLimitMinutes:      req.TimeLimitMinutes,
		PassingScore:          req.PassingScore,
		MinCorrectMCQs:        req.MinCorrectMCQs,
		UsePercentageCriteria: boolOr(req.UsePercentageCriteria, false),
		UseMCQCriteria:        boolOr(req.UseMCQCriteria, false),
		CustomThankYouMessage: s.sanitize(req.CustomThankYouMessage),
	}

	if err := validatePassingPolicy(form, false); err != nil {
		return dto.FormDetail{}, err
	}

	if err := s.repo.Create(ctx, &form); err != nil {
		return dto.FormDetail{}, err
	}

	s.logger.Info().Uint("form_id", form.ID).Uint("owner_id", ownerID).Bool("is_quiz", form.IsQuiz).Msg("form created")
	s.invalidate(ctx, ownerID)

	return dto.NewFormDetail(form), nil
}

func (s *formService) Get(ctx context.Context, ownerID, id uint) (dto.FormDetail, error) {
	form, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return dto.FormDetail{}, err
	}
	return dto.NewFormDetail(form), nil
}

func (s *formService) List(ctx context.Context, ownerID uint, req dto.FormListRequest) (dto.FormListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FormListResponse{}, err
	}

	filter := repository.FormFilter{
		OwnerID:  ownerID,
		Search:   strings.TrimSpace(req.Search),
		Status:   strings.TrimSpace(req.Status),
		Sort:     strings.TrimSpace(req.Sort),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}

	forms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.FormListResponse{}, err
	}

	return dto.FormListResponse{
		Items: dto.NewFormSummarySlice(forms),
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *formService) Update(ctx context.Context, ownerID, id uint, req dto.FormUpdateRequest) (dto.FormDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FormDetail{}, err
	}

	form, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return dto.FormDetail{}, err
	}

	if req.Title != nil {
		title := s.sanitize(*req.Title)
		if title == "" {
			return dto.FormDetail{}, &ValidationError{Fields: map[string]string{"title": "is required"}}
		}
		form.Title = title
	}
	if req.Description != nil {
		form.Description = s.sanitize(*req.Description)
	}
	if req.CustomThankYouMessage != nil {
		form.CustomThankYouMessage = s.sanitize(*req.CustomThankYouMessage)
	}

	applyBool(&form.AllowAnonymous, req.AllowAnonymous)
	applyBool(&form.CollectEmail, req.CollectEmail)
	applyBool(&form.RequireLogin, req.RequireLogin)
	applyBool(&form.IsQuiz, req.IsQuiz)
	applyBool(&form.AllowRetake, req.AllowRetake)
	applyBool(&form.ShowResults, req.ShowResults)
	applyBool(&form.UsePercentageCriteria, req.UsePercentageCriteria)
	applyBool(&form.UseMCQCriteria, req.UseMCQCriteria)

	switch {
	case req.ClearTimeLimit:
		form.TimeLimitMinutes = nil
	case req.TimeLimitMinutes != nil:
		form.TimeLimitMinutes = req.TimeLimitMinutes
	}
	switch {
	case req.ClearPassingScore:
		form.PassingScore = nil
	case req.PassingScore != nil:
		form.PassingScore = req.PassingScore
	}
	switch {
	case req.ClearMinCorrectMCQs:
		form.MinCorrectMCQs = nil
	case req.MinCorrectMCQs != nil:
		form.MinCorrectMCQs = req.MinCorrectMCQs
	}

	if err := validatePassingPolicy(form, form.Status != models.FormStatusDraft); err != nil {
		return dto.FormDetail{}, err
	}

	form.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &form); err != nil {
		return dto.FormDetail{}, err
	}

	s.invalidate(ctx, ownerID)
	return dto.NewFormDetail(form), nil
}

func (s *formService) Delete(ctx context.Context, ownerID, id uint) error {
	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFormNotFound
		}
		return err
	}

	s.logger.Info().Uint("form_id", id).Uint("owner_id", ownerID).Msg("form deleted")
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *formService) SaveQuestions(ctx context.Context, ownerID, id uint, req dto.SaveQuestionsRequest) (dto.FormDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FormDetail{}, err
	}

	form, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return dto.FormDetail{}, err
	}

	questions, err := s.buildQuestions(req.Questions)
	if err != nil {
		return dto.FormDetail{}, err
	}

	if form.IsPublished() && len(questions) == 0 {
		return dto.FormDetail{}, ErrFormHasNoQuestions
	}

	totals := computeTotals(questions)
	candidate := form
	candidate.TotalPoints = totals.TotalPoints
	candidate.TotalMCQs = totals.TotalMCQs
	if err := validatePassingPolicy(candidate, form.Status != models.FormStatusDraft); err != nil {
		return dto.FormDetail{}, err
	}

	if err := s.repo.ReplaceQuestions(ctx, form.ID, questions, totals); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FormDetail{}, ErrFormNotFound
		}
		return dto.FormDetail{}, err
	}

	s.logger.Info().
		Uint("form_id", form.ID).
		Int("questions", len(questions)).
		Int("total_points", totals.TotalPoints).
		Int("total_mcqs", totals.TotalMCQs).
		Msg("form questions replaced")

	return s.Get(ctx, ownerID, id)
}

func (s *formService) Publish(ctx context.Context, ownerID, id uint) (dto.FormDetail, error) {
	form, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return dto.FormDetail{}, err
	}

	if len(form.Questions) == 0 {
		return dto.FormDetail{}, ErrFormHasNoQuestions
	}
	if err := validatePassingPolicy(form, true); err != nil {
		return dto.FormDetail{}, err
	}

	return s.transition(ctx, form, models.FormStatusPublished)
}

func (s *formService) Close(ctx context.Context, ownerID, id uint) (dto.FormDetail, error) {
	form, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return dto.FormDetail{}, err
	}
	return s.transition(ctx, form, models.FormStatusClosed)
}

func (s *formService) transition(ctx context.Context, form models.Form, status string) (dto.FormDetail, error) {
	if form.Status == status {
		return dto.NewFormDetail(form), nil
	}

	previous := form.Status
	form.Status = status
	form.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &form); err != nil {
		return dto.FormDetail{}, err
	}

	s.logger.Info().Uint("form_id", form.ID).Str("from", previous).Str("to", status).Msg("form status changed")
	s.invalidate(ctx, form.OwnerID)
	return dto.NewFormDetail(form), nil
}

func (s *formService) loadOwned(ctx context.Context, ownerID, id uint) (models.Form, error) {
	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Form{}, ErrFormNotFound
		}
		return models.Form{}, err
	}
	if form.OwnerID != ownerID {
		return models.Form{}, ErrFormNotFound
	}
	return form, nil
}

func (s *formService) invalidate(ctx context.Context, ownerID uint) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, ownerID)
	}
}

func (s *formService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func applyBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
