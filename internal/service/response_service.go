package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/repository"
)

// ResponseService exposes owner read access to collected responses.
type ResponseService interface {
	List(ctx context.Context, ownerID, formID uint, req dto.ResponseListRequest) (dto.ResponseListResponse, error)
	Get(ctx context.Context, ownerID, formID, responseID uint) (dto.ResponseDetail, error)
	Stats(ctx context.Context, ownerID, formID uint) (dto.FormStats, error)
}

type responseService struct {
	forms     repository.FormRepository
	responses repository.ResponseRepository
	attempts  repository.AttemptRepository
	logger    zerolog.Logger
}

// NewResponseService constructs the response reader.
func NewResponseService(forms repository.FormRepository, responses repository.ResponseRepository, attempts repository.AttemptRepository, logger zerolog.Logger) ResponseService {
	return &responseService{
		forms:     forms,
		responses: responses,
		attempts:  attempts,
		logger:    logger.With().Str("component", "response_service").Logger(),
	}
}

func (s *responseService) List(ctx context.Context, ownerID, formID uint, req dto.ResponseListRequest) (dto.ResponseListResponse, error) {
	if err := s.ensureOwner(ctx, ownerID, formID); err != nil {
		return dto.ResponseListResponse{}, err
	}

	filter := repository.ResponseFilter{
		FormID:   formID,
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}

	responses, total, err := s.responses.List(ctx, filter)
	if err != nil {
		return dto.ResponseListResponse{}, err
	}

	items := make([]dto.ResponseDetail, 0, len(responses))
	for _, response := range responses {
		items = append(items, dto.NewResponseDetail(response))
	}

	return dto.ResponseListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *responseService) Get(ctx context.Context, ownerID, formID, responseID uint) (dto.ResponseDetail, error) {
	if err := s.ensureOwner(ctx, ownerID, formID); err != nil {
		return dto.ResponseDetail{}, err
	}

	response, err := s.responses.GetByID(ctx, formID, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResponseDetail{}, ErrResponseNotFound
		}
		return dto.ResponseDetail{}, err
	}
	return dto.NewResponseDetail(response), nil
}

func (s *responseService) Stats(ctx context.Context, ownerID, formID uint) (dto.FormStats, error) {
	if err := s.ensureOwner(ctx, ownerID, formID); err != nil {
		return dto.FormStats{}, err
	}

	count, err := s.responses.CountByForm(ctx, formID)
	if err != nil {
		return dto.FormStats{}, err
	}

	attempts, err := s.attempts.StatsByForm(ctx, formID)
	if err != nil {
		return dto.FormStats{}, err
	}

	stats := dto.FormStats{
		FormID:            formID,
		ResponseCount:     count,
		AttemptCount:      attempts.Attempts,
		PassCount:         attempts.Passed,
		PassRate:          percentOf(attempts.Passed, attempts.Attempts),
		HighestPercentage: attempts.Highest,
		LowestPercentage:  attempts.Lowest,
	}
	if attempts.Average != nil {
		stats.AveragePercentage = *attempts.Average
	}
	return stats, nil
}

func (s *responseService) ensureOwner(ctx context.Context, ownerID, formID uint) error {
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFormNotFound
		}
		return err
	}
	if form.OwnerID != ownerID {
		return ErrFormNotFound
	}
	return nil
}
