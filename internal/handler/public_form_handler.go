package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/service"
	"github.com/noah-isme/formkit-api/internal/utils"
)

// PublicFormHandler serves published forms to respondents and accepts their answers.
type PublicFormHandler struct {
	service      service.SubmissionService
	logger       zerolog.Logger
	submitLimits []fiber.Handler
}

// NewPublicFormHandler constructs the handler. submitLimits run in front of the submit route only.
func NewPublicFormHandler(service service.SubmissionService, logger zerolog.Logger, submitLimits ...fiber.Handler) *PublicFormHandler {
	return &PublicFormHandler{
		service:      service,
		logger:       logger.With().Str("component", "public_form_handler").Logger(),
		submitLimits: submitLimits,
	}
}

// Register attaches routes.
func (h *PublicFormHandler) Register(router fiber.Router) {
	router.Get("/:publicId", h.get)

	handlers := append([]fiber.Handler{}, h.submitLimits...)
	handlers = append(handlers, h.submit)
	router.Post("/:publicId/responses", handlers...)
}

func (h *PublicFormHandler) get(c *fiber.Ctx) error {
	publicID := strings.TrimSpace(c.Params("publicId"))
	if publicID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	form, err := h.service.GetPublicForm(c.UserContext(), publicID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "form retrieved", form)
}

func (h *PublicFormHandler) submit(c *fiber.Ctx) error {
	publicID := strings.TrimSpace(c.Params("publicId"))
	if publicID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	respondent := service.Respondent{
		UserID:    optionalUserID(c),
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}

	result, err := h.service.Submit(c.UserContext(), publicID, payload, respondent)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, result.Message, result)
}

func (h *PublicFormHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, resp := writeValidationError(c, err); handled {
		return resp
	}
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "form not found")
	case errors.Is(err, service.ErrLoginRequired), errors.Is(err, service.ErrIdentityRequired):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrFormNotPublished), errors.Is(err, service.ErrRetakeNotAllowed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to process public form request")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
