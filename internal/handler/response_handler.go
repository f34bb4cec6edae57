package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/service"
	"github.com/noah-isme/formkit-api/internal/utils"
)

// ResponseHandler exposes collected responses to the form owner.
type ResponseHandler struct {
	service service.ResponseService
	logger  zerolog.Logger
}

// NewResponseHandler constructs the handler.
func NewResponseHandler(service service.ResponseService, logger zerolog.Logger) *ResponseHandler {
	return &ResponseHandler{
		service: service,
		logger:  logger.With().Str("component", "response_handler").Logger(),
	}
}

// Register attaches routes under a form group.
func (h *ResponseHandler) Register(router fiber.Router) {
	router.Get("/:id/responses", h.list)
	router.Get("/:id/responses/:responseId", h.get)
	router.Get("/:id/stats", h.stats)
}

func (h *ResponseHandler) list(c *fiber.Ctx) error {
	formID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(c.UserContext(), userIDFromContext(c), formID, dto.ResponseListRequest{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, result.Items, "responses retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *ResponseHandler) get(c *fiber.Ctx) error {
	formID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	responseID, err := parseUintParam(c, "responseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Get(c.UserContext(), userIDFromContext(c), formID, responseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "response retrieved", response)
}

func (h *ResponseHandler) stats(c *fiber.Ctx) error {
	formID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.Stats(c.UserContext(), userIDFromContext(c), formID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "form statistics retrieved", stats)
}

func (h *ResponseHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "form not found")
	case errors.Is(err, service.ErrResponseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "response not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to read responses")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
