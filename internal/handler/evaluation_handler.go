package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/service"
	"github.com/classinsight/classinsight-api/internal/utils"
)

const malformedBodyMessage = "JSON malformado ou com formato inválido. Verifique campos 'descricao' e 'nota'."

// EvaluationHandler handles evaluation submissions.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
}

func (h *EvaluationHandler) submit(c *fiber.Ctx) error {
	var payload dto.EvaluationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, malformedBodyMessage)
	}

	response, err := h.service.Process(c.UserContext(), payload)
	if err != nil {
		switch {
		case service.IsValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateEvaluation):
			return utils.SendError(c, fiber.StatusTooManyRequests, "avaliação duplicada, tente novamente mais tarde")
		default:
			h.logger.Error().Err(err).Msg("falha ao processar avaliação")
			return utils.SendError(c, fiber.StatusInternalServerError, "erro interno ao processar avaliação")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "avaliação processada com sucesso", response)
}
