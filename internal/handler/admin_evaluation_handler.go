package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/service"
	"github.com/classinsight/classinsight-api/internal/utils"
)

// AdminEvaluationHandler serves the authenticated read and maintenance
// endpoints over stored evaluations.
type AdminEvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewAdminEvaluationHandler constructs the admin evaluation handler.
func NewAdminEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *AdminEvaluationHandler {
	return &AdminEvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_evaluation_handler").Logger(),
	}
}

// Register wires admin evaluation routes.
func (h *AdminEvaluationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/stats", h.stats)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.remove)
}

func (h *AdminEvaluationHandler) list(c *fiber.Ctx) error {
	var filter dto.EvaluationFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "parâmetro 'nota_minima' inválido")
	}

	evaluations, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return utils.SendError(c, fiber.StatusBadRequest, "parâmetro 'nota_minima' deve estar entre 0 e 10")
		}
		h.logger.Error().Err(err).Msg("falha ao listar avaliações")
		return utils.SendError(c, fiber.StatusInternalServerError, "erro ao listar avaliações")
	}

	return utils.SendSuccess(c, "avaliações listadas", evaluations)
}

func (h *AdminEvaluationHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("falha ao calcular estatísticas")
		return utils.SendError(c, fiber.StatusInternalServerError, "erro ao calcular estatísticas")
	}

	return utils.SendSuccess(c, "estatísticas calculadas", stats)
}

func (h *AdminEvaluationHandler) get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	evaluation, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		h.logger.Error().Err(err).Int64("id", id).Msg("falha ao buscar avaliação")
		return utils.SendError(c, fiber.StatusInternalServerError, "erro ao buscar avaliação")
	}
	if evaluation == nil {
		return utils.SendError(c, fiber.StatusNotFound, "avaliação não encontrada")
	}

	return utils.SendSuccess(c, "avaliação encontrada", evaluation)
}

func (h *AdminEvaluationHandler) remove(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	deleted, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		h.logger.Error().Err(err).Int64("id", id).Msg("falha ao excluir avaliação")
		return utils.SendError(c, fiber.StatusInternalServerError, "erro ao excluir avaliação")
	}
	if !deleted {
		return utils.SendError(c, fiber.StatusNotFound, "avaliação não encontrada")
	}

	return utils.SendSuccess(c, "avaliação excluída", nil)
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
