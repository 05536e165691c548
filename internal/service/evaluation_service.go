package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/models"
	"github.com/classinsight/classinsight-api/internal/observability"
	"github.com/classinsight/classinsight-api/internal/repository"
)

var (
	// ErrPersistFailed indicates the evaluation could not be stored.
	ErrPersistFailed = errors.New("erro ao persistir avaliação no banco de dados")
	// ErrDuplicateEvaluation indicates an identical submission arrived recently.
	ErrDuplicateEvaluation = errors.New("avaliação duplicada")
)

// EvaluationService runs the intake pipeline and serves admin reads.
type EvaluationService interface {
	Process(ctx context.Context, request dto.EvaluationCreateRequest) (dto.EvaluationResponse, error)
	Get(ctx context.Context, id int64) (*dto.EvaluationDetailResponse, error)
	List(ctx context.Context, filter dto.EvaluationFilter) ([]dto.EvaluationDetailResponse, error)
	Stats(ctx context.Context) (dto.StatsResponse, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type evaluationService struct {
	repo       repository.EvaluationRepository
	cache      *redis.Client
	validator  *validator.Validate
	dispatcher NotificationDispatcher
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	dedupeTTL  time.Duration
	tracer     trace.Tracer
}

// NewEvaluationService constructs the intake service. The cache client is
// optional; without it the duplicate guard is skipped.
func NewEvaluationService(repo repository.EvaluationRepository, cache *redis.Client, validate *validator.Validate, dispatcher NotificationDispatcher, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		repo:       repo,
		cache:      cache,
		validator:  validate,
		dispatcher: dispatcher,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "evaluation_service").Logger(),
		dedupeTTL:  5 * time.Minute,
		tracer:     otel.Tracer("github.com/classinsight/classinsight-api/internal/service/evaluation"),
	}
}

// Process validates, persists and classifies a submission, then hands the
// notification payload to the dispatcher. The dispatcher outcome never
// changes the returned response: once stored, the evaluation is accepted.
func (s *evaluationService) Process(ctx context.Context, request dto.EvaluationCreateRequest) (dto.EvaluationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evaluations.process")
	defer span.End()

	request.Description = strings.TrimSpace(s.sanitizer.Sanitize(request.Description))

	if err := ValidateEvaluationRequest(&request); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.EvaluationResponse{}, err
	}

	if s.cache != nil {
		checksum := computeChecksum(request.Description, strconv.FormatFloat(*request.Score, 'f', -1, 64))
		span.SetAttributes(attribute.String("evaluation.checksum", checksum))

		key := fmt.Sprintf("avaliacao:dedupe:%s", checksum)
		fresh, err := s.cache.SetNX(ctx, key, 1, s.dedupeTTL).Result()
		if err != nil {
			span.RecordError(err)
			return dto.EvaluationResponse{}, err
		}
		if !fresh {
			span.SetStatus(codes.Error, "duplicate submission")
			return dto.EvaluationResponse{}, ErrDuplicateEvaluation
		}
	}

	urgency := models.UrgencyFromScore(request.Score)
	span.SetAttributes(attribute.String("evaluation.urgency", string(urgency)))

	evaluation := models.Evaluation{
		Description: request.Description,
		Score:       *request.Score,
		Urgency:     urgency,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, &evaluation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		s.logger.Error().Err(err).Msg("falha ao inserir avaliação")
		return dto.EvaluationResponse{}, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	observability.EvaluationsProcessed().WithLabelValues(string(urgency)).Inc()

	response := dto.EvaluationResponse{
		Description: fmt.Sprintf("%s - Nota: %s", evaluation.Description, strconv.FormatFloat(evaluation.Score, 'f', -1, 64)),
		Urgency:     string(urgency),
		SentAt:      time.Now().Format(dto.SentAtLayout),
	}

	s.dispatcher.Publish(ctx, response)

	s.logger.Info().Int64("id", evaluation.ID).Str("urgencia", string(urgency)).Msg("avaliação processada")
	span.SetStatus(codes.Ok, "processed")

	return response, nil
}

// Get returns nil without error when the id is absent.
func (s *evaluationService) Get(ctx context.Context, id int64) (*dto.EvaluationDetailResponse, error) {
	evaluation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if evaluation == nil {
		return nil, nil
	}

	response := dto.NewEvaluationDetailResponse(*evaluation)
	return &response, nil
}

func (s *evaluationService) List(ctx context.Context, filter dto.EvaluationFilter) ([]dto.EvaluationDetailResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	var (
		evaluations []models.Evaluation
		err         error
	)
	if filter.MinScore != nil {
		evaluations, err = s.repo.FindByMinScore(ctx, *filter.MinScore)
	} else {
		evaluations, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewEvaluationDetailResponseSlice(evaluations), nil
}

func (s *evaluationService) Stats(ctx context.Context) (dto.StatsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}
	return dto.NewStatsResponse(stats), nil
}

func (s *evaluationService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func computeChecksum(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
		hasher.Write([]byte("|"))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
