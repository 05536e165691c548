package dto

import (
	"time"

	"github.com/classinsight/classinsight-api/internal/models"
)

// SentAtLayout is the timestamp layout used on the intake response and in
// notification payloads (dd/MM/yyyy HH:mm:ss).
const SentAtLayout = "02/01/2006 15:04:05"

// EvaluationCreateRequest describes the intake payload. Wire names keep the
// original Portuguese contract.
type EvaluationCreateRequest struct {
	Description string   `json:"descricao" validate:"required"`
	Score       *float64 `json:"nota" validate:"required"`
}

// EvaluationResponse is returned by the intake endpoint and doubles as the
// notification payload handed to the dispatcher.
type EvaluationResponse struct {
	Description string `json:"descricao"`
	Urgency     string `json:"urgencia"`
	SentAt      string `json:"dataEnvio"`
}

// UrgencyLevel recovers the typed urgency from the serialized payload.
func (r EvaluationResponse) UrgencyLevel() models.Urgency {
	return models.Urgency(r.Urgency)
}

// EvaluationDetailResponse serializes a stored evaluation for admin views.
type EvaluationDetailResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"descricao"`
	Score       float64   `json:"nota"`
	Urgency     string    `json:"urgencia"`
	CreatedAt   time.Time `json:"data_criacao"`
}

// NewEvaluationDetailResponse maps a model to its admin representation.
func NewEvaluationDetailResponse(evaluation models.Evaluation) EvaluationDetailResponse {
	return EvaluationDetailResponse{
		ID:          evaluation.ID,
		Description: evaluation.Description,
		Score:       evaluation.Score,
		Urgency:     string(evaluation.Urgency),
		CreatedAt:   evaluation.CreatedAt,
	}
}

// NewEvaluationDetailResponseSlice maps a list of models.
func NewEvaluationDetailResponseSlice(evaluations []models.Evaluation) []EvaluationDetailResponse {
	responses := make([]EvaluationDetailResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationDetailResponse(evaluation))
	}
	return responses
}

// EvaluationFilter describes query string filters for admin listings.
type EvaluationFilter struct {
	MinScore *float64 `query:"nota_minima" validate:"omitempty,gte=0,lte=10"`
}

// StatsResponse serializes aggregate statistics.
type StatsResponse struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// NewStatsResponse maps aggregate statistics to their API representation.
func NewStatsResponse(stats models.EvaluationStats) StatsResponse {
	return StatsResponse{
		Count: stats.Count,
		Mean:  stats.Mean,
		Min:   stats.Min,
		Max:   stats.Max,
	}
}
