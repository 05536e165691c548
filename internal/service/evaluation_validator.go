package service

import (
	"errors"
	"math"
	"strings"

	"github.com/classinsight/classinsight-api/internal/dto"
)

// Validation failures surfaced to API clients. Each failing rule has its own
// message so the caller knows exactly which field to fix.
var (
	ErrRequestRequired     = errors.New("corpo da requisição é obrigatório")
	ErrDescriptionRequired = errors.New("descrição é obrigatória")
	ErrScoreRequired       = errors.New("nota é obrigatória")
	ErrScoreNaN            = errors.New("nota não pode ser NaN")
	ErrScoreInfinite       = errors.New("nota não pode ser infinita")
	ErrScoreOutOfRange     = errors.New("nota deve estar entre 0 e 10")
)

// ValidateEvaluationRequest checks the intake payload rule by rule, stopping
// at the first failure. It has no side effects and the same input always
// yields the same result.
func ValidateEvaluationRequest(request *dto.EvaluationCreateRequest) error {
	if request == nil {
		return ErrRequestRequired
	}

	if strings.TrimSpace(request.Description) == "" {
		return ErrDescriptionRequired
	}

	if request.Score == nil {
		return ErrScoreRequired
	}

	score := *request.Score
	if math.IsNaN(score) {
		return ErrScoreNaN
	}
	if math.IsInf(score, 0) {
		return ErrScoreInfinite
	}
	if score < 0 || score > 10 {
		return ErrScoreOutOfRange
	}

	return nil
}

// IsValidationError reports whether the error is one of the intake
// validation failures above.
func IsValidationError(err error) bool {
	for _, candidate := range []error{
		ErrRequestRequired,
		ErrDescriptionRequired,
		ErrScoreRequired,
		ErrScoreNaN,
		ErrScoreInfinite,
		ErrScoreOutOfRange,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
