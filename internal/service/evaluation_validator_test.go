package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/service"
)

func scorePtr(v float64) *float64 {
	return &v
}

func TestValidateEvaluationRequestRejections(t *testing.T) {
	cases := []struct {
		name    string
		request *dto.EvaluationCreateRequest
		wantErr error
	}{
		{name: "nil request", request: nil, wantErr: service.ErrRequestRequired},
		{name: "empty description", request: &dto.EvaluationCreateRequest{Description: "", Score: scorePtr(5)}, wantErr: service.ErrDescriptionRequired},
		{name: "blank description", request: &dto.EvaluationCreateRequest{Description: "   ", Score: scorePtr(5)}, wantErr: service.ErrDescriptionRequired},
		{name: "missing score", request: &dto.EvaluationCreateRequest{Description: "Sistema lento"}, wantErr: service.ErrScoreRequired},
		{name: "nan score", request: &dto.EvaluationCreateRequest{Description: "Sistema lento", Score: scorePtr(math.NaN())}, wantErr: service.ErrScoreNaN},
		{name: "positive infinity", request: &dto.EvaluationCreateRequest{Description: "Sistema lento", Score: scorePtr(math.Inf(1))}, wantErr: service.ErrScoreInfinite},
		{name: "negative infinity", request: &dto.EvaluationCreateRequest{Description: "Sistema lento", Score: scorePtr(math.Inf(-1))}, wantErr: service.ErrScoreInfinite},
		{name: "below range", request: &dto.EvaluationCreateRequest{Description: "Sistema lento", Score: scorePtr(-1)}, wantErr: service.ErrScoreOutOfRange},
		{name: "above range", request: &dto.EvaluationCreateRequest{Description: "Sistema lento", Score: scorePtr(10.5)}, wantErr: service.ErrScoreOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateEvaluationRequest(tc.request)
			require.ErrorIs(t, err, tc.wantErr)
			require.True(t, service.IsValidationError(err))
		})
	}
}

func TestValidateEvaluationRequestAcceptsBoundaries(t *testing.T) {
	for _, score := range []float64{0, 2, 5, 7, 10} {
		request := &dto.EvaluationCreateRequest{Description: "Atendimento excelente", Score: scorePtr(score)}
		require.NoError(t, service.ValidateEvaluationRequest(request))
	}
}

func TestValidationOrderStopsAtFirstFailure(t *testing.T) {
	// Description and score both invalid: the description rule wins.
	request := &dto.EvaluationCreateRequest{Description: "  ", Score: scorePtr(math.NaN())}
	require.ErrorIs(t, service.ValidateEvaluationRequest(request), service.ErrDescriptionRequired)
}

func TestIsValidationErrorIgnoresOtherErrors(t *testing.T) {
	require.False(t, service.IsValidationError(service.ErrPersistFailed))
	require.False(t, service.IsValidationError(nil))
}
