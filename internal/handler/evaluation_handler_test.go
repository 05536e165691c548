package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/handler"
	"github.com/classinsight/classinsight-api/internal/service"
)

type mockEvaluationService struct {
	lastRequest dto.EvaluationCreateRequest
	response    dto.EvaluationResponse
	processErr  error

	detail    *dto.EvaluationDetailResponse
	list      []dto.EvaluationDetailResponse
	listErr   error
	stats     dto.StatsResponse
	deleted   bool
	deleteErr error
}

func (m *mockEvaluationService) Process(_ context.Context, req dto.EvaluationCreateRequest) (dto.EvaluationResponse, error) {
	m.lastRequest = req
	if m.processErr != nil {
		return dto.EvaluationResponse{}, m.processErr
	}
	return m.response, nil
}

func (m *mockEvaluationService) Get(_ context.Context, _ int64) (*dto.EvaluationDetailResponse, error) {
	return m.detail, nil
}

func (m *mockEvaluationService) List(_ context.Context, _ dto.EvaluationFilter) ([]dto.EvaluationDetailResponse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockEvaluationService) Stats(_ context.Context) (dto.StatsResponse, error) {
	return m.stats, nil
}

func (m *mockEvaluationService) Delete(_ context.Context, _ int64) (bool, error) {
	return m.deleted, m.deleteErr
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func newEvaluationApp(svc service.EvaluationService) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	handler.NewEvaluationHandler(svc, logger).Register(app.Group("/api/v1/avaliacoes"))
	return app
}

func postEvaluation(t *testing.T, app *fiber.App, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/avaliacoes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestEvaluationHandler_SubmitSuccess(t *testing.T) {
	svc := &mockEvaluationService{response: dto.EvaluationResponse{
		Description: "Sistema fora do ar - Nota: 1",
		Urgency:     "CRITICO",
		SentAt:      "20/08/2026 10:30:00",
	}}
	app := newEvaluationApp(svc)

	body, err := json.Marshal(map[string]interface{}{"descricao": "Sistema fora do ar", "nota": 1})
	require.NoError(t, err)

	resp := postEvaluation(t, app, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.EvaluationResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "CRITICO", response.Data.Urgency)
	require.Equal(t, "Sistema fora do ar", svc.lastRequest.Description)
	require.NotNil(t, svc.lastRequest.Score)
	require.Equal(t, float64(1), *svc.lastRequest.Score)
}

func TestEvaluationHandler_MalformedJSON(t *testing.T) {
	svc := &mockEvaluationService{}
	app := newEvaluationApp(svc)

	resp := postEvaluation(t, app, []byte(`{"descricao": "incompleto"`))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Contains(t, response.Message, "descricao")
}

func TestEvaluationHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "validation", err: service.ErrScoreOutOfRange, statusCode: fiber.StatusBadRequest},
		{name: "duplicate", err: service.ErrDuplicateEvaluation, statusCode: fiber.StatusTooManyRequests},
		{name: "persistence", err: service.ErrPersistFailed, statusCode: fiber.StatusInternalServerError},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockEvaluationService{processErr: tc.err}
			app := newEvaluationApp(svc)

			body, err := json.Marshal(map[string]interface{}{"descricao": "qualquer", "nota": 5})
			require.NoError(t, err)

			resp := postEvaluation(t, app, body)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestEvaluationHandler_ValidationMessagePropagates(t *testing.T) {
	svc := &mockEvaluationService{processErr: service.ErrScoreOutOfRange}
	app := newEvaluationApp(svc)

	body, err := json.Marshal(map[string]interface{}{"descricao": "qualquer", "nota": 99})
	require.NoError(t, err)

	resp := postEvaluation(t, app, body)

	var response struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "nota deve estar entre 0 e 10", response.Message)
}
