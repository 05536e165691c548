package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/models"
	"github.com/classinsight/classinsight-api/internal/service"
)

type reportEvaluationRepo struct {
	stubEvaluationRepo
	evaluations []models.Evaluation
	findErr     error
}

func (r *reportEvaluationRepo) FindAll(_ context.Context) ([]models.Evaluation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.evaluations, nil
}

type stubReportRepo struct {
	saved     []models.Report
	createErr error
}

func (r *stubReportRepo) Create(_ context.Context, report *models.Report) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.saved = append(r.saved, *report)
	return nil
}

func (r *stubReportRepo) FindLatest(_ context.Context, _ int) ([]models.Report, error) {
	return r.saved, nil
}

type reportDispatcher struct {
	configured bool
	subjects   []string
	bodies     []string
}

func (d *reportDispatcher) Publish(_ context.Context, _ dto.EvaluationResponse) {}

func (d *reportDispatcher) EmailAdmins(_ context.Context, subject, body string) bool {
	d.subjects = append(d.subjects, subject)
	d.bodies = append(d.bodies, body)
	return true
}

func (d *reportDispatcher) EmailConfigured() bool {
	return d.configured
}

func sampleEvaluations(base time.Time) []models.Evaluation {
	return []models.Evaluation{
		{ID: 1, Description: "Sistema fora do ar", Score: 1, Urgency: models.UrgencyCritical, CreatedAt: base},
		{ID: 2, Description: "Fila demorada", Score: 4, Urgency: models.UrgencyHigh, CreatedAt: base},
		{ID: 3, Description: "Sala abafada", Score: 6, Urgency: models.UrgencyMedium, CreatedAt: base.AddDate(0, 0, -1)},
		{ID: 4, Description: "Atendimento ótimo", Score: 9, Urgency: models.UrgencyLow, CreatedAt: base.AddDate(0, 0, -1)},
	}
}

func TestReportRunEmailsRenderedSections(t *testing.T) {
	base := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	repo := &reportEvaluationRepo{evaluations: sampleEvaluations(base)}
	repo.stats = models.EvaluationStats{Count: 4, Mean: 5, Min: 1, Max: 9}
	reports := &stubReportRepo{}
	dispatcher := &reportDispatcher{configured: true}

	svc := service.NewReportService(repo, reports, dispatcher, testLogger())
	svc.Run(context.Background())

	require.Len(t, dispatcher.subjects, 1)
	require.Contains(t, dispatcher.subjects[0], "Relatório de Avaliações")

	body := dispatcher.bodies[0]
	require.Contains(t, body, "RELATÓRIO DE AVALIAÇÕES DE DESEMPENHO")
	require.Contains(t, body, "RESUMO")
	require.Contains(t, body, "Total de Avaliações Analisadas: 4")
	require.Contains(t, body, "ANÁLISE POR CLASSIFICAÇÃO DE DESEMPENHO")
	require.Contains(t, body, "Urgência Crítica (nota <= 2): 1 avaliações (25.00%)")
	require.Contains(t, body, "INDICADORES")
	require.Contains(t, body, "Avaliação com nota Máxima: 9.00")
	require.Contains(t, body, "DISTRIBUIÇÃO POR DIA")
	require.Contains(t, body, "20/08/2026: 2 avaliação(ões)")
	require.Contains(t, body, "19/08/2026: 2 avaliação(ões)")
	require.Contains(t, body, "Documento gerado automaticamente pelo ClassInsight")
}

func TestReportRunPersistsSummaryRow(t *testing.T) {
	base := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	repo := &reportEvaluationRepo{evaluations: sampleEvaluations(base)}
	repo.stats = models.EvaluationStats{Count: 4, Mean: 5, Min: 1, Max: 9}
	reports := &stubReportRepo{}

	svc := service.NewReportService(repo, reports, &reportDispatcher{configured: true}, testLogger())
	svc.Run(context.Background())

	require.Len(t, reports.saved, 1)
	require.Equal(t, int64(4), reports.saved[0].TotalEvaluations)
	require.Equal(t, float64(5), reports.saved[0].MeanScore)
	require.Contains(t, string(reports.saved[0].Breakdown), "CRITICO")
}

func TestReportRunWithoutEvaluationsSkipsDelivery(t *testing.T) {
	repo := &reportEvaluationRepo{}
	reports := &stubReportRepo{}
	dispatcher := &reportDispatcher{configured: true}

	svc := service.NewReportService(repo, reports, dispatcher, testLogger())
	svc.Run(context.Background())

	require.Empty(t, dispatcher.subjects)
	require.Empty(t, reports.saved)
}

func TestReportRunSurvivesReadFailure(t *testing.T) {
	repo := &reportEvaluationRepo{findErr: errors.New("connection refused")}
	dispatcher := &reportDispatcher{configured: true}

	svc := service.NewReportService(repo, &stubReportRepo{}, dispatcher, testLogger())
	svc.Run(context.Background())

	require.Empty(t, dispatcher.subjects)
}

func TestReportRunWithoutEmailOnlyLogs(t *testing.T) {
	base := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	repo := &reportEvaluationRepo{evaluations: sampleEvaluations(base)}
	repo.stats = models.EvaluationStats{Count: 4, Mean: 5, Min: 1, Max: 9}
	dispatcher := &reportDispatcher{configured: false}

	svc := service.NewReportService(repo, &stubReportRepo{}, dispatcher, testLogger())
	svc.Run(context.Background())

	require.Empty(t, dispatcher.subjects)
}

func TestReportRunSurvivesPersistFailure(t *testing.T) {
	base := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	repo := &reportEvaluationRepo{evaluations: sampleEvaluations(base)}
	repo.stats = models.EvaluationStats{Count: 4, Mean: 5, Min: 1, Max: 9}
	reports := &stubReportRepo{createErr: errors.New("disk full")}
	dispatcher := &reportDispatcher{configured: true}

	svc := service.NewReportService(repo, reports, dispatcher, testLogger())
	svc.Run(context.Background())

	// Delivery still happens when the summary row cannot be stored.
	require.Len(t, dispatcher.subjects, 1)
}
