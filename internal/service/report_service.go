package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/classinsight/classinsight-api/internal/models"
	"github.com/classinsight/classinsight-api/internal/observability"
	"github.com/classinsight/classinsight-api/internal/repository"
)

const reportDateLayout = "02/01/2006"

// ReportService generates the periodic evaluation summary. A run never
// panics or returns an error to the scheduler: failures are logged and the
// run ends cleanly.
type ReportService interface {
	Run(ctx context.Context)
	Start(ctx context.Context, interval time.Duration)
}

type reportService struct {
	evaluations repository.EvaluationRepository
	reports     repository.ReportRepository
	dispatcher  NotificationDispatcher
	logger      zerolog.Logger
}

// NewReportService constructs the scheduled report generator.
func NewReportService(evaluations repository.EvaluationRepository, reports repository.ReportRepository, dispatcher NotificationDispatcher, logger zerolog.Logger) ReportService {
	return &reportService{
		evaluations: evaluations,
		reports:     reports,
		dispatcher:  dispatcher,
		logger:      logger.With().Str("component", "report_service").Logger(),
	}
}

// Start runs the generator on a fixed interval until the context ends.
func (s *reportService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Run(ctx)
			}
		}
	}()
}

func (s *reportService) Run(ctx context.Context) {
	s.logger.Info().Msg("processamento agendado de avaliações iniciado")

	evaluations, err := s.evaluations.FindAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("falha ao ler avaliações para o relatório")
		observability.ReportRuns().WithLabelValues("error").Inc()
		return
	}

	if len(evaluations) == 0 {
		s.logger.Info().Msg("nenhuma avaliação encontrada; relatório não gerado")
		observability.ReportRuns().WithLabelValues("empty").Inc()
		return
	}

	stats, err := s.evaluations.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("falha ao calcular estatísticas para o relatório")
		observability.ReportRuns().WithLabelValues("error").Inc()
		return
	}

	now := time.Now()
	body := renderReport(evaluations, stats, now)

	s.persist(ctx, evaluations, stats, now)
	s.deliver(ctx, body, now)

	observability.ReportRuns().WithLabelValues("ok").Inc()
	s.logger.Info().Int("avaliacoes", len(evaluations)).Msg("relatório processado")
}

// persist records the run in the reports table. A write failure downgrades
// to a warning: the emailed/logged report is still produced.
func (s *reportService) persist(ctx context.Context, evaluations []models.Evaluation, stats models.EvaluationStats, now time.Time) {
	if s.reports == nil {
		return
	}

	breakdown, err := json.Marshal(countByUrgency(evaluations))
	if err != nil {
		s.logger.Warn().Err(err).Msg("falha ao serializar distribuição do relatório")
		return
	}

	report := models.Report{
		TotalEvaluations: int64(len(evaluations)),
		MeanScore:        stats.Mean,
		Breakdown:        breakdown,
		GeneratedAt:      now,
	}
	if err := s.reports.Create(ctx, &report); err != nil {
		s.logger.Warn().Err(err).Msg("falha ao salvar relatório no banco")
	}
}

func (s *reportService) deliver(ctx context.Context, body string, now time.Time) {
	if !s.dispatcher.EmailConfigured() {
		s.logger.Warn().Msg("configurações de email não encontradas; relatório apenas logado")
		s.logger.Info().Msg("\n" + body)
		return
	}

	timestamp := now.Format("02/01/2006 15:04")
	subject := fmt.Sprintf("Relatório de Avaliações - %s", timestamp)
	emailBody := fmt.Sprintf("Relatório gerado em %s\n\n%s", timestamp, body)

	if !s.dispatcher.EmailAdmins(ctx, subject, emailBody) {
		s.logger.Warn().Msg("falha ao enviar relatório por email")
	}
}

func renderReport(evaluations []models.Evaluation, stats models.EvaluationStats, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("RELATÓRIO DE AVALIAÇÕES DE DESEMPENHO\n")
	sb.WriteString("========================================\n\n")
	sb.WriteString(fmt.Sprintf("Data de Geração: %s\n\n", now.Format(reportDateLayout)))

	sb.WriteString("RESUMO\n")
	sb.WriteString("----------------\n")
	sb.WriteString(fmt.Sprintf("Total de Avaliações Analisadas: %d\n", len(evaluations)))
	sb.WriteString(fmt.Sprintf("Média Geral de Desempenho: %.2f\n\n", stats.Mean))

	sb.WriteString("ANÁLISE POR CLASSIFICAÇÃO DE DESEMPENHO\n")
	sb.WriteString("---------------------------------------\n")
	counts := countByUrgency(evaluations)
	total := float64(len(evaluations))
	writeBucket := func(label string, urgency models.Urgency) {
		count := counts[urgency]
		sb.WriteString(fmt.Sprintf("%s: %d avaliações (%.2f%%)\n", label, count, float64(count)*100/total))
	}
	writeBucket("Urgência Baixa (nota > 7)", models.UrgencyLow)
	writeBucket("Urgência Média (5 < nota <= 7)", models.UrgencyMedium)
	writeBucket("Urgência Alta (2 < nota <= 5)", models.UrgencyHigh)
	writeBucket("Urgência Crítica (nota <= 2)", models.UrgencyCritical)
	sb.WriteString("\n")

	sb.WriteString("INDICADORES\n")
	sb.WriteString("-------------------------\n")
	sb.WriteString(fmt.Sprintf("Média de Avaliações: %.2f\n", stats.Mean))
	sb.WriteString(fmt.Sprintf("Avaliação com nota Máxima: %.2f\n", stats.Max))
	sb.WriteString(fmt.Sprintf("Avaliação com nota Mínima: %.2f\n\n", stats.Min))

	sb.WriteString("DISTRIBUIÇÃO POR DIA\n")
	sb.WriteString("---------------------\n")
	for _, day := range groupByDay(evaluations) {
		sb.WriteString(fmt.Sprintf("%s: %d avaliação(ões)\n", day.label, day.count))
	}

	sb.WriteString("\n----------------------------------------\n")
	sb.WriteString("Documento gerado automaticamente pelo ClassInsight\n")
	sb.WriteString("----------------------------------------\n")

	return sb.String()
}

func countByUrgency(evaluations []models.Evaluation) map[models.Urgency]int64 {
	counts := make(map[models.Urgency]int64, 4)
	for _, evaluation := range evaluations {
		counts[evaluation.Urgency]++
	}
	return counts
}

type dayCount struct {
	day   time.Time
	label string
	count int64
}

// groupByDay buckets evaluations by the calendar day of their creation
// timestamp, most recent day first.
func groupByDay(evaluations []models.Evaluation) []dayCount {
	byDay := make(map[time.Time]int64)
	for _, evaluation := range evaluations {
		year, month, day := evaluation.CreatedAt.Date()
		key := time.Date(year, month, day, 0, 0, 0, 0, evaluation.CreatedAt.Location())
		byDay[key]++
	}

	days := make([]dayCount, 0, len(byDay))
	for day, count := range byDay {
		days = append(days, dayCount{day: day, label: day.Format(reportDateLayout), count: count})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].day.After(days[j].day)
	})
	return days
}
