package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/classinsight/classinsight-api/internal/dto"
	"github.com/classinsight/classinsight-api/internal/observability"
)

// QueuePublisher abstracts the durable notification queue. *nats.Conn
// satisfies it; tests substitute a recorder.
type QueuePublisher interface {
	Publish(subject string, data []byte) error
}

// EmailSender delivers a single email. One attempt per call; retry policy
// lives in the dispatcher. A nil error means the transport accepted the
// message.
type EmailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// NotificationDispatcher formats, enqueues and conditionally emails
// evaluation notifications. Publish never fails from the caller's point of
// view: every internal failure is logged and swallowed so a notification
// problem can never retract an accepted evaluation.
type NotificationDispatcher interface {
	Publish(ctx context.Context, payload dto.EvaluationResponse)
	EmailAdmins(ctx context.Context, subject, body string) bool
	EmailConfigured() bool
}

// DispatcherConfig groups the notification settings read at startup.
type DispatcherConfig struct {
	Subject     string
	FromAddress string
	// Recipients is a semicolon or comma delimited admin address list.
	Recipients string
	MaxRetries int
	RetryDelay time.Duration
}

type notificationDispatcher struct {
	queue      QueuePublisher
	subject    string
	sender     EmailSender
	from       string
	recipients []string
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewNotificationDispatcher constructs a dispatcher. A nil queue or sender
// degrades the corresponding step to a logged no-op.
func NewNotificationDispatcher(queue QueuePublisher, sender EmailSender, cfg DispatcherConfig, logger zerolog.Logger) NotificationDispatcher {
	componentLogger := logger.With().Str("component", "notification_dispatcher").Logger()

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &notificationDispatcher{
		queue:      queue,
		subject:    cfg.Subject,
		sender:     sender,
		from:       strings.TrimSpace(cfg.FromAddress),
		recipients: parseRecipients(cfg.Recipients, componentLogger),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     componentLogger,
		tracer:     otel.Tracer("github.com/classinsight/classinsight-api/internal/service/notification"),
	}
}

func (d *notificationDispatcher) Publish(ctx context.Context, payload dto.EvaluationResponse) {
	urgency := payload.UrgencyLevel()

	ctx, span := d.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.String("notification.urgency", string(urgency)),
	))
	defer span.End()

	message := FormatNotificationMessage(payload)

	d.enqueue(payload, message)

	if !urgency.ShouldAlert() {
		return
	}

	subject := fmt.Sprintf("%s %s", urgency.Emoji(), urgency.Title())
	d.EmailAdmins(ctx, subject, message)
}

// enqueue publishes the JSON payload on the notification subject. The queue
// message is the durable record of the notification; an enqueue failure is
// logged with the full content and does not block the email step.
func (d *notificationDispatcher) enqueue(payload dto.EvaluationResponse, message string) {
	if d.queue == nil || d.subject == "" {
		d.logger.Warn().Str("conteudo", message).Msg("fila de notificações não configurada; mensagem não enviada")
		observability.NotificationsEnqueued().WithLabelValues("skipped").Inc()
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Warn().Err(err).Msg("falha ao serializar notificação")
		observability.NotificationsEnqueued().WithLabelValues("error").Inc()
		return
	}

	if err := d.queue.Publish(d.subject, data); err != nil {
		d.logger.Warn().Err(err).Str("subject", d.subject).Msg("falha ao enfileirar notificação")
		observability.NotificationsEnqueued().WithLabelValues("error").Inc()
		return
	}

	observability.NotificationsEnqueued().WithLabelValues("ok").Inc()
	d.logger.Info().Str("subject", d.subject).Str("urgencia", payload.Urgency).Msg("notificação enfileirada")
}

// EmailAdmins sends the message to every configured recipient, retrying each
// independently. Exhausting retries for one recipient never prevents
// attempting the next. Returns true when at least one recipient accepted.
func (d *notificationDispatcher) EmailAdmins(ctx context.Context, subject, body string) bool {
	if !d.EmailConfigured() {
		d.logger.Warn().Msg("envio de email não configurado; alerta ignorado")
		return false
	}

	delivered := false
	for _, recipient := range d.recipients {
		if d.sendWithRetry(ctx, recipient, subject, body) {
			delivered = true
		}
	}
	return delivered
}

// EmailConfigured reports whether the alert path has a transport, a sender
// address and at least one valid recipient.
func (d *notificationDispatcher) EmailConfigured() bool {
	return d.sender != nil && d.from != "" && len(d.recipients) > 0
}

func (d *notificationDispatcher) sendWithRetry(ctx context.Context, to, subject, body string) bool {
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		err := d.sender.Send(ctx, d.from, to, subject, body)
		if err == nil {
			observability.EmailSendAttempts().WithLabelValues("ok").Inc()
			d.logger.Info().Str("destinatario", to).Int("tentativa", attempt).Msg("email de alerta enviado")
			return true
		}

		observability.EmailSendAttempts().WithLabelValues("error").Inc()
		d.logger.Warn().Err(err).Str("destinatario", to).Int("tentativa", attempt).Int("max_tentativas", d.maxRetries).Msg("falha ao enviar email de alerta")

		if attempt < d.maxRetries {
			// Linear backoff: attempt number times the base delay.
			select {
			case <-ctx.Done():
				d.logger.Warn().Str("destinatario", to).Msg("envio de email cancelado")
				return false
			case <-time.After(time.Duration(attempt) * d.retryDelay):
			}
		}
	}

	d.logger.Error().Str("destinatario", to).Int("tentativas", d.maxRetries).Msg("email de alerta não entregue após todas as tentativas")
	return false
}

// FormatNotificationMessage renders the boxed multi-line notification text.
func FormatNotificationMessage(payload dto.EvaluationResponse) string {
	urgency := payload.UrgencyLevel()

	var sb strings.Builder
	sb.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	sb.WriteString(fmt.Sprintf("║ %s %s\n", urgency.Emoji(), urgency.Title()))
	sb.WriteString("╚════════════════════════════════════════════════════════════════╝\n\n")
	sb.WriteString("📋 DESCRIÇÃO:\n")
	sb.WriteString(fmt.Sprintf("  %s\n\n", payload.Description))
	sb.WriteString("🚨 URGÊNCIA:\n")
	sb.WriteString(fmt.Sprintf("  %s\n\n", payload.Urgency))
	sb.WriteString("📅 DATA:\n")
	sb.WriteString(fmt.Sprintf("  %s\n\n", payload.SentAt))
	sb.WriteString("═══════════════════════════════════════════════════════════════\n")
	return sb.String()
}

// parseRecipients splits the delimited admin list, trims entries and drops
// anything that does not look like an address.
func parseRecipients(raw string, logger zerolog.Logger) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})

	recipients := make([]string, 0, len(fields))
	for _, field := range fields {
		address := strings.TrimSpace(field)
		if address == "" {
			continue
		}
		if !looksLikeEmail(address) {
			logger.Warn().Str("destinatario", address).Msg("endereço de email inválido ignorado")
			continue
		}
		recipients = append(recipients, address)
	}
	return recipients
}

func looksLikeEmail(address string) bool {
	at := strings.Index(address, "@")
	if at <= 0 || at == len(address)-1 {
		return false
	}
	return strings.Contains(address[at+1:], ".")
}
