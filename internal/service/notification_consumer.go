package service

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/classinsight/classinsight-api/internal/dto"
)

// NotificationConsumer drains the notification queue and logs each message.
// There is no consumer-side processing beyond logging.
type NotificationConsumer struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNotificationConsumer constructs a queue consumer.
func NewNotificationConsumer(conn *nats.Conn, subject string, logger zerolog.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "notification_consumer").Logger(),
	}
}

// Start subscribes to the notification subject and logs messages until the
// context is cancelled. A nil connection leaves the consumer disabled.
func (c *NotificationConsumer) Start(ctx context.Context) {
	if c.conn == nil || c.subject == "" {
		c.logger.Warn().Msg("consumo de notificações desabilitado: fila não configurada")
		return
	}

	sub, err := c.conn.QueueSubscribe(c.subject, "classinsight-notifications", func(msg *nats.Msg) {
		c.handle(msg.Data)
	})
	if err != nil {
		c.logger.Error().Err(err).Str("subject", c.subject).Msg("falha ao assinar fila de notificações")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			c.logger.Warn().Err(err).Msg("falha ao drenar assinatura de notificações")
		}
	}()
}

func (c *NotificationConsumer) handle(data []byte) {
	var payload dto.EvaluationResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn().Err(err).Str("mensagem", string(data)).Msg("mensagem de notificação inválida")
		return
	}

	c.logger.Info().
		Str("urgencia", payload.Urgency).
		Str("data_envio", payload.SentAt).
		Msg("notificação de urgência recebida\n" + FormatNotificationMessage(payload))
}
