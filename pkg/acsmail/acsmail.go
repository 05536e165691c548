package acsmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiVersion     = "2023-03-31"
	requestTimeout = 30 * time.Second
)

// Client sends plain-text email through the Azure Communication Services
// REST API. It performs exactly one delivery attempt per Send call; any
// retry policy belongs to the caller.
type Client struct {
	endpoint   string
	accessKey  string
	httpClient *http.Client
	logger     zerolog.Logger
}

type sendRequest struct {
	SenderAddress string     `json:"senderAddress"`
	Recipients    recipients `json:"recipients"`
	Content       content    `json:"content"`
}

type recipients struct {
	To []address `json:"to"`
}

type address struct {
	Address string `json:"address"`
}

type content struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plainText"`
}

// New parses a connection string of the form
// "endpoint=https://...;accesskey=..." and returns a configured client.
func New(connectionString string, logger zerolog.Logger) (*Client, error) {
	endpoint, accessKey, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		accessKey:  accessKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger.With().Str("component", "acsmail").Logger(),
	}, nil
}

// Send posts a single plain-text message. The service answers 202 Accepted
// when it takes ownership of delivery; any other status is an error.
func (c *Client) Send(ctx context.Context, from, to, subject, body string) error {
	payload := sendRequest{
		SenderAddress: from,
		Recipients:    recipients{To: []address{{Address: to}}},
		Content:       content{Subject: subject, PlainText: body},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=%s", c.endpoint, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	c.logger.Debug().Str("destinatario", to).Msg("email aceito pelo serviço de envio")
	return nil
}

func parseConnectionString(raw string) (endpoint, accessKey string, err error) {
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		parts := strings.SplitN(segment, "=", 2)
		if len(parts) != 2 {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(parts[0])) {
		case "endpoint":
			endpoint = strings.TrimSpace(parts[1])
		case "accesskey":
			accessKey = strings.TrimSpace(parts[1])
		}
	}

	if endpoint == "" || accessKey == "" {
		return "", "", fmt.Errorf("connection string must contain endpoint and accesskey")
	}

	return endpoint, accessKey, nil
}
