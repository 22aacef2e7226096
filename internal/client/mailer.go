// Outbound email delivery.
//
// MAIL_PROVIDER=http posts each message as JSON to MAIL_API_URL with a Bearer key,
// which fits transactional providers that expose a simple send endpoint.
// MAIL_PROVIDER=log writes the message to the structured log instead (development).

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kitforge/backend/internal/config"
	"github.com/kitforge/backend/internal/model"
)

const (
	MailProviderLog  = "log"
	MailProviderHTTP = "http"
)

type HTTPMailer struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

type mailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

func NewHTTPMailer(cfg config.MailConfig) *HTTPMailer {
	return &HTTPMailer{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (m *HTTPMailer) IsConfigured() bool {
	return m.apiURL != "" && m.from != ""
}

func (m *HTTPMailer) Send(ctx context.Context, msg model.Email) error {
	if !m.IsConfigured() {
		return fmt.Errorf("mail api url or sender not configured")
	}

	payload, err := json.Marshal(mailPayload{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail api error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// LogMailer never delivers anything; it logs the message so links can be copied in development.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg model.Email) error {
	m.log.InfoContext(ctx, "email", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
