// Package mail delivers transactional email (verification codes, password
// resets).
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log. Used when no mail API is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail (log only)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

type apiResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// HTTPMailer posts messages as JSON to a transactional mail API.
type HTTPMailer struct {
	client *resty.Client
	from   string
}

func NewHTTPMailer(baseURL, apiKey, from string) *HTTPMailer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)
	return &HTTPMailer{client: client, from: from}
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.from
	}
	var result apiResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&result).
		SetError(&result).
		Post("/send")
	if err != nil {
		return fmt.Errorf("mail API call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode(), result.Message)
	}
	slog.Info("mail sent", "to", msg.To, "subject", msg.Subject, "message_id", result.ID)
	return nil
}
