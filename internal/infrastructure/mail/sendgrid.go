package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/ports"
)

const sendEndpoint = "https://api.sendgrid.com/v3/mail/send"

// SendGridMailer delivers briefings through the SendGrid v3 REST API.
type SendGridMailer struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	httpClient *http.Client
}

var _ ports.Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer wires credentials and the recipient list.
func NewSendGridMailer(apiKey, from string, recipients []string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:     apiKey,
		from:       from,
		recipients: recipients,
		endpoint:   sendEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendBriefing posts the rendered bodies to every configured recipient.
// Plain text precedes HTML; SendGrid requires that content order.
func (m *SendGridMailer) SendBriefing(ctx context.Context, subject, htmlBody, textBody string) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid mailer misconfigured: missing API key")
	}
	if len(m.recipients) == 0 {
		return fmt.Errorf("sendgrid mailer misconfigured: no recipients")
	}

	to := make([]address, 0, len(m.recipients))
	for _, r := range m.recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, address{Email: r})
		}
	}

	body, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: to}},
		From:             address{Email: m.from},
		Subject:          subject,
		Content: []content{
			{Type: "text/plain", Value: textBody},
			{Type: "text/html", Value: htmlBody},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendgrid error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}
