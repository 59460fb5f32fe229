package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
)

const (
	sendgridEndpoint     = "https://api.sendgrid.com/v3/mail/send"
	mailerClientTimeout  = 10 * time.Second
	mailerErrorBodyCap   = 1024
	contentTypePlainText = "text/plain"
)

// Email is one outbound transactional message.
type Email struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SendGridMailer sends through the SendGrid v3 mail API.
type SendGridMailer struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
	client    *http.Client
}

// NewSendGridMailer builds a mailer from the SendGrid configuration.
func NewSendGridMailer(cfg config.SendgridConfig) (*SendGridMailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, errors.New("sendgrid from address is required")
	}
	return &SendGridMailer{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.DefaultFrom,
		fromName:  cfg.FromName,
		endpoint:  sendgridEndpoint,
		client:    &http.Client{Timeout: mailerClientTimeout},
	}, nil
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridRequest struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

func (m *SendGridMailer) Send(ctx context.Context, email Email) error {
	if strings.TrimSpace(email.To) == "" {
		return errors.New("recipient address is required")
	}
	if strings.TrimSpace(email.Subject) == "" {
		return errors.New("subject is required")
	}

	payload := sendgridRequest{
		Personalizations: []sendgridPersonalization{
			{To: []sendgridAddress{{Email: email.To, Name: email.ToName}}},
		},
		From:    sendgridAddress{Email: m.fromEmail, Name: m.fromName},
		Subject: email.Subject,
		Content: []sendgridContent{{Type: contentTypePlainText, Value: email.Body}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// SendGrid answers 202 on acceptance.
	if resp.StatusCode != http.StatusAccepted {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, mailerErrorBodyCap))
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
