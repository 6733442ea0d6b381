package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const mailEndpoint = "https://api.brevo.com/v3/smtp/email"

// Sender profiles. Customer-facing mail and owner-facing mail go out under
// different sender identities.
const (
	ProfileCustomer = "customer"
	ProfileOwner    = "owner"
)

type SenderProfile struct {
	Name  string
	Email string
}

type Mailer struct {
	endpoint   string
	apiKey     string
	profiles   map[string]SenderProfile
	httpClient *http.Client
}

func NewMailer(apiKey string, profiles map[string]SenderProfile, opts ...MailerOption) *Mailer {
	m := &Mailer{
		endpoint: mailEndpoint,
		apiKey:   apiKey,
		profiles: profiles,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

type MailerOption func(*Mailer)

func WithMailEndpoint(endpoint string) MailerOption {
	return func(m *Mailer) {
		m.endpoint = endpoint
	}
}

type mailPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func (m *Mailer) Send(ctx context.Context, profile, toEmail, toName, subject, htmlContent string) error {
	sender, ok := m.profiles[profile]
	if !ok {
		return fmt.Errorf("unknown sender profile %q", profile)
	}

	if !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email %q", toEmail)
	}
	if toName == "" {
		toName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := mailPayload{
		Sender:      map[string]string{"name": sender.Name, "email": sender.Email},
		To:          []map[string]string{{"email": toEmail, "name": toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
