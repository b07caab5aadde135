package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"learning-api/internal/config"
	"learning-api/internal/models"
	"learning-api/pkg/logging"
)

const brevoSendEndpoint = "https://api.brevo.com/v3/smtp/email"

// AlertService delivers operator alerts for webhook events whose effect could
// not be applied. It sends transactional email through the Brevo API.
type AlertService struct {
	APIKey      string
	FromEmail   string
	ToEmail     string
	ServiceName string

	// Endpoint overrides the Brevo API URL; tests point it at a local server.
	Endpoint string
}

// NewAlertService creates an alert service from the application configuration.
func NewAlertService() *AlertService {
	return &AlertService{
		APIKey:      config.AppConfig.BrevoAPIKey,
		FromEmail:   config.AppConfig.BrevoFromEmail,
		ToEmail:     config.AppConfig.AlertEmail,
		ServiceName: config.AppConfig.ServiceName,
		Endpoint:    brevoSendEndpoint,
	}
}

// Configured reports whether alert delivery is set up. When it is not, failure
// records in the store remain the only operator channel.
func (s *AlertService) Configured() bool {
	return s.APIKey != "" && s.FromEmail != "" && s.ToEmail != ""
}

// EmailRequest represents the Brevo email request structure
type EmailRequest struct {
	Sender      EmailSender `json:"sender"`
	To          []EmailTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
	TextContent string      `json:"textContent"`
}

type EmailSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EmailTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// NotifyWebhookFailure emails operators about a recorded webhook failure.
func (s *AlertService) NotifyWebhookFailure(failure *models.WebhookFailure) error {
	if !s.Configured() {
		logging.Infof("Alert mailer not configured, failure %s recorded only", failure.Reference)
		return nil
	}

	subject := fmt.Sprintf("[%s] Unattributable webhook event %s", s.ServiceName, failure.EventID)
	textContent := fmt.Sprintf(
		"Reference: %s\nEvent: %s (%s)\nReason: %s\n\nPayload:\n%s\n",
		failure.Reference, failure.EventID, failure.EventType, failure.Reason, failure.Payload)
	htmlContent := fmt.Sprintf(`
		<h2>%s: webhook event needs attention</h2>
		<p><b>Reference:</b> %s</p>
		<p><b>Event:</b> %s (%s)</p>
		<p><b>Reason:</b> %s</p>
		<pre>%s</pre>
	`, s.ServiceName, failure.Reference, failure.EventID, failure.EventType, failure.Reason, failure.Payload)

	emailReq := EmailRequest{
		Sender: EmailSender{
			Name:  s.ServiceName,
			Email: s.FromEmail,
		},
		To: []EmailTo{
			{Email: s.ToEmail},
		},
		Subject:     subject,
		HTMLContent: htmlContent,
		TextContent: textContent,
	}

	return s.sendEmail(emailReq)
}

// sendEmail sends email via the Brevo API
func (s *AlertService) sendEmail(req EmailRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", s.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", s.APIKey)

	client := &http.Client{}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}
