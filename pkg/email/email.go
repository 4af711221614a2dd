package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const resendEndpoint = "https://api.resend.com/emails"

// Service delivers templated mail through the Resend HTTP API.
type Service struct {
	apiKey    string
	from      string
	endpoint  string
	client    *http.Client
	templates *template.Template
	log       *zap.Logger
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// LeadDetails is the inquiry forwarded to the listing's agent.
type LeadDetails struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

type LeadNotificationData struct {
	ListingTitle string
	LeadName     string
	LeadEmail    string
	LeadPhone    string
	LeadMessage  string
}

type LeadDigestData struct {
	FirstName string
	NewLeads  int64
	Since     time.Time
}

var _ Notifier = (*Service)(nil)

func NewService(apiKey, from string, log *zap.Logger) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}

	return &Service{
		apiKey:    apiKey,
		from:      from,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
		templates: templates,
		log:       log,
	}, nil
}

func (s *Service) sendTemplateEmail(ctx context.Context, to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	jsonData, err := json.Marshal(EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("error marshaling email data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: status %d: %s", resp.StatusCode, string(respBody))
	}

	s.log.Debug("email sent", zap.String("to", to), zap.String("template", templateName))
	return nil
}

func (s *Service) SendLeadNotification(ctx context.Context, agentEmail, listingTitle string, lead LeadDetails) error {
	return s.sendTemplateEmail(ctx, agentEmail, LeadNotificationSubject(listingTitle), "lead_notification.html", newLeadNotificationData(listingTitle, lead))
}

func (s *Service) SendLeadDigest(ctx context.Context, agentEmail string, data LeadDigestData) error {
	subject := fmt.Sprintf("You have %d new lead(s) waiting", data.NewLeads)
	return s.sendTemplateEmail(ctx, agentEmail, subject, "lead_digest.html", data)
}

func LeadNotificationSubject(listingTitle string) string {
	return "NEW LEAD: Inquiry for listing: " + listingTitle
}

func newLeadNotificationData(listingTitle string, lead LeadDetails) LeadNotificationData {
	phone := lead.Phone
	if phone == "" {
		phone = "N/A"
	}
	return LeadNotificationData{
		ListingTitle: listingTitle,
		LeadName:     lead.Name,
		LeadEmail:    lead.Email,
		LeadPhone:    phone,
		LeadMessage:  lead.Message,
	}
}
