package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"realty_backend/pkg/config"
)

// Notifier is what the application needs from a mail transport.
type Notifier interface {
	SendLeadNotification(ctx context.Context, agentEmail, listingTitle string, lead LeadDetails) error
	SendLeadDigest(ctx context.Context, agentEmail string, data LeadDigestData) error
}

// NewNotifier picks the transport named by cfg.Driver.
func NewNotifier(cfg config.MailConfig, log *zap.Logger) (Notifier, error) {
	switch cfg.Driver {
	case config.MailDriverResend:
		return NewService(cfg.ResendAPIKey, cfg.From, log)
	case config.MailDriverLog:
		return NewLogNotifier(log), nil
	}
	return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	log *zap.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendLeadNotification(_ context.Context, agentEmail, listingTitle string, lead LeadDetails) error {
	data := newLeadNotificationData(listingTitle, lead)
	n.log.Info("lead notification",
		zap.String("to", agentEmail),
		zap.String("subject", LeadNotificationSubject(listingTitle)),
		zap.String("lead_name", data.LeadName),
		zap.String("lead_email", data.LeadEmail),
		zap.String("lead_phone", data.LeadPhone),
	)
	return nil
}

func (n *LogNotifier) SendLeadDigest(_ context.Context, agentEmail string, data LeadDigestData) error {
	n.log.Info("lead digest", zap.String("to", agentEmail), zap.Int64("new_leads", data.NewLeads))
	return nil
}
