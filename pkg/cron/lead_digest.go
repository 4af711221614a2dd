package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"realty_backend/internal/repository"
	"realty_backend/pkg/email"
)

const digestWindow = 24 * time.Hour

// LeadCounter reports how many New leads each agent received since a point
// in time.
type LeadCounter interface {
	NewLeadCountsSince(ctx context.Context, since time.Time) ([]repository.AgentLeadCount, error)
}

// LeadDigest mails every agent a summary of the New leads they received in
// the last day.
type LeadDigest struct {
	leads    LeadCounter
	notifier email.Notifier
	log      *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewLeadDigest(leads LeadCounter, notifier email.Notifier, log *zap.Logger) *LeadDigest {
	return &LeadDigest{leads: leads, notifier: notifier, log: log, now: time.Now}
}

// Start schedules the digest. An empty schedule disables it and returns a nil
// scheduler.
func (d *LeadDigest) Start(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		d.log.Info("lead digest disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := d.Run(ctx); err != nil {
			d.log.Error("lead digest failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	d.log.Info("lead digest scheduled", zap.String("schedule", schedule))
	return c, nil
}

// Run sends one digest per agent with New leads and returns how many were
// delivered. A failed delivery is logged and does not stop the others.
func (d *LeadDigest) Run(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	since := d.now().Add(-digestWindow)
	counts, err := d.leads.NewLeadCountsSince(ctx, since)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, row := range counts {
		if row.Count == 0 {
			continue
		}
		err := d.notifier.SendLeadDigest(ctx, row.Email, email.LeadDigestData{
			FirstName: row.FirstName,
			NewLeads:  row.Count,
			Since:     since,
		})
		if err != nil {
			d.log.Warn("lead digest not delivered", zap.String("agent_id", row.AgentID), zap.Error(err))
			continue
		}
		sent++
	}

	d.log.Info("lead digest sent", zap.Int("agents", len(counts)), zap.Int("delivered", sent))
	return sent, nil
}
