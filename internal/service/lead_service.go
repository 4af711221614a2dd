package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/pkg/email"
)

type CreateLeadInput struct {
	ListingID string `json:"listingId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// LeadCreation reports a stored lead and, separately, whether the agent was
// told about it.
type LeadCreation struct {
	Lead      *model.Lead
	Notified  bool
	NotifyErr error
}

type LeadService struct {
	leads    LeadStore
	listings ListingStore
	notifier email.Notifier
	log      *zap.Logger
}

func NewLeadService(leads LeadStore, listings ListingStore, notifier email.Notifier, log *zap.Logger) *LeadService {
	return &LeadService{leads: leads, listings: listings, notifier: notifier, log: log}
}

// Create records an inquiry against an Active listing and emails the agent.
// A failed email does not fail the call.
func (s *LeadService) Create(ctx context.Context, in CreateLeadInput) (*LeadCreation, error) {
	in.ListingID = strings.TrimSpace(in.ListingID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if in.ListingID == "" || in.Name == "" || in.Email == "" || in.Message == "" {
		return nil, Validationf("Missing required lead information.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, Validationf("Please provide a valid email address.")
	}

	listing, err := s.listings.FindByID(ctx, in.ListingID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && listing.Status != model.ListingStatusActive) {
		return nil, NotFound("Listing not found or is not active.")
	}
	if err != nil {
		return nil, err
	}
	if listing.Agent == nil {
		return nil, fmt.Errorf("agent %s of listing %s not found", listing.AgentID, listing.ID)
	}

	lead := &model.Lead{
		ListingID: listing.ID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    model.LeadStatusNew,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	result := &LeadCreation{Lead: lead}
	err = s.notifier.SendLeadNotification(ctx, listing.Agent.Email, listing.Title, email.LeadDetails{
		Name:    lead.Name,
		Email:   lead.Email,
		Phone:   lead.Phone,
		Message: lead.Message,
	})
	if err != nil {
		result.NotifyErr = err
		s.log.Warn("lead created, but failed to send email",
			zap.String("lead_id", lead.ID),
			zap.String("listing_id", listing.ID),
			zap.Error(err),
		)
	} else {
		result.Notified = true
	}
	return result, nil
}

// ListForAgent returns the leads on every listing the agent owns.
func (s *LeadService) ListForAgent(ctx context.Context, id Identity) ([]model.LeadView, error) {
	if err := RequireRole(id, model.RoleAgent); err != nil {
		return nil, err
	}
	ids, err := s.listings.IDsByAgent(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	leads, err := s.leads.FindByListingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.LeadView, 0, len(leads))
	for _, l := range leads {
		views = append(views, model.NewLeadView(l))
	}
	return views, nil
}

// UpdateStatus moves a lead to status. The status is checked before the lead
// is looked up.
func (s *LeadService) UpdateStatus(ctx context.Context, id Identity, leadID string, status string) (*model.LeadView, error) {
	if err := RequireRole(id, model.RoleAgent, model.RoleAdmin); err != nil {
		return nil, err
	}
	next := model.LeadStatus(status)
	if !next.Valid() {
		return nil, Validationf("Invalid lead status.")
	}

	lead, err := s.leads.FindByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && lead.Listing == nil) {
		return nil, NotFound("Lead not found.")
	}
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && lead.Listing.AgentID != id.UserID {
		return nil, Forbidden("You do not have permission to update this lead.")
	}

	updated, err := s.leads.UpdateStatus(ctx, lead.ID, next)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("Lead not found.")
	}
	if err != nil {
		return nil, err
	}
	view := model.NewLeadView(*updated)
	return &view, nil
}
