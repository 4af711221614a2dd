package service

import (
	"context"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
)

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
}

// ListingStore is implemented by repository.ListingRepository.
type ListingStore interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	Search(ctx context.Context, filter repository.ListingFilter) ([]model.Listing, error)
	FindByAgent(ctx context.Context, agentID string) ([]model.Listing, error)
	FindAll(ctx context.Context, status model.ListingStatus, limit, skip int) ([]model.Listing, error)
	IDsByAgent(ctx context.Context, agentID string) ([]string, error)
	IncrementViews(ctx context.Context, id string) (*model.Listing, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Listing, error)
	Delete(ctx context.Context, id string) error
	StatsForAgent(ctx context.Context, agentID string) (repository.AgentStats, error)
}

// LeadStore is implemented by repository.LeadRepository.
type LeadStore interface {
	Create(ctx context.Context, lead *model.Lead) error
	FindByID(ctx context.Context, id string) (*model.Lead, error)
	FindByListingIDs(ctx context.Context, listingIDs []string) ([]model.Lead, error)
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error)
}

var (
	_ UserStore    = (*repository.UserRepository)(nil)
	_ ListingStore = (*repository.ListingRepository)(nil)
	_ LeadStore    = (*repository.LeadRepository)(nil)
)
