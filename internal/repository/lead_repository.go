package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"realty_backend/internal/model"
)

// AgentLeadCount is one row of the daily digest.
type AgentLeadCount struct {
	AgentID   string
	Email     string
	FirstName string
	Count     int64
}

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create stores lead and bumps its listing's lead counter.
func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		return tx.Model(&model.Listing{}).
			Where("id = ?", lead.ListingID).
			UpdateColumn("leads_count", gorm.Expr("leads_count + ?", 1)).Error
	})
}

// FindByID loads a lead together with its full listing.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*model.Lead, error) {
	var lead model.Lead
	if err := r.db.WithContext(ctx).Preload("Listing").Where("id = ?", id).First(&lead).Error; err != nil {
		return nil, translate(err)
	}
	return &lead, nil
}

// FindByListingIDs returns leads for any of the listings, newest first, with
// each listing's title and price expanded.
func (r *LeadRepository) FindByListingIDs(ctx context.Context, listingIDs []string) ([]model.Lead, error) {
	leads := []model.Lead{}
	if len(listingIDs) == 0 {
		return leads, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Listing", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "price")
		}).
		Where("listing_id IN ?", listingIDs).
		Order("created_at desc").
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (*model.Lead, error) {
	res := r.db.WithContext(ctx).Model(&model.Lead{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// NewLeadCountsSince groups still-New leads created after since by the agent
// owning the listing.
func (r *LeadRepository) NewLeadCountsSince(ctx context.Context, since time.Time) ([]AgentLeadCount, error) {
	var rows []AgentLeadCount
	err := r.db.WithContext(ctx).Model(&model.Lead{}).
		Select("users.id AS agent_id, users.email AS email, users.first_name AS first_name, COUNT(leads.id) AS count").
		Joins("JOIN listings ON listings.id = leads.listing_id").
		Joins("JOIN users ON users.id = listings.agent_id").
		Where("leads.status = ? AND leads.created_at >= ?", model.LeadStatusNew, since).
		Group("users.id, users.email, users.first_name").
		Scan(&rows).Error
	return rows, err
}
