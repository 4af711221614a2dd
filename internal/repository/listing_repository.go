package repository

import (
	"context"

	"gorm.io/gorm"

	"realty_backend/internal/model"
)

// AgentStats backs the agent dashboard.
type AgentStats struct {
	TotalListings  int64                      `json:"totalListings"`
	ActiveListings int64                      `json:"activeListings"`
	TotalViews     int64                      `json:"totalViews"`
	TotalLeads     int64                      `json:"totalLeads"`
	LeadsByStatus  map[model.LeadStatus]int64 `json:"leadsByStatus"`
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// withAgent expands the owning agent's public contact fields.
func withAgent(db *gorm.DB) *gorm.DB {
	return db.Preload("Agent", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "first_name", "last_name", "phone", "email")
	})
}

func (r *ListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	if err := withAgent(r.db.WithContext(ctx)).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

// Search returns Active listings matching filter.
func (r *ListingRepository) Search(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	listings := []model.Listing{}
	query := r.db.WithContext(ctx).Model(&model.Listing{}).Where("status = ?", model.ListingStatusActive)
	err := withAgent(filter.apply(query)).Find(&listings).Error
	return listings, err
}

// FindByAgent returns every listing owned by agentID regardless of status.
func (r *ListingRepository) FindByAgent(ctx context.Context, agentID string) ([]model.Listing, error) {
	listings := []model.Listing{}
	err := withAgent(r.db.WithContext(ctx)).
		Where("agent_id = ?", agentID).
		Order("created_at desc").
		Find(&listings).Error
	return listings, err
}

// FindAll lists listings of any owner, optionally narrowed to one status.
func (r *ListingRepository) FindAll(ctx context.Context, status model.ListingStatus, limit, skip int) ([]model.Listing, error) {
	listings := []model.Listing{}
	query := withAgent(r.db.WithContext(ctx))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at desc").Limit(limit).Offset(skip).Find(&listings).Error
	return listings, err
}

func (r *ListingRepository) IDsByAgent(ctx context.Context, agentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Listing{}).Where("agent_id = ?", agentID).Pluck("id", &ids).Error
	return ids, err
}

// IncrementViews bumps the view counter of an Active listing in the database
// and returns the listing as it is after the increment.
func (r *ListingRepository) IncrementViews(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Listing{}).
			Where("id = ? AND status = ?", id, model.ListingStatusActive).
			UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return withAgent(tx).Where("id = ?", id).First(&listing).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

// Update applies column updates and returns the fresh row.
func (r *ListingRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Listing, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Listing{Base: model.Base{ID: id}}).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Listing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActivateDrafts publishes every Draft listing and reports how many changed.
func (r *ListingRepository) ActivateDrafts(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("status = ?", model.ListingStatusDraft).
		Update("status", model.ListingStatusActive)
	return res.RowsAffected, res.Error
}

func (r *ListingRepository) StatsForAgent(ctx context.Context, agentID string) (AgentStats, error) {
	stats := AgentStats{LeadsByStatus: map[model.LeadStatus]int64{}}
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Listing{}).Where("agent_id = ?", agentID).Count(&stats.TotalListings).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.Listing{}).
		Where("agent_id = ? AND status = ?", agentID, model.ListingStatusActive).
		Count(&stats.ActiveListings).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.Listing{}).
		Where("agent_id = ?", agentID).
		Select("COALESCE(SUM(views_count), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return stats, err
	}

	var rows []struct {
		Status model.LeadStatus
		Count  int64
	}
	err := db.Model(&model.Lead{}).
		Select("leads.status AS status, COUNT(*) AS count").
		Joins("JOIN listings ON listings.id = leads.listing_id").
		Where("listings.agent_id = ?", agentID).
		Group("leads.status").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.LeadsByStatus[row.Status] = row.Count
		stats.TotalLeads += row.Count
	}
	return stats, nil
}
