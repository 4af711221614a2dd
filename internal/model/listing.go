package model

import (
	"gorm.io/datatypes"
)

type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "House"
	PropertyTypeCondo     PropertyType = "Condo"
	PropertyTypeTownhouse PropertyType = "Townhouse"
	PropertyTypeLand      PropertyType = "Land"
	PropertyTypeApartment PropertyType = "Apartment"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeCondo, PropertyTypeTownhouse, PropertyTypeLand, PropertyTypeApartment:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingStatusDraft   ListingStatus = "Draft"
	ListingStatusActive  ListingStatus = "Active"
	ListingStatusPending ListingStatus = "Pending"
	ListingStatusSold    ListingStatus = "Sold"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusDraft, ListingStatusActive, ListingStatusPending, ListingStatusSold:
		return true
	}
	return false
}

// ListingImage is one entry of a listing's ordered image list. ExternalID is
// the object store key used for deletion.
type ListingImage struct {
	URL        string `json:"url"`
	ExternalID string `json:"externalId"`
	AltText    string `json:"altText,omitempty"`
	OrderIndex int    `json:"orderIndex"`
}

type Listing struct {
	Base
	AgentID      string        `json:"agentId" gorm:"type:varchar(36);index;not null"`
	Title        string        `json:"title" gorm:"not null"`
	Description  string        `json:"description" gorm:"type:text;not null"`
	Price        float64       `json:"price" gorm:"not null;index"`
	Address      string        `json:"address" gorm:"not null"`
	City         string        `json:"city" gorm:"not null;index"`
	State        string        `json:"state" gorm:"not null"`
	ZipCode      string        `json:"zipCode" gorm:"not null"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	PropertyType PropertyType  `json:"propertyType" gorm:"type:varchar(16);not null;index"`
	Bedrooms     int           `json:"bedrooms" gorm:"not null"`
	Bathrooms    int           `json:"bathrooms" gorm:"not null"`
	SqFt         int           `json:"sqFt" gorm:"not null"`
	YearBuilt    int           `json:"yearBuilt"`
	Status       ListingStatus `json:"status" gorm:"type:varchar(16);not null;default:'Draft';index"`
	IsFeatured   bool          `json:"isFeatured" gorm:"default:false"`
	ViewsCount   int64         `json:"viewsCount" gorm:"not null;default:0"`
	LeadsCount   int64         `json:"leadsCount" gorm:"not null;default:0"`

	Images datatypes.JSONSlice[ListingImage] `json:"images"`

	Agent *User `json:"-" gorm:"foreignKey:AgentID"`
}

// AgentSummary is the agent data expanded into listing responses.
type AgentSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// ListingView is a listing joined with its owning agent.
type ListingView struct {
	Listing
	Agent *AgentSummary `json:"agent,omitempty"`
}

func NewListingView(l Listing) ListingView {
	view := ListingView{Listing: l}
	if view.Images == nil {
		view.Images = datatypes.JSONSlice[ListingImage]{}
	}
	if l.Agent != nil {
		view.Agent = &AgentSummary{
			ID:        l.Agent.ID,
			FirstName: l.Agent.FirstName,
			LastName:  l.Agent.LastName,
			Email:     l.Agent.Email,
			Phone:     l.Agent.Phone,
		}
		view.Listing.Agent = nil
	}
	return view
}

func NewListingViews(listings []Listing) []ListingView {
	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, NewListingView(l))
	}
	return views
}
