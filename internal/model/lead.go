package model

import "time"

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusConverted LeadStatus = "Converted"
	LeadStatusClosed    LeadStatus = "Closed"
)

var LeadStatuses = []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusClosed}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Lead struct {
	Base
	ListingID string     `json:"listingId" gorm:"type:varchar(36);index;not null"`
	Name      string     `json:"name" gorm:"not null"`
	Email     string     `json:"email" gorm:"not null"`
	Phone     string     `json:"phone,omitempty"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Status    LeadStatus `json:"status" gorm:"type:varchar(16);not null;default:'New';index"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID"`
}

// ListingSummary is the listing data expanded into lead responses.
type ListingSummary struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type LeadView struct {
	Lead
	Listing *ListingSummary `json:"listing,omitempty"`
}

func NewLeadView(l Lead) LeadView {
	view := LeadView{Lead: l}
	if l.Listing != nil {
		view.Listing = &ListingSummary{ID: l.Listing.ID, Title: l.Listing.Title, Price: l.Listing.Price}
		view.Lead.Listing = nil
	}
	return view
}

// PublicLead is what an anonymous submitter gets back.
type PublicLead struct {
	ID        string     `json:"id"`
	ListingID string     `json:"listing"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (l Lead) Public() PublicLead {
	return PublicLead{
		ID:        l.ID,
		ListingID: l.ListingID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
	}
}
