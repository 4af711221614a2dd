package model

import "strings"

type Role string

const (
	RoleBuyer Role = "Buyer"
	RoleAgent Role = "Agent"
	RoleAdmin Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"`
	Role      Role   `json:"role" gorm:"type:varchar(16);not null;default:'Buyer'"`
	FirstName string `json:"firstName" gorm:"not null"`
	LastName  string `json:"lastName" gorm:"not null"`
	Phone     string `json:"phone,omitempty"`

	Listings []Listing `json:"-" gorm:"foreignKey:AgentID"`
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
