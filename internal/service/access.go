package service

import (
	"realty_backend/internal/model"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID    string     `json:"id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

func (i Identity) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// RequireRole is the role gate.
func RequireRole(id Identity, roles ...model.Role) error {
	if !id.HasRole(roles...) {
		return Forbidden("You do not have permission to perform this action")
	}
	return nil
}

// AuthorizeOwner passes when the caller owns the resource or is an Admin.
func AuthorizeOwner(id Identity, ownerID string) error {
	if id.IsAdmin() || (ownerID != "" && id.UserID == ownerID) {
		return nil
	}
	return Forbidden("You do not have permission to modify this resource")
}
