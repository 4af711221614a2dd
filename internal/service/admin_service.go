package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
)

// AdminService backs the moderation screens.
type AdminService struct {
	users    UserStore
	listings ListingStore
	log      *zap.Logger
}

func NewAdminService(users UserStore, listings ListingStore, log *zap.Logger) *AdminService {
	return &AdminService{users: users, listings: listings, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, id Identity) ([]model.User, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if users == nil {
		users = []model.User{}
	}
	return users, err
}

// UpdateRole is the only way a role changes after signup.
func (s *AdminService) UpdateRole(ctx context.Context, id Identity, userID, role string) (*model.User, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	next := model.Role(role)
	if !next.Valid() {
		return nil, Validationf("Invalid role.")
	}

	user, err := s.users.UpdateRole(ctx, userID, next)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("user role changed", zap.String("user_id", user.ID), zap.String("role", role), zap.String("by", id.UserID))
	return user, nil
}

// ListListings shows listings of every status, or of one status when given.
func (s *AdminService) ListListings(ctx context.Context, id Identity, status string, limit, skip int) ([]model.ListingView, error) {
	if err := RequireRole(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	if status != "" && !model.ListingStatus(status).Valid() {
		return nil, Validationf("Invalid listing status.")
	}
	listings, err := s.listings.FindAll(ctx, model.ListingStatus(status), limit, skip)
	if err != nil {
		return nil, err
	}
	return model.NewListingViews(listings), nil
}
