package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
)

// AdminUsers is the part of the user store the seeder needs.
type AdminUsers interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
}

// SeedAdmin makes sure an Admin account exists for email. A new account is
// created with password; an existing one keeps its password and is promoted
// if needed.
func SeedAdmin(ctx context.Context, users AdminUsers, email, password string, log *zap.Logger) (*model.User, error) {
	if email == "" {
		return nil, errors.New("admin email is required")
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			log.Info("admin already present", zap.String("email", existing.Email))
			return existing, nil
		}
		promoted, err := users.UpdateRole(ctx, existing.ID, model.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("promote %s: %w", email, err)
		}
		log.Info("user promoted to admin", zap.String("email", promoted.Email), zap.String("previous_role", string(existing.Role)))
		return promoted, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if len(password) < 6 {
		return nil, errors.New("admin password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &model.User{
		Email:     email,
		Password:  string(hash),
		Role:      model.RoleAdmin,
		FirstName: "Site",
		LastName:  "Admin",
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	log.Info("admin seeded", zap.String("email", admin.Email))
	return admin, nil
}
