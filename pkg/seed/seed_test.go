package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/internal/testutil"
)

func TestSeedAdminCreates(t *testing.T) {
	users := repository.NewUserRepository(testutil.NewDB(t))
	ctx := context.Background()

	admin, err := SeedAdmin(ctx, users, "Root@Example.com", "hunter22", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "root@example.com", admin.Email)

	stored, err := users.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))

	again, err := SeedAdmin(ctx, users, "root@example.com", "different", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestSeedAdminPromotesExistingUser(t *testing.T) {
	db := testutil.NewDB(t)
	buyer := testutil.CreateUser(t, db, "owner@example.com", model.RoleBuyer)
	users := repository.NewUserRepository(db)

	admin, err := SeedAdmin(context.Background(), users, "owner@example.com", "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, admin.ID)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("password")))
}

func TestSeedAdminValidation(t *testing.T) {
	users := repository.NewUserRepository(testutil.NewDB(t))

	_, err := SeedAdmin(context.Background(), users, "", "secret1", zap.NewNop())
	assert.Error(t, err)

	_, err = SeedAdmin(context.Background(), users, "root@example.com", "123", zap.NewNop())
	assert.Error(t, err)
}
