package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty_backend/internal/model"
	"realty_backend/internal/testutil"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := &model.User{Email: "  Jane@Example.COM ", Password: "hash", Role: model.RoleBuyer, FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, users.Create(ctx, user))
	assert.Equal(t, "jane@example.com", user.Email)

	found, err := users.FindByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	dup := &model.User{Email: "jane@example.com", Password: "hash", Role: model.RoleBuyer, FirstName: "J", LastName: "D"}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicate)

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateRole(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "buyer@example.com", model.RoleBuyer)

	updated, err := users.UpdateRole(ctx, user.ID, model.RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAgent, updated.Role)

	_, err = users.UpdateRole(ctx, "missing", model.RoleAgent)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
