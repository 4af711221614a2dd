package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/internal/testutil"
	"realty_backend/pkg/utils/jwt"
)

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	return newAuthServiceWithDB(t, testutil.NewDB(t))
}

func newAuthServiceWithDB(t *testing.T, db *gorm.DB) (*AuthService, *repository.UserRepository) {
	t.Helper()
	users := repository.NewUserRepository(db)
	tokens, err := jwt.NewManager("test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(users, tokens, nop())
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestRegisterDefaultsToBuyer(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleBuyer, session.User.Role)
	assert.NotEqual(t, "secret1", session.User.Password)

	id, err := svc.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleBuyer, id.Role)
	assert.Equal(t, session.User.ID, id.UserID)
}

func TestRegisterRoleResolution(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := map[string]model.Role{
		"Agent": model.RoleAgent,
		"Admin": model.RoleBuyer,
		"agent": model.RoleBuyer,
		"Buyer": model.RoleBuyer,
	}
	n := 0
	for requested, want := range cases {
		n++
		session, err := svc.Register(ctx, RegisterInput{
			Email:     "user" + string(rune('a'+n)) + "@example.com",
			Password:  "secret1",
			FirstName: "U",
			LastName:  "V",
			Role:      requested,
		})
		require.NoError(t, err)
		assert.Equal(t, want, session.User.Role, requested)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", FirstName: "A"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "123", FirstName: "A", LastName: "B"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: " A@B.com", Password: "secret1", FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.Equal(t, "Email already exists", err.Error())
}

func TestLoginDoesNotLeakWhichFieldIsWrong(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "x@b.com", Password: "secret1"})
	assert.Equal(t, KindAuth, KindOf(wrongPassword))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = svc.Login(ctx, LoginInput{Email: "a@b.com"})
	assert.Equal(t, KindValidation, KindOf(err))

	session, err := svc.Login(ctx, LoginInput{Email: "A@B.COM", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	db := testutil.NewDB(t)
	svc, users := newAuthServiceWithDB(t, db)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B", Role: "Agent"})
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAgent, id.Role)

	_, err = users.UpdateRole(ctx, session.User.ID, model.RoleAdmin)
	require.NoError(t, err)
	id, err = svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role, "identity follows the stored user")

	require.NoError(t, db.Delete(&model.User{}, "id = ?", session.User.ID).Error)
	_, err = svc.Authenticate(ctx, session.Token)
	assert.Equal(t, KindAuth, KindOf(err))

	_, err = svc.Authenticate(ctx, "")
	assert.Equal(t, KindAuth, KindOf(err))
	_, err = svc.Authenticate(ctx, "garbage")
	assert.Equal(t, KindAuth, KindOf(err))
}

// staleUsers misses every email lookup, as a concurrent signup would.
type staleUsers struct {
	*repository.UserRepository
}

func (staleUsers) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func TestRegisterDuplicateRace(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "taken@example.com", model.RoleBuyer)

	tokens, err := jwt.NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(staleUsers{repository.NewUserRepository(db)}, tokens, nop())
	svc.cost = bcrypt.MinCost

	_, err = svc.Register(context.Background(), RegisterInput{Email: "Taken@example.com", Password: "secret1", FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Email already exists", err.Error())
}
