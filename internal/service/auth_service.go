package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/pkg/utils/jwt"
)

const (
	msgBadCredentials = "Incorrect email or password"
	minPasswordLength = 6
)

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is a signed token together with the user it was issued for.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService struct {
	users  UserStore
	tokens *jwt.Manager
	cost   int
	log    *zap.Logger
}

func NewAuthService(users UserStore, tokens *jwt.Manager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost, log: log}
}

// Register creates a Buyer, or an Agent when one is explicitly requested, and
// signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = model.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, Validationf("Missing required fields.")
	}
	if len(in.Password) < minPasswordLength {
		return nil, Validationf("Password must be at least %d characters.", minPasswordLength)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, Validationf("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := model.RoleBuyer
	if model.Role(in.Role) == model.RoleAgent {
		role = model.RoleAgent
	}

	user := &model.User{
		Email:     in.Email,
		Password:  string(hash),
		Role:      role,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     strings.TrimSpace(in.Phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Validationf("Email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, Validationf("Please provide email and password!")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, Unauthorized(msgBadCredentials)
	}

	return s.session(user)
}

// VerifyToken checks the token without touching the store.
func (s *AuthService) VerifyToken(token string) (Identity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return Identity{}, Unauthorized("Invalid or expired token. Please log in again.")
	}
	return Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      model.Role(claims.Role),
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

// Authenticate verifies the token and confirms the user still exists. The
// returned identity reflects the stored user, not the token claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, Unauthorized("You are not logged in! Please log in to get access.")
	}
	claimed, err := s.VerifyToken(token)
	if err != nil {
		return Identity{}, err
	}

	user, err := s.users.FindByID(ctx, claimed.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return Identity{}, Unauthorized("The user belonging to this token no longer exists.")
	}
	if err != nil {
		return Identity{}, err
	}
	if !user.Role.Valid() {
		return Identity{}, Forbidden("User role is not defined.")
	}

	return identityOf(user), nil
}

func (s *AuthService) Me(ctx context.Context, id Identity) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("User not found.")
	}
	return user, err
}

func (s *AuthService) session(user *model.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role), user.FirstName, user.LastName)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func identityOf(user *model.User) Identity {
	return Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
