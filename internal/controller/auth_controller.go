package controller

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/service"
)

type AuthController struct {
	auth *service.AuthService
}

func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup registers a Buyer (or Agent) and logs them in.
func (h *AuthController) Signup(c *fiber.Ctx) error {
	input := new(service.RegisterInput)
	if err := parseJSON(c, input); err != nil {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), *input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": session.Token,
		"user":  session.User,
	})
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	input := new(service.LoginInput)
	if err := parseJSON(c, input); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), *input)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": session.Token,
		"user":  session.User,
	})
}

// GetMe returns the logged in user's profile.
func (h *AuthController) GetMe(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Me(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}
