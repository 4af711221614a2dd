package controller

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/repository"
	"realty_backend/internal/service"
)

type AdminController struct {
	admin *service.AdminService
}

func NewAdminController(admin *service.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func (h *AdminController) ListUsers(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	users, err := h.admin.ListUsers(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"results": len(users),
		"users":   users,
	})
}

func (h *AdminController) UpdateUserRole(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := parseJSON(c, &input); err != nil {
		return err
	}

	user, err := h.admin.UpdateRole(c.UserContext(), id, c.Params("id"), input.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// ListListings shows listings of every status for moderation.
func (h *AdminController) ListListings(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := repository.ClampLimit(c.Query("limit"))
	skip := repository.ClampSkip(c.Query("skip"))
	listings, err := h.admin.ListListings(c.UserContext(), id, c.Query("status"), limit, skip)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"results":  len(listings),
		"listings": listings,
	})
}
