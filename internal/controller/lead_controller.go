package controller

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/service"
)

type LeadController struct {
	leads *service.LeadService
}

func NewLeadController(leads *service.LeadService) *LeadController {
	return &LeadController{leads: leads}
}

// CreateLead is the public inquiry form.
func (h *LeadController) CreateLead(c *fiber.Ctx) error {
	input := new(service.CreateLeadInput)
	if err := parseJSON(c, input); err != nil {
		return err
	}

	res, err := h.leads.Create(c.UserContext(), *input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"lead": res.Lead.Public(),
	})
}

func (h *LeadController) GetMyLeads(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	leads, err := h.leads.ListForAgent(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"results": len(leads),
		"leads":   leads,
	})
}

func (h *LeadController) UpdateLeadStatus(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := parseJSON(c, &input); err != nil {
		return err
	}

	lead, err := h.leads.UpdateStatus(c.UserContext(), id, c.Params("id"), input.Status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"lead": lead})
}
