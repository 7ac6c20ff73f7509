package handler

import (
	"github.com/labstack/echo/v4"

	"recruitflow/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	plans service.PlanService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(plans service.PlanService) *SeedHandler {
	return &SeedHandler{plans: plans}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Created int `json:"created"`
}

// SeedPlans godoc
// @Summary Insert the default plan catalogue
// @Description Plans that already exist are left untouched.
// @Tags admin-plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=SeedResponse}
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/seed/plans [post]
func (h *SeedHandler) SeedPlans(c echo.Context) error {
	created, err := h.plans.SeedDefaults(c.Request().Context())
	if err != nil {
		return err
	}
	return okMessage(c, "default plans seeded", SeedResponse{Created: created})
}
