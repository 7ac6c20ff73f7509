package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recruitflow/internal/model"
	"recruitflow/internal/service"
)

// PlanHandler serves the subscription plan catalogue.
type PlanHandler struct {
	plans service.PlanService
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(plans service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// PlanStatusRequest activates or deactivates a plan.
type PlanStatusRequest struct {
	Status model.PlanStatus `json:"status" validate:"required,oneof=active inactive"`
}

// PublicPlans godoc
// @Summary Active subscription plans
// @Tags plans
// @Produce json
// @Success 200 {object} Response{data=[]model.Plan}
// @Router /plans [get]
func (h *PlanHandler) PublicPlans(c echo.Context) error {
	plans, err := h.plans.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, plans)
}

// ListPlans godoc
// @Summary List plans
// @Tags admin-plans
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status" Enums(active, inactive)
// @Success 200 {object} Response{data=[]model.Plan}
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/plans [get]
func (h *PlanHandler) ListPlans(c echo.Context) error {
	plans, err := h.plans.List(c.Request().Context(), model.PlanStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get plan
// @Tags admin-plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} Response{data=model.Plan}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/plans/{id} [get]
func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	plan, err := h.plans.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, plan)
}

// CreatePlan godoc
// @Summary Create plan
// @Tags admin-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePlanInput true "Plan"
// @Success 201 {object} Response{data=model.Plan}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/plans [post]
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	var req service.CreatePlanInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	plan, err := h.plans.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, plan)
}

// UpdatePlan godoc
// @Summary Update plan
// @Tags admin-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param request body service.UpdatePlanInput true "Fields to change"
// @Success 200 {object} Response{data=model.Plan}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdatePlanInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	plan, err := h.plans.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, plan)
}

// SetPlanStatus godoc
// @Summary Activate or deactivate plan
// @Tags admin-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param request body PlanStatusRequest true "Status"
// @Success 200 {object} Response{data=model.Plan}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/plans/{id}/status [patch]
func (h *PlanHandler) SetPlanStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req PlanStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	plan, err := h.plans.SetStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, plan)
}

// DeletePlan godoc
// @Summary Delete plan
// @Description Deactivates and soft-deletes the plan.
// @Tags admin-plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.plans.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return okMessage(c, "plan deleted", nil)
}
