package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"recruitflow/internal/service"
)

// AdminHandler serves assignment, dashboard, export and activity endpoints.
type AdminHandler struct {
	assignments service.AssignmentService
	dashboard   service.DashboardService
	exports     service.ExportService
	activity    service.ActivityService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	assignments service.AssignmentService,
	dashboard service.DashboardService,
	exports service.ExportService,
	activity service.ActivityService,
) *AdminHandler {
	return &AdminHandler{assignments: assignments, dashboard: dashboard, exports: exports, activity: activity}
}

// AssignRecruiter godoc
// @Summary Assign a candidate to a recruiter
// @Description A candidate held by another recruiter is moved. Fails when the recruiter is inactive or at capacity.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AssignInput true "Candidate and recruiter"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/assign-recruiter [put]
func (h *AdminHandler) AssignRecruiter(c echo.Context) error {
	var req service.AssignInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	candidate, err := h.assignments.Assign(c.Request().Context(), actor,
		uuid.MustParse(req.CandidateID), uuid.MustParse(req.RecruiterID))
	if err != nil {
		return err
	}
	return okMessage(c, "candidate assigned to recruiter", candidate)
}

// UnassignRecruiter godoc
// @Summary Remove a candidate's recruiter
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UnassignInput true "Candidate"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/unassign-recruiter [put]
func (h *AdminHandler) UnassignRecruiter(c echo.Context) error {
	var req service.UnassignInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	candidate, err := h.assignments.Unassign(c.Request().Context(), actor, uuid.MustParse(req.CandidateID))
	if err != nil {
		return err
	}
	return okMessage(c, "candidate unassigned", candidate)
}

// Dashboard godoc
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.AdminDashboard}
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	dashboard, err := h.dashboard.Admin(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dashboard)
}

// ExportCandidates godoc
// @Summary Export candidates as a spreadsheet
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /admin/export/candidates [get]
func (h *AdminHandler) ExportCandidates(c echo.Context) error {
	file, err := h.exports.Candidates(c.Request().Context())
	if err != nil {
		return err
	}
	return sendExport(c, file)
}

// ExportApplications godoc
// @Summary Export job applications as a spreadsheet
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /admin/export/applications [get]
func (h *AdminHandler) ExportApplications(c echo.Context) error {
	file, err := h.exports.Applications(c.Request().Context())
	if err != nil {
		return err
	}
	return sendExport(c, file)
}

// ListActivity godoc
// @Summary Recent activity
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} Response{data=[]model.ActivityLog}
// @Router /admin/activity [get]
func (h *AdminHandler) ListActivity(c echo.Context) error {
	page, err := h.activity.List(c.Request().Context(), listOptions(c))
	if err != nil {
		return err
	}
	return okPage(c, page)
}

func sendExport(c echo.Context, file *service.ExportFile) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
