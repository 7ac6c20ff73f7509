package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recruitflow/internal/model"
	"recruitflow/internal/repository"
	"recruitflow/internal/service"
)

// RecruiterHandler serves admin recruiter management and the recruiter workspace.
type RecruiterHandler struct {
	recruiters service.RecruiterService
	candidates service.CandidateService
	dashboard  service.DashboardService
}

// NewRecruiterHandler creates a new recruiter handler.
func NewRecruiterHandler(
	recruiters service.RecruiterService,
	candidates service.CandidateService,
	dashboard service.DashboardService,
) *RecruiterHandler {
	return &RecruiterHandler{recruiters: recruiters, candidates: candidates, dashboard: dashboard}
}

// CandidateStatusRequest changes the pipeline status of a candidate.
type CandidateStatusRequest struct {
	Status model.CandidateStatus `json:"status" validate:"required,oneof=new active interviewing placed inactive"`
}

// ListRecruiters godoc
// @Summary List recruiters
// @Description Entries carry assignedCount and workload.
// @Tags admin-recruiters
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param isActive query bool false "Active flag"
// @Param q query string false "Search by name or email"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} Response{data=[]model.Recruiter}
// @Router /admin/recruiters [get]
func (h *RecruiterHandler) ListRecruiters(c echo.Context) error {
	active, err := parseOptionalBool(c.QueryParam("isActive"))
	if err != nil {
		return err
	}
	page, err := h.recruiters.List(c.Request().Context(), repository.RecruiterFilter{
		Department:  c.QueryParam("department"),
		IsActive:    active,
		Query:       c.QueryParam("q"),
		ListOptions: listOptions(c),
	})
	if err != nil {
		return err
	}
	return okPage(c, page)
}

// GetRecruiter godoc
// @Summary Get recruiter with assigned candidates
// @Tags admin-recruiters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recruiter ID"
// @Success 200 {object} Response{data=model.Recruiter}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/recruiters/{id} [get]
func (h *RecruiterHandler) GetRecruiter(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	recruiter, err := h.recruiters.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, recruiter)
}

// CreateRecruiter godoc
// @Summary Create recruiter
// @Tags admin-recruiters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateRecruiterInput true "Recruiter"
// @Success 201 {object} Response{data=model.Recruiter}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/recruiters [post]
func (h *RecruiterHandler) CreateRecruiter(c echo.Context) error {
	var req service.CreateRecruiterInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recruiter, err := h.recruiters.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, recruiter)
}

// UpdateRecruiter godoc
// @Summary Update recruiter
// @Tags admin-recruiters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recruiter ID"
// @Param request body service.UpdateRecruiterInput true "Fields to change"
// @Success 200 {object} Response{data=model.Recruiter}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/recruiters/{id} [put]
func (h *RecruiterHandler) UpdateRecruiter(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateRecruiterInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recruiter, err := h.recruiters.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, recruiter)
}

// DeleteRecruiter godoc
// @Summary Delete recruiter
// @Description Releases the recruiter's candidates and disables its login. Job applications are kept.
// @Tags admin-recruiters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recruiter ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/recruiters/{id} [delete]
func (h *RecruiterHandler) DeleteRecruiter(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.recruiters.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return okMessage(c, "recruiter deleted", nil)
}

// MyCandidates godoc
// @Summary Candidates assigned to the caller
// @Tags recruiter
// @Produce json
// @Security BearerAuth
// @Param status query string false "Candidate status"
// @Param q query string false "Search by name or email"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} Response{data=[]model.Candidate}
// @Failure 403 {object} errors.ErrorResponse
// @Router /recruiter/candidates [get]
func (h *RecruiterHandler) MyCandidates(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.candidates.ListAssigned(c.Request().Context(), actor, repository.CandidateFilter{
		Status:      model.CandidateStatus(c.QueryParam("status")),
		Query:       c.QueryParam("q"),
		ListOptions: listOptions(c),
	})
	if err != nil {
		return err
	}
	return okPage(c, page)
}

// GetCandidate godoc
// @Summary Assigned candidate detail
// @Tags recruiter
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recruiter/candidates/{id} [get]
func (h *RecruiterHandler) GetCandidate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	candidate, err := h.candidates.GetForActor(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// UpdateCandidateStatus godoc
// @Summary Move an assigned candidate through the pipeline
// @Tags recruiter
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Param request body CandidateStatusRequest true "Status"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /recruiter/candidates/{id}/status [put]
func (h *RecruiterHandler) UpdateCandidateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req CandidateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	candidate, err := h.candidates.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// Dashboard godoc
// @Summary Recruiter dashboard
// @Tags recruiter
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.RecruiterDashboard}
// @Failure 403 {object} errors.ErrorResponse
// @Router /recruiter/dashboard [get]
func (h *RecruiterHandler) Dashboard(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	dashboard, err := h.dashboard.Recruiter(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dashboard)
}
