package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
	"recruitflow/internal/service"
)

// JobHandler serves job applications for recruiters and admins.
type JobHandler struct {
	applications service.JobApplicationService
	renderer     DocumentRenderer
}

// NewJobHandler creates a new job application handler.
func NewJobHandler(applications service.JobApplicationService, renderer DocumentRenderer) *JobHandler {
	return &JobHandler{applications: applications, renderer: renderer}
}

// ApplicationStatusRequest moves an application to another status.
type ApplicationStatusRequest struct {
	Status model.ApplicationStatus `json:"status" validate:"required"`
}

// ListJobs godoc
// @Summary List job applications
// @Description Recruiters see applications of their assigned candidates only.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param candidateId query string false "Candidate ID"
// @Param status query string false "Application status"
// @Param q query string false "Search by title or company"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} Response{data=[]model.JobApplication}
// @Failure 400 {object} errors.ErrorResponse
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c echo.Context) error {
	candidateID, err := parseOptionalID(c.QueryParam("candidateId"))
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.applications.List(c.Request().Context(), actor, repository.JobApplicationFilter{
		CandidateID: candidateID,
		Status:      model.ApplicationStatus(c.QueryParam("status")),
		Query:       c.QueryParam("q"),
		ListOptions: listOptions(c),
	})
	if err != nil {
		return err
	}
	return okPage(c, page)
}

// GetJob godoc
// @Summary Get job application
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job application ID"
// @Success 200 {object} Response{data=model.JobApplication}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, app)
}

// CreateJob godoc
// @Summary Create job application
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateJobApplicationInput true "Job application"
// @Success 201 {object} Response{data=model.JobApplication}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c echo.Context) error {
	var req service.CreateJobApplicationInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, app)
}

// UpdateJob godoc
// @Summary Update job application
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job application ID"
// @Param request body service.UpdateJobApplicationInput true "Fields to change"
// @Success 200 {object} Response{data=model.JobApplication}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jobs/{id} [put]
func (h *JobHandler) UpdateJob(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateJobApplicationInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, app)
}

// UpdateJobStatus godoc
// @Summary Change job application status
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job application ID"
// @Param request body ApplicationStatusRequest true "Status"
// @Success 200 {object} Response{data=model.JobApplication}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /jobs/{id}/status [patch]
func (h *JobHandler) UpdateJobStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req ApplicationStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	app, err := h.applications.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, app)
}

// DeleteJob godoc
// @Summary Delete job application
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job application ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.applications.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return okMessage(c, "job application deleted", nil)
}

// DownloadJobResume godoc
// @Summary Download the generated resume of a job application
// @Tags jobs
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Produce plain
// @Security BearerAuth
// @Param id path string true "Job application ID"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jobs/{id}/resume/download [get]
func (h *JobHandler) DownloadJobResume(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	if app.ResumeText == "" {
		return errors.ErrEmptyResumeText
	}

	name := ""
	if app.Candidate != nil {
		name = app.Candidate.FullName
	}
	return sendDocument(c, h.renderer, name, app.ResumeText)
}
