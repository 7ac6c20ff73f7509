package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"recruitflow/internal/errors"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
	"recruitflow/internal/service"
)

// CandidateHandler serves admin candidate management and the candidate self-service area.
type CandidateHandler struct {
	candidates   service.CandidateService
	uploads      service.UploadService
	applications service.JobApplicationService
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(
	candidates service.CandidateService,
	uploads service.UploadService,
	applications service.JobApplicationService,
) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, uploads: uploads, applications: applications}
}

// PaymentStatusRequest changes a candidate's payment status.
type PaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus" validate:"required,oneof=pending paid failed expired refunded"`
}

// SubscribeRequest selects a subscription plan.
type SubscribeRequest struct {
	PlanID string `json:"planId" validate:"required,max=100"`
}

// SubscriptionResponse is returned after choosing a plan.
type SubscriptionResponse struct {
	Candidate *model.Candidate           `json:"candidate"`
	Payment   *model.SubscriptionPayment `json:"payment"`
}

// ListCandidates godoc
// @Summary List candidates
// @Tags admin-candidates
// @Produce json
// @Security BearerAuth
// @Param status query string false "Candidate status"
// @Param paymentStatus query string false "Payment status"
// @Param assigned query bool false "Only assigned (true) or unassigned (false) candidates"
// @Param recruiterId query string false "Assigned recruiter ID"
// @Param q query string false "Search by name or email"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} Response{data=[]model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/candidates [get]
func (h *CandidateHandler) ListCandidates(c echo.Context) error {
	filter, err := candidateFilter(c)
	if err != nil {
		return err
	}
	page, err := h.candidates.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return okPage(c, page)
}

// GetCandidate godoc
// @Summary Get candidate
// @Tags admin-candidates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/candidates/{id} [get]
func (h *CandidateHandler) GetCandidate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	candidate, err := h.candidates.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// CreateCandidate godoc
// @Summary Create candidate
// @Description Creates the login user and the candidate profile. A random password is set when none is given.
// @Tags admin-candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCandidateInput true "Candidate"
// @Success 201 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/candidates [post]
func (h *CandidateHandler) CreateCandidate(c echo.Context) error {
	var req service.CreateCandidateInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	candidate, err := h.candidates.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, candidate)
}

// UpdateCandidate godoc
// @Summary Update candidate
// @Tags admin-candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Param request body service.UpdateCandidateInput true "Fields to change"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/candidates/{id} [put]
func (h *CandidateHandler) UpdateCandidate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateCandidateInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	candidate, err := h.candidates.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// DeleteCandidate godoc
// @Summary Delete candidate
// @Tags admin-candidates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/candidates/{id} [delete]
func (h *CandidateHandler) DeleteCandidate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.candidates.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return okMessage(c, "candidate deleted", nil)
}

// UpdatePaymentStatus godoc
// @Summary Set candidate payment status
// @Description Marking a payment paid starts the subscription period of the candidate's plan.
// @Tags admin-candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Param request body PaymentStatusRequest true "Payment status"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/candidates/{id}/payment-status [put]
func (h *CandidateHandler) UpdatePaymentStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req PaymentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	candidate, err := h.candidates.UpdatePaymentStatus(c.Request().Context(), actor, id, req.PaymentStatus)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// GetProfile godoc
// @Summary Own candidate profile
// @Tags candidate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 404 {object} errors.ErrorResponse
// @Router /candidate/profile [get]
func (h *CandidateHandler) GetProfile(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	candidate, err := h.candidates.Profile(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// UpdateProfile godoc
// @Summary Update own candidate profile
// @Tags candidate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CandidateProfileInput true "Fields to change"
// @Success 200 {object} Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Router /candidate/profile [put]
func (h *CandidateHandler) UpdateProfile(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req service.CandidateProfileInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	candidate, err := h.candidates.UpdateProfile(c.Request().Context(), actor.UserID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, candidate)
}

// Subscribe godoc
// @Summary Choose a subscription plan
// @Description Opens a pending payment for the plan price.
// @Tags candidate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeRequest true "Plan"
// @Success 200 {object} Response{data=SubscriptionResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /candidate/subscription [post]
func (h *CandidateHandler) Subscribe(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req SubscribeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	candidate, payment, err := h.candidates.Subscribe(c.Request().Context(), actor.UserID, req.PlanID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, SubscriptionResponse{Candidate: candidate, Payment: payment})
}

// ListApplications godoc
// @Summary Own job applications
// @Tags candidate
// @Produce json
// @Security BearerAuth
// @Param status query string false "Application status"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} Response{data=[]model.JobApplication}
// @Router /candidate/applications [get]
func (h *CandidateHandler) ListApplications(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.applications.List(c.Request().Context(), actor, repository.JobApplicationFilter{
		Status:      model.ApplicationStatus(c.QueryParam("status")),
		ListOptions: listOptions(c),
	})
	if err != nil {
		return err
	}
	return okPage(c, page)
}

// UploadResume godoc
// @Summary Upload a resume file
// @Tags candidate
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "PDF, DOC, DOCX or TXT"
// @Success 201 {object} Response{data=model.Resume}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /candidate/resumes [post]
func (h *CandidateHandler) UploadResume(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	file, err := c.FormFile("resume")
	if err != nil {
		return errors.Validation("resume file is required")
	}
	resume, err := h.uploads.Upload(c.Request().Context(), actor.UserID, file)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, resume)
}

// ListResumes godoc
// @Summary List own resume files
// @Tags candidate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.Resume}
// @Router /candidate/resumes [get]
func (h *CandidateHandler) ListResumes(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	resumes, err := h.uploads.List(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, resumes)
}

// DownloadResume godoc
// @Summary Download a resume file
// @Description Available to the owner, the assigned recruiter and admins.
// @Tags candidate
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {file} file
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /candidate/resumes/{id}/download [get]
func (h *CandidateHandler) DownloadResume(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	resume, content, err := h.uploads.Open(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	defer content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resume.OriginalName))
	return c.Stream(http.StatusOK, resume.ContentType, io.Reader(content))
}

// DeleteResume godoc
// @Summary Delete own resume file
// @Tags candidate
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /candidate/resumes/{id} [delete]
func (h *CandidateHandler) DeleteResume(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.uploads.Delete(c.Request().Context(), actor.UserID, id); err != nil {
		return err
	}
	return okMessage(c, "resume deleted", nil)
}

func candidateFilter(c echo.Context) (repository.CandidateFilter, error) {
	assigned, err := parseOptionalBool(c.QueryParam("assigned"))
	if err != nil {
		return repository.CandidateFilter{}, err
	}
	recruiterID, err := parseOptionalID(c.QueryParam("recruiterId"))
	if err != nil {
		return repository.CandidateFilter{}, err
	}
	return repository.CandidateFilter{
		Status:        model.CandidateStatus(c.QueryParam("status")),
		PaymentStatus: model.PaymentStatus(c.QueryParam("paymentStatus")),
		Assigned:      assigned,
		RecruiterID:   recruiterID,
		Query:         c.QueryParam("q"),
		ListOptions:   listOptions(c),
	}, nil
}
