package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"recruitflow/internal/document"
	"recruitflow/internal/errors"
	"recruitflow/internal/service"
)

// DocumentRenderer turns resume text into a downloadable file.
type DocumentRenderer interface {
	Export(name, text string) (*document.File, error)
}

// ResumeHandler serves AI resume generation and document downloads.
type ResumeHandler struct {
	resumes  service.ResumeService
	renderer DocumentRenderer
}

// NewResumeHandler creates a new resume handler.
func NewResumeHandler(resumes service.ResumeService, renderer DocumentRenderer) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, renderer: renderer}
}

// DownloadRequest carries the text to render.
type DownloadRequest struct {
	Text string `json:"text" query:"text" form:"text"`
	Name string `json:"name" query:"name" form:"name"`
}

// Generate godoc
// @Summary Generate a tailored resume
// @Description Generates resume text for an assigned candidate and stores it on a job application.
// @Tags resume
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.GenerateResumeInput true "Candidate and job description"
// @Success 200 {object} Response{data=service.GeneratedResume}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /resume/generate [post]
func (h *ResumeHandler) Generate(c echo.Context) error {
	var req service.GenerateResumeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	result, err := h.resumes.Generate(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return okMessage(c, "resume generated successfully", result)
}

// Download godoc
// @Summary Download resume text as a Word document
// @Description Falls back to a plain text attachment when the document cannot be rendered.
// @Tags resume
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Produce plain
// @Security BearerAuth
// @Param text query string false "Resume text (GET)"
// @Param name query string false "Candidate name (GET)"
// @Param request body DownloadRequest false "Resume text and name (POST)"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Router /resume/download [get]
// @Router /resume/download [post]
func (h *ResumeHandler) Download(c echo.Context) error {
	var req DownloadRequest
	if err := c.Bind(&req); err != nil {
		return errors.Validation("invalid request body")
	}
	return sendDocument(c, h.renderer, req.Name, req.Text)
}

func sendDocument(c echo.Context, renderer DocumentRenderer, name, text string) error {
	file, err := renderer.Export(name, text)
	if err != nil {
		if stderrors.Is(err, document.ErrEmptyText) {
			return errors.ErrEmptyResumeText
		}
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
