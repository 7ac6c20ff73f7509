package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"recruitflow/internal/errors"
	"recruitflow/internal/middleware"
	"recruitflow/internal/repository"
	"recruitflow/internal/service"
)

// Response is the success envelope shared by every JSON endpoint.
type Response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func okMessage(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

func okPage[T any](c echo.Context, page *service.Page[T]) error {
	totalPages := int64(0)
	if page.Limit > 0 {
		totalPages = (page.Total + int64(page.Limit) - 1) / int64(page.Limit)
	}
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    page.Items,
		Pagination: &Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: totalPages,
		},
	})
}

// bindAndValidate decodes the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Validation("invalid request body")
	}
	return c.Validate(req)
}

// actorFrom builds the service actor from the verified token claims.
func actorFrom(c echo.Context) (service.Actor, error) {
	claims, found := middleware.ClaimsFrom(c)
	if !found {
		return service.Actor{}, errors.ErrUnauthorized
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

func parseID(c echo.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidID
	}
	return id, nil
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.ErrInvalidID
	}
	return &id, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.Validation("invalid boolean value: " + raw)
	}
	return &v, nil
}

func listOptions(c echo.Context) repository.ListOptions {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.ListOptions{Page: page, Limit: limit}.Normalize()
}
