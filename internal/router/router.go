package router

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"recruitflow/internal/config"
	"recruitflow/internal/errors"
	"recruitflow/internal/handler"
	"recruitflow/internal/logger"
	"recruitflow/internal/middleware"
	"recruitflow/internal/model"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Candidate *handler.CandidateHandler
	Recruiter *handler.RecruiterHandler
	Admin     *handler.AdminHandler
	Job       *handler.JobHandler
	Resume    *handler.ResumeHandler
	Plan      *handler.PlanHandler
	Seed      *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, sessions middleware.SessionValidator, h Handlers) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(bodyLimit(cfg.Upload.MaxFileSize)))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.GET("/plans", h.Plan.PublicPlans)

	// Secured routes (require an active session)
	secured := api.Group("", middleware.JWT([]byte(cfg.JWTSecret)), middleware.RequireActive(sessions))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	admin := secured.Group("/admin", middleware.RequireRoles(model.RoleAdmin))
	admin.GET("/users", h.User.ListUsers)
	admin.POST("/users", h.User.CreateUser)
	admin.GET("/users/:id", h.User.GetUser)
	admin.PUT("/users/:id", h.User.UpdateUser)
	admin.DELETE("/users/:id", h.User.DeleteUser)

	admin.GET("/candidates", h.Candidate.ListCandidates)
	admin.POST("/candidates", h.Candidate.CreateCandidate)
	admin.GET("/candidates/:id", h.Candidate.GetCandidate)
	admin.PUT("/candidates/:id", h.Candidate.UpdateCandidate)
	admin.DELETE("/candidates/:id", h.Candidate.DeleteCandidate)
	admin.PUT("/candidates/:id/payment-status", h.Candidate.UpdatePaymentStatus)

	admin.GET("/recruiters", h.Recruiter.ListRecruiters)
	admin.POST("/recruiters", h.Recruiter.CreateRecruiter)
	admin.GET("/recruiters/:id", h.Recruiter.GetRecruiter)
	admin.PUT("/recruiters/:id", h.Recruiter.UpdateRecruiter)
	admin.DELETE("/recruiters/:id", h.Recruiter.DeleteRecruiter)

	admin.PUT("/assign-recruiter", h.Admin.AssignRecruiter)
	admin.PUT("/unassign-recruiter", h.Admin.UnassignRecruiter)
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/export/candidates", h.Admin.ExportCandidates)
	admin.GET("/export/applications", h.Admin.ExportApplications)
	admin.GET("/activity", h.Admin.ListActivity)

	admin.GET("/plans", h.Plan.ListPlans)
	admin.POST("/plans", h.Plan.CreatePlan)
	admin.GET("/plans/:id", h.Plan.GetPlan)
	admin.PUT("/plans/:id", h.Plan.UpdatePlan)
	admin.PATCH("/plans/:id/status", h.Plan.SetPlanStatus)
	admin.DELETE("/plans/:id", h.Plan.DeletePlan)
	admin.POST("/seed/plans", h.Seed.SeedPlans)

	recruiter := secured.Group("/recruiter", middleware.RequireRoles(model.RoleRecruiter))
	recruiter.GET("/candidates", h.Recruiter.MyCandidates)
	recruiter.GET("/candidates/:id", h.Recruiter.GetCandidate)
	recruiter.PUT("/candidates/:id/status", h.Recruiter.UpdateCandidateStatus)
	recruiter.GET("/dashboard", h.Recruiter.Dashboard)

	candidate := secured.Group("/candidate", middleware.RequireRoles(model.RoleCandidate))
	candidate.GET("/profile", h.Candidate.GetProfile)
	candidate.PUT("/profile", h.Candidate.UpdateProfile)
	candidate.POST("/subscription", h.Candidate.Subscribe)
	candidate.GET("/applications", h.Candidate.ListApplications)
	candidate.POST("/resumes", h.Candidate.UploadResume)
	candidate.GET("/resumes", h.Candidate.ListResumes)
	candidate.DELETE("/resumes/:id", h.Candidate.DeleteResume)
	// Assigned recruiters and admins download through the same route; the service checks access.
	secured.GET("/candidate/resumes/:id/download", h.Candidate.DownloadResume)

	staff := middleware.RequireRoles(model.RoleAdmin, model.RoleRecruiter)

	jobs := secured.Group("/jobs", staff)
	jobs.GET("", h.Job.ListJobs)
	jobs.POST("", h.Job.CreateJob)
	jobs.GET("/:id", h.Job.GetJob)
	jobs.PUT("/:id", h.Job.UpdateJob)
	jobs.PATCH("/:id/status", h.Job.UpdateJobStatus)
	jobs.DELETE("/:id", h.Job.DeleteJob)
	jobs.GET("/:id/resume/download", h.Job.DownloadJobResume)

	resume := secured.Group("/resume", staff)
	resume.POST("/generate", h.Resume.Generate)
	resume.GET("/download", h.Resume.Download)
	resume.POST("/download", h.Resume.Download)
}

// bodyLimit leaves room for multipart overhead on top of the upload limit.
func bodyLimit(maxFileSize int64) string {
	if maxFileSize <= 0 {
		return "2M"
	}
	return fmt.Sprintf("%dK", maxFileSize/1024+1024)
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil && level == slog.LevelError {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.Get().LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// ErrorHandler renders every error in the ErrorResponse envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp errors.ErrorResponse
	status := http.StatusInternalServerError

	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		status = echoErr.Code
		resp = errors.ErrorResponse{Message: fmt.Sprint(echoErr.Message), Code: statusCode(status)}
		if inner, ok := echoErr.Message.(errors.ErrorResponse); ok {
			resp = inner
		}
	} else {
		httpErr := errors.MapErrorToHTTP(err)
		status = httpErr.StatusCode
		resp = httpErr.ToErrorResponse()
		if status >= http.StatusInternalServerError {
			logger.WithError(err).Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
		}
	}
	resp.Success = false

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		logger.WithError(err).Warn("failed to write error response")
	}
}

// statusCode turns 413 into "REQUEST_ENTITY_TOO_LARGE".
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.Validation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "uuid":
		return fe.Field() + " must be a valid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min", "len", "max":
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "url":
		return fe.Field() + " must be a valid URL"
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}
