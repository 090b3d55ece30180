package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/activity"
	"github.com/devShreyas21/studentPortal/core/auth"
	"github.com/devShreyas21/studentPortal/core/file"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
	"github.com/devShreyas21/studentPortal/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		Metrics        *Metrics // optional
		DisableReqLogs bool

		AuthSvc       *auth.Service
		UserSvc       *user.Service
		ProjectSvc    *project.Service
		SubmissionSvc *submission.Service
		FileSvc       *file.Service
		ActivitySvc   *activity.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	authed := func(role user.Role) echo.MiddlewareFunc { return authMiddleware(s.deps.AuthSvc, role) }

	registerAuthAPI(s.app.Group("/auth"), authed(""), s.deps.AuthSvc, s.deps.UserSvc, s.deps.Validate)
	registerAdminAPI(
		s.app.Group("/admin", authed(user.RoleAdmin)),
		s.deps.UserSvc, s.deps.ActivitySvc, s.deps.Validate,
	)
	registerTeacherAPI(
		s.app.Group("/teacher", authed(user.RoleTeacher)),
		s.deps.ProjectSvc, s.deps.SubmissionSvc, s.deps.UserSvc, s.deps.Validate,
	)
	registerStudentAPI(
		s.app.Group("/student", authed(user.RoleStudent)),
		s.deps.ProjectSvc, s.deps.SubmissionSvc, s.deps.Validate,
	)
	uploadLimit := middleware.BodyLimit(strconv.FormatInt(conf.Upload.MaxSize+multipartOverhead, 10) + "B")
	registerUploadAPI(s.app.Group("/upload", authed(""), uploadLimit), s.deps.FileSvc)
}

// Start listens on the configured address and blocks. Listener errors are sent on Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

// respond wraps `data` in the {"data": ...} envelope.
func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, echo.Map{"data": data})
}
