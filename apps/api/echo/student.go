package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
)

type studentApi struct {
	projectSvc    *project.Service
	submissionSvc *submission.Service
	validate      *validator.Validate
}

func registerStudentAPI(g *echo.Group, projectSvc *project.Service, submissionSvc *submission.Service, validate *validator.Validate) {
	api := studentApi{
		projectSvc:    projectSvc,
		submissionSvc: submissionSvc,
		validate:      validate,
	}

	g.GET("/projects", api.queryProjects)
	g.POST("/submit", api.submit)
}

// Handlers

func (api *studentApi) queryProjects(ctx echo.Context) error {
	std, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	overviews, err := api.projectSvc.ListForStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "listing student projects")
	}
	subs, err := api.submissionSvc.ForStudent(ctx.Request().Context(), std.ID, taskIDs(overviews))
	if err != nil {
		return errors.Wrap(err, "listing student submissions")
	}
	view, err := studentProjectViews(overviews, subs)
	if err != nil {
		return errors.Wrap(err, "building project view")
	}
	return respond(ctx, http.StatusOK, view)
}

func (api *studentApi) submit(ctx echo.Context) error {
	std, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data submission.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	s, err := api.submissionSvc.Submit(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting task")
	}
	return respond(ctx, http.StatusOK, submitResponse{Message: "Task submitted successfully", Submission: s})
}

type submitResponse struct {
	Message    string                `json:"message"`
	Submission submission.Submission `json:"submission"`
}
