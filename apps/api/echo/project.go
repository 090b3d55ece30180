package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
	"github.com/devShreyas21/studentPortal/core/user"
)

type teacherApi struct {
	projectSvc    *project.Service
	submissionSvc *submission.Service
	usrSvc        *user.Service
	validate      *validator.Validate
}

func registerTeacherAPI(
	g *echo.Group,
	projectSvc *project.Service,
	submissionSvc *submission.Service,
	usrSvc *user.Service,
	validate *validator.Validate,
) {
	api := teacherApi{
		projectSvc:    projectSvc,
		submissionSvc: submissionSvc,
		usrSvc:        usrSvc,
		validate:      validate,
	}

	g.GET("/projects", api.queryProjects)
	g.GET("/students", api.queryStudents)

	g.POST("/project", api.createProject)
	g.PUT("/project/:id", api.updateProject)
	g.DELETE("/project/:id", api.destroyProject)

	g.POST("/task", api.createTask)
	g.PUT("/task/:id", api.updateTask)
	g.DELETE("/task/:id", api.destroyTask)
	g.GET("/task/:id/submissions", api.querySubmissions)

	g.PUT("/grade", api.grade)
}

// Handlers

func (api *teacherApi) queryProjects(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	overviews, err := api.projectSvc.ListForTeacher(ctx.Request().Context(), teacher.ID)
	if err != nil {
		return errors.Wrap(err, "listing teacher projects")
	}
	subs, err := api.submissionSvc.ForTasks(ctx.Request().Context(), taskIDs(overviews))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	view, err := teacherProjectViews(overviews, subs)
	if err != nil {
		return errors.Wrap(err, "building project view")
	}
	return respond(ctx, http.StatusOK, view)
}

func (api *teacherApi) queryStudents(ctx echo.Context) error {
	ordering := []core.DBOrdering{{Field: "name", Ascending: true}}
	students, err := api.usrSvc.Query(ctx.Request().Context(), &user.QueryFilter{Role: user.RoleStudent}, ordering)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []user.User{}
	}
	return respond(ctx, http.StatusOK, students)
}

func (api *teacherApi) createProject(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data project.NewProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	p, err := api.projectSvc.CreateProject(ctx.Request().Context(), teacher.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	view, err := newProjectView(p)
	if err != nil {
		return errors.Wrap(err, "building project view")
	}
	return respond(ctx, http.StatusCreated, view)
}

func (api *teacherApi) updateProject(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data project.UpdateProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	p, err := api.projectSvc.EditProject(ctx.Request().Context(), teacher.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "editing project")
	}
	view, err := newProjectView(p)
	if err != nil {
		return errors.Wrap(err, "building project view")
	}
	return respond(ctx, http.StatusOK, view)
}

func (api *teacherApi) destroyProject(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.projectSvc.DeleteProject(ctx.Request().Context(), teacher.ID, id); err != nil {
		return errors.Wrap(err, "deleting project")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) createTask(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data project.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	t, err := api.projectSvc.AddTask(ctx.Request().Context(), teacher.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding task")
	}
	view, err := newTaskView(t)
	if err != nil {
		return errors.Wrap(err, "building task view")
	}
	return respond(ctx, http.StatusCreated, view)
}

func (api *teacherApi) updateTask(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data project.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	t, err := api.projectSvc.EditTask(ctx.Request().Context(), teacher.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "editing task")
	}
	view, err := newTaskView(t)
	if err != nil {
		return errors.Wrap(err, "building task view")
	}
	return respond(ctx, http.StatusOK, view)
}

func (api *teacherApi) destroyTask(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.projectSvc.DeleteTask(ctx.Request().Context(), teacher.ID, id); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) querySubmissions(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	subs, err := api.submissionSvc.ListByTask(ctx.Request().Context(), teacher.ID, id)
	if err != nil {
		return errors.Wrap(err, "listing task submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return respond(ctx, http.StatusOK, subs)
}

func (api *teacherApi) grade(ctx echo.Context) error {
	teacher, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data submission.GradeInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	data.Clean()
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	s, err := api.submissionSvc.Grade(ctx.Request().Context(), teacher.ID, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return respond(ctx, http.StatusOK, s)
}
