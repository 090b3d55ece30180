package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core/activity"
	"github.com/devShreyas21/studentPortal/core/user"
)

type adminApi struct {
	usrSvc      *user.Service
	activitySvc *activity.Service
	validate    *validator.Validate
}

func registerAdminAPI(g *echo.Group, usrSvc *user.Service, activitySvc *activity.Service, validate *validator.Validate) {
	api := adminApi{
		usrSvc:      usrSvc,
		activitySvc: activitySvc,
		validate:    validate,
	}

	g.GET("/users", api.queryUsers)
	g.POST("/users", api.createUser)
	g.DELETE("/users/:id", api.destroyUser)
	g.GET("/logs", api.queryLogs)
}

// Handlers

func (api *adminApi) queryUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respond(ctx, http.StatusOK, []user.User{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.usrSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return respond(ctx, http.StatusOK, users)
}

func (api *adminApi) createUser(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.usrSvc); err != nil {
		return err
	}

	usr, err := api.usrSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	if admin, err := getContextUser(ctx); err == nil {
		api.activitySvc.Record(ctx.Request().Context(), admin.ID, "user.create")
	}
	return respond(ctx, http.StatusCreated, usr)
}

func (api *adminApi) destroyUser(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	// Say No to Suicide! admins cannot delete themselves
	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if id == admin.ID {
		return errHttpForbidden
	}

	if err = api.usrSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	api.activitySvc.Record(ctx.Request().Context(), admin.ID, "user.delete")
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) queryLogs(ctx echo.Context) error {
	entries, err := api.activitySvc.Query(ctx.Request().Context(), queryInt(ctx, "limit", activity.DefaultLimit))
	if err != nil {
		return errors.Wrap(err, "querying activity logs")
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return respond(ctx, http.StatusOK, echo.Map{"logs": entries})
}
