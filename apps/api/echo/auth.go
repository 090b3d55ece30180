package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/auth"
	"github.com/devShreyas21/studentPortal/core/user"
)

const (
	authScheme       = "Bearer"
	contextUserKey   = "user"
	contextClaimsKey = "claims"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// authMiddleware lets the request through when its bearer token belongs to an existing user
// holding `role` (any role if empty). The user and claims are stored on the context.
func authMiddleware(svc *auth.Service, role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, claims, err := svc.Authorize(ctx.Request().Context(), bearerToken(ctx.Request()), role)
			if err != nil {
				return errors.Wrap(err, "authorizing request")
			}
			ctx.Set(contextUserKey, usr)
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get(echo.HeaderAuthorization)
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) && header[l] == ' ' {
		return strings.TrimSpace(header[l+1:])
	}
	return ""
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}

func getContextClaims(ctx echo.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	return nil, auth.ErrUnauthorized
}

type authApi struct {
	svc      *auth.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *auth.Service, usrSvc *user.Service, validate *validator.Validate) {
	api := authApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/register", api.register)

	// authed endpoints
	g.POST("/token-refresh", api.refreshToken, authed)
	g.GET("/me", api.me, authed)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data auth.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return respond(ctx, http.StatusOK, sess)
}

func (api *authApi) register(ctx echo.Context) error {
	if err := api.svc.CheckRegistration(); err != nil {
		return err
	}

	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.usrSvc); err != nil {
		return err
	}

	sess, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering")
	}
	return respond(ctx, http.StatusCreated, sess)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	token, err := api.svc.Refresh(usr, claims)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return respond(ctx, http.StatusOK, echo.Map{"token": token})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, usr)
}
