package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/session"
)

type (
	sessionApi struct {
		svc      *session.Service
		gate     *access.Gate
		validate *validator.Validate
	}

	SessionResponse struct {
		User            *session.Claims  `json:"user"`
		RoleDisplayName string           `json:"roleDisplayName"`
		Landing         string           `json:"landing"`
		Navigation      []access.NavItem `json:"navigation"`
	}
)

func registerSessionAPI(g *echo.Group, deps ServerDeps) {
	api := sessionApi{svc: deps.Session, gate: deps.Gate, validate: deps.Validate}

	sg := g.Group("/session")
	sg.GET("", api.current)
	sg.POST("/signup", api.signup)
	sg.POST("/login", api.login)
	sg.POST("/admin-login", api.adminLogin)
	sg.POST("/logout", api.logout)

	g.GET("/access", api.check)
}

func (api *sessionApi) response(claims *session.Claims) SessionResponse {
	return SessionResponse{
		User:            claims,
		RoleDisplayName: access.RoleDisplayName(claims.Role),
		Landing:         api.gate.LandingFor(claims),
		Navigation:      api.gate.Navigation(claims),
	}
}

// Handlers

func (api *sessionApi) current(ctx echo.Context) error {
	claims, ok := contextClaims(ctx)
	if !ok {
		return &gateError{decision: access.Decision{Target: access.PathAuth, Reason: access.ReasonUnauthenticated}}
	}
	return ctx.JSON(http.StatusOK, api.response(claims))
}

func (api *sessionApi) signup(ctx echo.Context) error {
	var data session.SignupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignupRequest")
	}

	claims, err := api.svc.Signup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return ctx.JSON(http.StatusCreated, api.response(claims))
}

func (api *sessionApi) login(ctx echo.Context) error {
	var data session.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	claims, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, api.response(claims))
}

func (api *sessionApi) adminLogin(ctx echo.Context) error {
	var data session.AdminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := api.svc.AdminLogin(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "admin login")
	}
	return ctx.JSON(http.StatusOK, api.response(claims))
}

func (api *sessionApi) logout(ctx echo.Context) error {
	if err := api.svc.Signout(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// check answers whether the current session may open `?path=`.
func (api *sessionApi) check(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if path == "" {
		path = access.PathHome
	}
	claims, _ := contextClaims(ctx)
	return ctx.JSON(http.StatusOK, api.gate.Check(ctx.Request().Context(), claims, path))
}
