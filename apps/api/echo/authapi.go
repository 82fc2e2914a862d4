package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/session"
)

type authApi struct {
	opts *Options
}

func registerAuthAPI(g *echo.Group, opts *Options) {
	api := authApi{opts: opts}

	g.POST("/login", api.login, rateLimit(1, 5))
	g.POST("/logout", api.logout)
	g.GET("/me", api.me)
}

// login exchanges credentials for a session cookie pair. The tokens never
// appear in the response body; cookies are the only credential surface.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	pair, claims, err := api.opts.AuthBackend.SignIn(ctx.Request().Context(), data.Email, data.Password)
	switch errors.Cause(err) {
	case nil:
	case session.ErrBadCredentials:
		return errBadCredentials
	case session.ErrAccountSuspended:
		return errAccountSuspended
	default:
		return errors.Wrap(err, "signing in")
	}

	writeTokenPair(ctx, api.opts.Conf, pair)
	id, err := api.opts.Identities.GetIdentity(ctx.Request().Context(), claims.UserID)
	if err != nil {
		// session established; profile lookup is best-effort here
		return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
	return ctx.JSON(http.StatusOK, id)
}

func (api *authApi) logout(ctx echo.Context) error {
	pair := readTokenPair(ctx, api.opts.Conf)
	if pair.Refresh != "" {
		if err := api.opts.AuthBackend.SignOut(ctx.Request().Context(), pair.Refresh); err != nil {
			api.opts.Logger.Warn("auth: sign-out revocation failed", errors.Wrap(err, "revoking refresh token"))
		}
	}
	clearTokenPair(ctx, api.opts.Conf)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (api *authApi) me(ctx echo.Context) error {
	id, err := getContextIdentity(ctx, api.opts.Identities)
	if err != nil {
		return errors.Wrap(err, "resolving identity")
	}
	if id == nil {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, id)
}
