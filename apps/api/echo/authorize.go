package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/identity"
	"github.com/terakoya-app/terakoya/core/locale"
)

// requirePageRoles gates a protected page tree. The allowed-role set is
// declared at the route group, never inferred from the path. Failures are
// redirects, not error pages: protected content must stay invisible to
// unauthorized roles.
func requirePageRoles(repo identity.Repository, roles ...identity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := getContextIdentity(ctx, repo)
			if err != nil {
				return errors.Wrap(err, "resolving identity")
			}

			loc := currentLocale(ctx)
			switch identity.Authorize(id, roles...) {
			case identity.DecisionAuthorized:
				return next(ctx)
			case identity.DecisionWrongRole:
				// the caller's own landing page, never a generic error:
				// a wrong-role visit must not loop or leak
				return ctx.Redirect(http.StatusFound, locale.PathFor(loc, id.Role.LandingPath()))
			default:
				return ctx.Redirect(http.StatusFound, locale.PathFor(loc, signInPath))
			}
		}
	}
}

// requireAPIRoles is the API-namespace counterpart: JSON statuses instead of
// redirects. Missing session is 401, wrong role 403.
func requireAPIRoles(repo identity.Repository, roles ...identity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := getContextIdentity(ctx, repo)
			if err != nil {
				return errors.Wrap(err, "resolving identity")
			}

			switch identity.Authorize(id, roles...) {
			case identity.DecisionAuthorized:
				return next(ctx)
			case identity.DecisionWrongRole:
				return errHttpForbidden
			default:
				return errUnauthorized
			}
		}
	}
}
