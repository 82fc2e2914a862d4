package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/identity"
	"github.com/terakoya-app/terakoya/core/locale"
	"github.com/terakoya-app/terakoya/core/session"
)

const (
	ctxLocaleKey   = "locale"
	ctxClaimsKey   = "sessionClaims"
	ctxIdentityKey = "identity"

	signInPath = "/login"
)

// currentLocale returns the locale resolved by the request router.
func currentLocale(ctx echo.Context) locale.Locale {
	if loc, ok := ctx.Get(ctxLocaleKey).(locale.Locale); ok {
		return loc
	}
	return locale.Default
}

// getContextClaims returns the session claims, if the request carries a
// usable session. ok == false means anonymous.
func getContextClaims(ctx echo.Context) (*session.Claims, bool) {
	claims, ok := ctx.Get(ctxClaimsKey).(*session.Claims)
	return claims, ok && claims != nil
}

// getContextIdentity resolves the caller's identity once per request and
// caches it on the context. A nil identity with nil error means anonymous.
func getContextIdentity(ctx echo.Context, repo identity.Repository) (*identity.Identity, error) {
	if id, ok := ctx.Get(ctxIdentityKey).(*identity.Identity); ok {
		return id, nil
	}

	claims, ok := getContextClaims(ctx)
	if !ok {
		return nil, nil
	}

	id, err := repo.GetIdentity(ctx.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return nil, nil
		}
		return nil, core.NewUpstreamError("identity-store", err)
	}
	ctx.Set(ctxIdentityKey, &id)
	return &id, nil
}

// Cookies

func readTokenPair(ctx echo.Context, conf *core.Config) session.TokenPair {
	var pair session.TokenPair
	if cookie, err := ctx.Cookie(conf.Server.AccessCookieName); err == nil {
		pair.Access = cookie.Value
	}
	if cookie, err := ctx.Cookie(conf.Server.RefreshCookieName); err == nil {
		pair.Refresh = cookie.Value
	}
	return pair
}

// writeTokenPair rewrites both session cookies together; the pair is never
// half-written from the client's perspective.
func writeTokenPair(ctx echo.Context, conf *core.Config, pair session.TokenPair) {
	maxAge := int(conf.Server.JWTRefreshExpirationDelta / time.Second)
	ctx.SetCookie(sessionCookie(conf, conf.Server.AccessCookieName, pair.Access, maxAge))
	ctx.SetCookie(sessionCookie(conf, conf.Server.RefreshCookieName, pair.Refresh, maxAge))
}

func clearTokenPair(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(sessionCookie(conf, conf.Server.AccessCookieName, "", -1))
	ctx.SetCookie(sessionCookie(conf, conf.Server.RefreshCookieName, "", -1))
}

func sessionCookie(conf *core.Config, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	}
}
