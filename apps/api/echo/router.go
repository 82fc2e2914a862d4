package echoapi

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/locale"
	"github.com/terakoya-app/terakoya/core/session"
	metricsvc "github.com/terakoya-app/terakoya/services/metrics"
)

var staticExtensions = map[string]struct{}{
	".ico": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {},
	".webp": {}, ".css": {}, ".js": {}, ".map": {}, ".txt": {}, ".xml": {},
	".woff": {}, ".woff2": {},
}

// skipIngress reports whether a path bypasses the ingress pipeline entirely:
// static assets, well-known crawler files and operational endpoints.
func skipIngress(reqPath string) bool {
	switch reqPath {
	case "/favicon.ico", "/robots.txt", "/sitemap.xml", "/metrics", "/healthz":
		return true
	}
	if strings.HasPrefix(reqPath, "/static/") || strings.HasPrefix(reqPath, "/assets/") {
		return true
	}
	_, ok := staticExtensions[path.Ext(reqPath)]
	return ok
}

// machineNamespace reports whether a path belongs to a namespace that never
// receives locale-prefix redirects: API responses must not carry redirect
// semantics, and the admin surface is single-locale by design.
func machineNamespace(reqPath string) bool {
	return reqPath == "/api" || reqPath == "/admin" ||
		strings.HasPrefix(reqPath, "/api/") || strings.HasPrefix(reqPath, "/admin/")
}

// requestRouter is the single composition point every request passes through
// before any business logic: locale resolution first, then session renewal.
// A locale redirect short-circuits the refresh; the redirected request will
// re-enter this router anyway.
func requestRouter(conf *core.Config, refresher *session.Refresher, metrics *metricsvc.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			reqPath := req.URL.Path

			if skipIngress(reqPath) {
				return next(ctx)
			}

			if !machineNamespace(reqPath) {
				res := resolveLocale(ctx, conf)
				if res.IsRedirect() {
					if metrics != nil {
						metrics.RecordLocaleRedirect(res.Locale)
					}
					return ctx.Redirect(http.StatusTemporaryRedirect, res.RedirectPath)
				}
				ctx.Set(ctxLocaleKey, res.Locale)
				// routes are registered un-prefixed; match on the
				// locale-stripped path
				req.URL.Path = res.Path
			} else {
				ctx.Set(ctxLocaleKey, locale.Default)
			}

			refreshSession(ctx, conf, refresher, metrics)
			return next(ctx)
		}
	}
}

func resolveLocale(ctx echo.Context, conf *core.Config) locale.Result {
	var cookieLocale string
	if cookie, err := ctx.Cookie(conf.LocaleCookieName); err == nil {
		cookieLocale = cookie.Value
	}
	return locale.Resolve(
		ctx.Request().URL.Path,
		cookieLocale,
		ctx.Request().Header.Get("Accept-Language"),
	)
}

func refreshSession(ctx echo.Context, conf *core.Config, refresher *session.Refresher, metrics *metricsvc.Collector) {
	out := refresher.Refresh(ctx.Request().Context(), readTokenPair(ctx, conf))
	if metrics != nil {
		metrics.RecordSessionOutcome(out.Status)
	}

	switch out.Status {
	case session.StatusValid:
		ctx.Set(ctxClaimsKey, out.Claims)
	case session.StatusRotated:
		ctx.Set(ctxClaimsKey, out.Claims)
		writeTokenPair(ctx, conf, out.Pair)
	default:
		if out.ClearCookies {
			clearTokenPair(ctx, conf)
		}
	}
}
