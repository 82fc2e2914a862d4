package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/identity"
	"github.com/terakoya-app/terakoya/core/locale"
)

// registerPages wires the locale-scoped page trees. Routes are registered
// un-prefixed; the request router strips the locale prefix before matching.
// Every protected tree declares its allowed-role set explicitly.
func registerPages(app *echo.Echo, opts *Options) {
	p := pages{opts: opts}

	app.GET(signInPath, p.signIn)

	gg := app.Group("/guardian", requirePageRoles(opts.Identities, identity.RoleGuardian))
	gg.GET("", p.page("guardian-home"))
	gg.GET("/dashboard", p.page("guardian-dashboard"))
	gg.GET("/reports", p.page("guardian-reports"))

	tg := app.Group("/teacher", p.teacherGate, requirePageRoles(opts.Identities, identity.RoleTeacher))
	tg.GET("", p.page("teacher-home"))
	tg.GET("/dashboard", p.teacherDashboard)
	tg.GET("/setup", p.page("teacher-setup"))

	ag := app.Group("/admin", requirePageRoles(opts.Identities, identity.RoleAdmin))
	ag.GET("", p.page("admin-home"))
	ag.GET("/dashboard", p.page("admin-dashboard"))
	ag.GET("/users", p.page("admin-users"))
}

type pages struct {
	opts *Options
}

// page renders a named page shell. Actual content is client-side; the
// server's job here ends at the gate.
func (p pages) page(name string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := getContextIdentity(ctx, p.opts.Identities)
		if err != nil {
			return errors.Wrap(err, "resolving identity")
		}
		body := echo.Map{
			"page":   name,
			"locale": currentLocale(ctx),
		}
		if id != nil {
			body["identity"] = id
		}
		return ctx.JSON(http.StatusOK, body)
	}
}

func (p pages) signIn(ctx echo.Context) error {
	// an authenticated visit to the sign-in page goes home instead
	if id, err := getContextIdentity(ctx, p.opts.Identities); err == nil && id != nil {
		return ctx.Redirect(http.StatusFound, locale.PathFor(currentLocale(ctx), id.Role.LandingPath()))
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "sign-in", "locale": currentLocale(ctx)})
}

// teacherGate hides the teacher tree behind the startup-injected feature
// switch. Outside DEV, gate off means 404 regardless of authentication;
// existence of the tree must not leak.
func (p pages) teacherGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !p.opts.Conf.TeacherDashboardEnabled {
			return errHttpNotFound
		}
		return next(ctx)
	}
}

// teacherDashboard bounces incompletely onboarded teachers to setup.
func (p pages) teacherDashboard(ctx echo.Context) error {
	id, err := getContextIdentity(ctx, p.opts.Identities)
	if err != nil {
		return errors.Wrap(err, "resolving identity")
	}
	if !id.TeacherSetupComplete() {
		return ctx.Redirect(http.StatusFound, locale.PathFor(currentLocale(ctx), "/teacher/setup"))
	}
	return p.page("teacher-dashboard")(ctx)
}
