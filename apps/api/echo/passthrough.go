package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/identity"
)

// Thin pass-throughs to hosted collaborators. No decision logic beyond the
// gate; they only forward the resolved identity.

type passthroughApi struct {
	opts *Options
}

func registerPassthroughAPI(g *echo.Group, opts *Options) {
	api := passthroughApi{opts: opts}

	g.POST("/billing/portal", api.billingPortal,
		requireAPIRoles(opts.Identities, identity.RoleGuardian, identity.RoleTeacher, identity.RoleAdmin))
	g.POST("/reports/generate", api.generateReport,
		requireAPIRoles(opts.Identities, identity.RoleGuardian, identity.RoleTeacher))
}

func (api *passthroughApi) billingPortal(ctx echo.Context) error {
	if api.opts.Billing == nil {
		return core.NewConfigError("billingPortal")
	}
	id, err := getContextIdentity(ctx, api.opts.Identities)
	if err != nil {
		return errors.Wrap(err, "resolving identity")
	}

	url, err := api.opts.Billing.PortalURL(ctx.Request().Context(), id.ID)
	if err != nil {
		return core.NewUpstreamError("billing-portal", err)
	}
	return ctx.JSON(http.StatusOK, PortalResponse{URL: url})
}

func (api *passthroughApi) generateReport(ctx echo.Context) error {
	if api.opts.Reports == nil {
		return core.NewConfigError("reportGenerator")
	}
	var data ReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	report, err := api.opts.Reports.Generate(ctx.Request().Context(), data.StudentID)
	if err != nil {
		return core.NewUpstreamError("report-generator", err)
	}
	return ctx.JSON(http.StatusOK, report)
}
