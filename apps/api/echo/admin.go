package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core"
	"github.com/terakoya-app/terakoya/core/audit"
	"github.com/terakoya-app/terakoya/core/identity"
)

const usersTable = "users"

type adminApi struct {
	opts *Options
}

func registerAdminAPI(g *echo.Group, opts *Options) {
	api := adminApi{opts: opts}

	ag := g.Group("", requireAPIRoles(opts.Identities, identity.RoleAdmin))
	ag.POST("/users/:id/suspend", api.userSuspension)
}

// userSuspension applies a suspension-state mutation through the
// admin-bypass directory. The audit entry is written only after the backend
// reports success; a non-200 response means no entry exists.
func (api *adminApi) userSuspension(ctx echo.Context) error {
	var data UserActionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UserActionRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	actor, err := getContextIdentity(ctx, api.opts.Identities)
	if err != nil {
		return errors.Wrap(err, "resolving actor")
	}

	targetID := ctx.Param("id")
	reqCtx := ctx.Request().Context()

	var action audit.Action
	switch data.Action {
	case "suspend":
		action = audit.ActionUserSuspend
		err = api.opts.AdminDir.SuspendUser(reqCtx, targetID)
	case "reinstate":
		action = audit.ActionUserReinstate
		err = api.opts.AdminDir.ReinstateUser(reqCtx, targetID)
	}
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return errHttpNotFound
		}
		return core.NewUpstreamError("admin-directory", err)
	}

	// mutation committed; everything below must not change the response
	api.opts.Audit.Record(actor.ID, action, usersTable, targetID)
	if action == audit.ActionUserSuspend {
		api.notifySuspended(ctx, targetID)
	}

	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// notifySuspended emails the affected user. Best-effort: a lookup or send
// failure only logs.
func (api *adminApi) notifySuspended(ctx echo.Context, targetID string) {
	if api.opts.EmailSvc == nil {
		return
	}
	target, err := api.opts.Identities.GetIdentity(ctx.Request().Context(), targetID)
	if err != nil {
		api.opts.Logger.Warn("admin: suspension notice skipped", errors.Wrap(err, "looking up target"))
		return
	}
	api.opts.EmailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: target.DisplayName, Address: target.Email}},
		Subject: "Your account has been suspended",
		BodyStr: fmt.Sprintf("Hello %s,\n\nYour account has been suspended by an administrator. "+
			"Please contact support if you believe this is an error.\n", target.DisplayName),
	})
}
