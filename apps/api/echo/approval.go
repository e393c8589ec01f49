package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/session"
)

type (
	approvalApi struct {
		registry    *approval.Registry
		remote      RemoteUsers
		session     *session.Service
		logger      core.Logger
		syncTimeout time.Duration
	}

	ApprovalsResponse struct {
		Pending  []approval.Record `json:"pending"`
		Approved []string          `json:"approved"`
	}

	// DecisionRequest optionally names the account on the user service.
	DecisionRequest struct {
		UserID int64 `json:"userId"`
	}

	DecisionResponse struct {
		Email    string            `json:"email"`
		Decision approval.Decision `json:"decision"`
		Remote   bool              `json:"remote"` // the user service accepted the decision too
	}
)

func registerApprovalAPI(g *echo.Group, deps ServerDeps) {
	api := approvalApi{
		registry:    deps.Approvals,
		remote:      deps.RemoteUsers,
		session:     deps.Session,
		logger:      deps.Logger,
		syncTimeout: deps.Conf.SyncTimeout,
	}

	ag := g.Group("/approvals", gateMiddleware(deps.Gate, access.ViewAdminUsers))
	ag.GET("", api.query)
	ag.POST("/:email/approve", api.approve)
	ag.POST("/:email/reject", api.reject)
}

// Handlers

func (api *approvalApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	return ctx.JSON(http.StatusOK, ApprovalsResponse{
		Pending:  api.registry.ListPending(reqCtx),
		Approved: api.registry.ListApproved(reqCtx),
	})
}

func (api *approvalApi) approve(ctx echo.Context) error {
	return api.decide(ctx, approval.Approved)
}

func (api *approvalApi) reject(ctx echo.Context) error {
	return api.decide(ctx, approval.Rejected)
}

func (api *approvalApi) decide(ctx echo.Context, decision approval.Decision) error {
	var data DecisionRequest
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to DecisionRequest")
		}
	}

	reqCtx := ctx.Request().Context()
	email := core.CleanString(pathParam(ctx, "email"), true /* lower */)

	var err error
	if decision == approval.Approved {
		err = api.registry.Approve(reqCtx, email)
	} else {
		err = api.registry.Reject(reqCtx, email)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, DecisionResponse{
		Email:    email,
		Decision: decision,
		Remote:   api.decideRemotely(reqCtx, data.UserID, decision),
	})
}

// decideRemotely forwards the decision to the user service; failures never undo the local decision.
func (api *approvalApi) decideRemotely(ctx context.Context, userID int64, decision approval.Decision) bool {
	if api.remote == nil || userID <= 0 {
		return false
	}
	token, ok := api.session.Token(ctx)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, api.syncTimeout)
	defer cancel()

	var err error
	if decision == approval.Approved {
		_, err = api.remote.ApproveUser(ctx, token, userID)
	} else {
		err = api.remote.RejectUser(ctx, token, userID)
	}
	if err != nil {
		api.logger.Warn("forwarding approval decision", err, map[string]interface{}{"userId": userID, "decision": decision})
		return false
	}
	return true
}
