package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/discussion"
	"github.com/ecoquest/ecoquest/core/learning"
	"github.com/ecoquest/ecoquest/core/progress"
	"github.com/ecoquest/ecoquest/core/session"
)

var (
	gateMessages = map[access.Reason]string{
		access.ReasonUnauthenticated: "user not authenticated",
		access.ReasonPendingApproval: session.ErrPendingApproval.Error(),
		access.ReasonForbidden:       "permission denied",
	}
)

// gateError is a gate redirect surfaced as an HTTP error.
type gateError struct {
	decision access.Decision
}

func (e *gateError) Error() string {
	return gateMessages[e.decision.Reason]
}

func (e *gateError) code() int {
	if e.decision.Reason == access.ReasonUnauthenticated {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

type gateBody struct {
	Error    string        `json:"error"`
	Reason   access.Reason `json:"reason"`
	Redirect string        `json:"redirect"`
}

func isBadRequest(err error) bool {
	switch err {
	case approval.ErrInvalidEmail, approval.ErrNotGatedRole,
		progress.ErrInvalidID, progress.ErrInvalidPoints,
		discussion.ErrInvalidVote, discussion.ErrInvalidSort,
		learning.ErrNoTopics, session.ErrSignupFailed:
		return true
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *gateError:
			code = origErr.code()
			message = gateBody{Error: origErr.Error(), Reason: origErr.decision.Reason, Redirect: origErr.decision.Target}
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case origErr == session.ErrPendingApproval:
				code = http.StatusForbidden
				message = gateBody{Error: origErr.Error(), Reason: access.ReasonPendingApproval, Redirect: access.PathAuth}
			case origErr == session.ErrAuthenticationFailed, origErr == session.ErrInvalidAdminLogin:
				code = http.StatusUnauthorized
				message = origErr.Error()
			case origErr == discussion.ErrPostNotFound, origErr == discussion.ErrCommentNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case isBadRequest(origErr):
				code = http.StatusBadRequest
				message = err.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				args := []interface{}{errors.Wrap(err, msg)}
				if claims, ok := contextClaims(ctx); ok {
					args = append(args, claims)
				}
				logger.Error(msg, args...)
			}
		}

		if _, structured := message.(gateBody); !structured {
			if ctx.Echo().Debug {
				message = err.Error()
			}
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
