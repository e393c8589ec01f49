package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/ecoquest/ecoquest/core/access"
	"github.com/ecoquest/ecoquest/core/session"
)

const contextClaimsKey = "claims"

// sessionMiddleware puts the current session claims (if any) in the context.
func sessionMiddleware(svc *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if claims, ok := svc.Current(ctx.Request().Context()); ok {
				ctx.Set(contextClaimsKey, claims)
			}
			return next(ctx)
		}
	}
}

// gateMiddleware lets the request through only if the gate allows the current session to open view.
// It must run after sessionMiddleware.
func gateMiddleware(gate *access.Gate, view string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, _ := contextClaims(ctx)
			if decision := gate.Check(ctx.Request().Context(), claims, view); !decision.Allowed {
				return &gateError{decision: decision}
			}
			return next(ctx)
		}
	}
}

func contextClaims(ctx echo.Context) (*session.Claims, bool) {
	claims, ok := ctx.Get(contextClaimsKey).(*session.Claims)
	return claims, ok && claims != nil
}
