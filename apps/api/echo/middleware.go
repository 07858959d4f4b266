package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const contextUserKey = "user"

// actorMiddleware resolves the request actor from the verified token claims.
// It must run after the JWT middleware.
func actorMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}

			usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if core.IsNotFound(err) {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding user by ID")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}

			act := usr.Actor()
			ctx.Set(contextUserKey, usr)
			ctx.Set(contextActorKey, &act)
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			act := currentActor(ctx)
			if act == nil {
				return errUnauthorized
			}
			if !act.IsAdmin() {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
