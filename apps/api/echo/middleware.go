package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/apps/api/graph"
	"github.com/classtrack/classtrack/core/user"
)

// viewerMiddleware hands the authenticated user, if any, over to the GraphQL resolvers.
func (s *Server) viewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, err := contextClaims(ctx); err != nil {
			return next(ctx) // anonymous
		}
		usr, err := s.getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(graph.WithViewer(req.Context(), usr)))
		return next(ctx)
	}
}

// staffMiddleware restricts a route to teachers and admins.
func (s *Server) staffMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := s.getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		if !usr.IsStaff() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// ctxUserOrStaffMiddleware loads the user named by the :id param into "object".
// Students may only reach their own record.
func (s *Server) ctxUserOrStaffMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := s.getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		id := ctx.Param("id")
		if id == ctxUsr.ID {
			ctx.Set("object", ctxUsr)
			return next(ctx)
		}
		if ctxUsr.IsStaff() && isUUID(id) {
			if usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), id); err == nil {
				ctx.Set("object", usr)
				return next(ctx)
			} else if errors.Cause(err) != user.ErrNotFound {
				return errors.Wrap(err, "finding user by ID")
			}
		}
		return errHttpNotFound
	}
}
