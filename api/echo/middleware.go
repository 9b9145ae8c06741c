package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core/user"
)

type (
	// ownerResolver resolves the user ID owning the resource targeted by the
	// request, so it can be compared against the caller's identity.
	ownerResolver func(ctx echo.Context) (int, error)

	// accessPolicy describes who may call a route. Admins always pass. The
	// zero value admits admins only; roles widens it to the listed roles;
	// owner additionally requires the resolved owning user to be the caller.
	accessPolicy struct {
		roles []string
		owner ownerResolver
	}
)

var adminOnly accessPolicy

func (p accessPolicy) allowsRole(role string) bool {
	for _, r := range p.roles {
		if r == role {
			return true
		}
	}
	return false
}

// authorize evaluates a single declarative access policy per route instead of
// ad hoc role checks inside handlers.
func authorize(policy accessPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == user.RoleAdmin {
				return next(ctx)
			}
			if !policy.allowsRole(claims.Role) {
				return errHTTPForbidden
			}
			if policy.owner != nil {
				ownerID, err := policy.owner(ctx)
				if err != nil {
					return err
				}
				if ownerID != claims.UserID {
					return errHTTPForbidden
				}
			}
			return next(ctx)
		}
	}
}
