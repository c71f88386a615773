package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/session"
)

// HeaderOperatorPin carries the pin of the kiosk operator
const HeaderOperatorPin = "X-Operator-Pin"

type AuthMiddleware struct {
	session session.Usecase
}

func New(session session.Usecase) *AuthMiddleware {
	return &AuthMiddleware{
		session: session,
	}
}

// Auth requires a kiosk operator token, `Authorization: Bearer <token>`
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

// Operator requires the operator pin, or a kiosk operator token when no pin is sent
func (m *AuthMiddleware) Operator() echo.MiddlewareFunc {
	auth := m.Auth()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withToken := auth(next)
		return func(c echo.Context) error {
			pin := c.Request().Header.Get(HeaderOperatorPin)
			if pin == "" {
				if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
					return delivery.MakeJsonResp(c, http.StatusUnauthorized, domain.ErrLocked)
				}
				return withToken(c)
			}

			ctx := c.Get("ctx").(ctx.Ctx)
			if err := m.session.Unlock(ctx, pin); err != nil {
				return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	ctx := c.Get("ctx").(ctx.Ctx)
	if device, err := m.session.ParseToken(ctx, key); err != nil {
		ctx.WithField("err", err).Error("session.ParseToken failed")
		return false, err
	} else {
		c.Set("device", device)
		return true, nil
	}
}
