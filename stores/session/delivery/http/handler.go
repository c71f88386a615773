package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	"github.com/x-xyz/mintingkit/domain/session"
	authMiddleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
)

type sessionHandler struct {
	session session.Usecase
}

func New(e *echo.Echo, session session.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	handler := &sessionHandler{
		session: session,
	}
	g := e.Group("/session")
	g.GET("", handler.restore)
	g.GET("/login-url", handler.loginURL)
	g.POST("/callback", handler.callback, authMiddleware.Operator())
	g.DELETE("", handler.logout, authMiddleware.Auth())
}

// loginURL
//
//	@Summary		Get login url
//	@Description	Browser page issuing a device token, it redirects to txlessauth://<token>
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	object{data=string}
//	@Router			/session/login-url [get]
func (h *sessionHandler) loginURL(c echo.Context) error {
	return delivery.MakeJsonResp(c, http.StatusOK, h.session.LoginURL())
}

// callback
//
//	@Summary		Complete login
//	@Description	Store the device token carried by the login redirect and get a kiosk token.
//	@Description	Requires the operator pin or a kiosk token.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			X-Operator-Pin	header		string					false	"operator pin"
//	@Param			params			body		http.callback.params	true	"params"
//	@Success		201		{object}	object{data=session.Grant}
//	@Failure		400
//	@Failure		401
//	@Failure		500
//	@Router			/session/callback [post]
func (h *sessionHandler) callback(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		CallbackURL string `json:"callbackUrl" validate:"required" example:"txlessauth://abc123"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if grant, err := h.session.HandleCallback(ctx, p.CallbackURL); err != nil {
		ctx.WithField("err", err).Error("session.HandleCallback failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, grant)
	}
}

// restore
//
//	@Summary		Restore session
//	@Description	Get a kiosk token when the stored device token is still fresh and the operator pin matches
//	@Tags			session
//	@Produce		json
//	@Param			X-Operator-Pin	header		string	true	"operator pin"
//	@Success		200	{object}	object{data=session.Grant}
//	@Failure		401
//	@Router			/session [get]
func (h *sessionHandler) restore(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	pin := c.Request().Header.Get(authMiddleware.HeaderOperatorPin)
	if grant, err := h.session.Restore(ctx, pin); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, grant)
	}
}

// logout
//
//	@Summary	Logout
//	@Tags		session
//	@Security	ApiKeyAuth
//	@Success	200
//	@Router		/session [delete]
func (h *sessionHandler) logout(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	if err := h.session.Logout(ctx); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
