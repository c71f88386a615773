package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	"github.com/x-xyz/mintingkit/domain/wallet"
	authMiddleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
)

type handler struct {
	wallet wallet.Usecase
}

func New(e *echo.Echo, wallet wallet.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{wallet}

	g := e.Group("/wallet")
	g.POST("/resolve", h.resolve, authMiddleware.Auth())
}

// resolve
//
//	@Summary		Resolve destination wallet
//	@Description	Turn a typed address, a scanned ethereum: payload or an ENS name into a checksummed address
//	@Tags			wallet
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body		wallet.ResolveRequest	true	"params"
//	@Success		200		{object}	object{data=wallet.Destination}
//	@Failure		400
//	@Failure		500
//	@Router			/wallet/resolve [post]
func (h *handler) resolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &wallet.ResolveRequest{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if dest, err := h.wallet.Resolve(ctx, p.Input); err != nil {
		ctx.WithField("err", err).Error("wallet.Resolve failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, dest)
	}
}
