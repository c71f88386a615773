package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	"github.com/x-xyz/mintingkit/base/validator"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/minting"
	mmiddleware "github.com/x-xyz/mintingkit/middleware"
	"github.com/x-xyz/mintingkit/stores/minting/usecase"
	authMiddleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
)

const (
	requestTimeout = 30 * time.Second
	// waitTimeout covers the block confirmations needed for a reveal
	waitTimeout = 3 * time.Minute
	historyLimit   = 50
)

type handler struct {
	minting minting.Usecase
}

// waitResp is the final state of a watched minting plus every progress update seen on the way
type waitResp struct {
	Minting  *minting.Minting   `json:"minting"`
	Progress []minting.Progress `json:"progress"`
}

func New(e *echo.Echo, minting minting.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{minting}

	g := e.Group("/mintings", authMiddleware.Auth())
	g.POST("", h.mint)
	g.GET("", h.history)
	g.GET("/:id", h.get)
	g.GET("/:id/wait", h.wait)

	p := e.Group("/projects/:id", authMiddleware.Auth())
	p.GET("/mintable", h.mintable)
	p.GET("/latest", h.latest)

	w := e.Group("/wallet/:address", authMiddleware.Auth())
	w.GET("/mintings", h.walletHistory, mmiddleware.IsValidAddress("address"))
}

// vendorError answers with the message the kiosk shows for a failed vendor call
func vendorError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrBadParamInput) ||
		errors.Is(err, domain.ErrInvalidAddress) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrMintFailed) ||
		errors.Is(err, domain.ErrSessionExpired) ||
		errors.Is(err, domain.ErrLocked) {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return delivery.MakeJsonResp(c, http.StatusGatewayTimeout, usecase.UserMessage(err))
	}
	return delivery.MakeJsonResp(c, http.StatusBadGateway, usecase.UserMessage(err))
}

// mint
//
//	@Summary		Mint
//	@Description	Create a minting, its confirmations are tracked in the background
//	@Tags			mintings
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body		minting.MintRequest	true	"params"
//	@Success		200		{object}	object{data=minting.Minting}
//	@Failure		400
//	@Failure		502
//	@Router			/mintings [post]
func (h *handler) mint(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), requestTimeout)
	defer cancel()

	req := &minting.MintRequest{}
	if err := c.Bind(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	m, err := h.minting.Mint(ctx, req)
	if err != nil {
		return vendorError(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, m)
}

// get
//
//	@Summary		Get minting
//	@Description	The embed url is withheld until the token is revealed
//	@Tags			mintings
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"minting id"
//	@Success		200	{object}	object{data=minting.Minting}
//	@Failure		502
//	@Router			/mintings/{id} [get]
func (h *handler) get(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), requestTimeout)
	defer cancel()

	m, err := h.minting.Get(ctx, c.Param("id"))
	if err != nil {
		return vendorError(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, m)
}

// wait
//
//	@Summary		Wait for reveal
//	@Description	Blocks until the minting is revealed or failed, at most three minutes
//	@Tags			mintings
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"minting id"
//	@Success		200	{object}	object{data=http.waitResp}
//	@Failure		401
//	@Failure		422
//	@Failure		504
//	@Router			/mintings/{id}/wait [get]
func (h *handler) wait(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), waitTimeout)
	defer cancel()

	res := &waitResp{Progress: []minting.Progress{}}
	m, err := h.minting.Watch(ctx, c.Param("id"), func(p minting.Progress) {
		res.Progress = append(res.Progress, p)
	})
	if err != nil {
		return vendorError(c, err)
	}
	res.Minting = m
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// history
//
//	@Summary	Minting history
//	@Tags		mintings
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		project	query		string	false	"project id"
//	@Success	200		{object}	object{data=[]minting.Record}
//	@Failure	500
//	@Router		/mintings [get]
func (h *handler) history(c echo.Context) error {
	ctx := c.Get("ctx").(bCtx.Ctx)

	opts := []minting.FindAllOptionsFunc{minting.WithLimit(historyLimit)}
	if project := c.QueryParam("project"); project != "" {
		opts = append(opts, minting.WithProjectID(project))
	}
	if status := c.QueryParam("status"); status != "" {
		opts = append(opts, minting.WithStatus(minting.Status(status)))
	}

	res, err := h.minting.History(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// walletHistory
//
//	@Summary	Minting history of a wallet
//	@Tags		mintings
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		address	path		string	true	"wallet address"
//	@Success	200		{object}	object{data=[]minting.Record}
//	@Failure	400
//	@Router		/wallet/{address}/mintings [get]
func (h *handler) walletHistory(c echo.Context) error {
	ctx := c.Get("ctx").(bCtx.Ctx)

	wallet, ok := validator.ChecksumAddress(c.Param("address"))
	if !ok {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	res, err := h.minting.History(ctx,
		minting.WithDestinationWallet(wallet),
		minting.WithLimit(historyLimit),
	)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// mintable
//
//	@Summary	Check mintable
//	@Tags		projects
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		id	path		string	true	"project id"
//	@Success	200	{object}	object{data=minting.Mintability}
//	@Router		/projects/{id}/mintable [get]
func (h *handler) mintable(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), requestTimeout)
	defer cancel()

	// failures still answer with a non-mintable result the kiosk can show
	res, _ := h.minting.CheckMintable(ctx, c.Param("id"))
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// latest
//
//	@Summary	Latest revealed minting
//	@Tags		projects
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		id	path		string	true	"project id"
//	@Success	200	{object}	object{data=minting.Minting}
//	@Failure	404
//	@Router		/projects/{id}/latest [get]
func (h *handler) latest(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), requestTimeout)
	defer cancel()

	m, err := h.minting.Latest(ctx, c.Param("id"))
	if err != nil {
		return vendorError(c, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, m)
}
