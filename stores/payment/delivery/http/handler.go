package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	"github.com/x-xyz/mintingkit/domain/payment"
	authMiddleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
)

// card collection waits for the customer at the reader
const chargeTimeout = 3 * time.Minute

type handler struct {
	payment payment.Usecase
}

// chargeResp keeps the step log of failed charges next to the error
type chargeResp struct {
	Error  string          `json:"error"`
	Charge *payment.Charge `json:"charge,omitempty"`
}

func New(e *echo.Echo, payment payment.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{payment}

	g := e.Group("/payments", authMiddleware.Auth())
	g.POST("", h.charge)
}

// charge
//
//	@Summary		Charge
//	@Description	Take the card payment for one mint of a project
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body		payment.ChargeRequest	true	"params"
//	@Success		200		{object}	object{data=payment.Charge}
//	@Failure		400
//	@Failure		422		{object}	object{data=http.chargeResp}
//	@Failure		503
//	@Router			/payments [post]
func (h *handler) charge(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), chargeTimeout)
	defer cancel()

	req := &payment.ChargeRequest{}
	if err := c.Bind(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.payment.Charge(ctx, req)
	if err != nil {
		if res == nil {
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		return delivery.MakeJsonResp(c, delivery.ErrorStatus(err, http.StatusInternalServerError), &chargeResp{
			Error:  err.Error(),
			Charge: res,
		})
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
