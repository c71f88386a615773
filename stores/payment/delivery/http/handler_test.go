package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	bValidator "github.com/x-xyz/mintingkit/base/validator"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/payment"
	mSession "github.com/x-xyz/mintingkit/domain/session/mocks"
	"github.com/x-xyz/mintingkit/middleware"
	authMiddleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
)

type chargeFunc func(bCtx.Ctx, *payment.ChargeRequest) (*payment.Charge, error)

func (f chargeFunc) Charge(c bCtx.Ctx, req *payment.ChargeRequest) (*payment.Charge, error) {
	return f(c, req)
}

func serve(t *testing.T, uc payment.Usecase, body string) (*httptest.ResponseRecorder, delivery.JsonResponse) {
	session := &mSession.Usecase{}
	session.On("ParseToken", mock.Anything, "good").Return("kiosk-1", nil)

	e := echo.New()
	e.Validator = bValidator.NewCustomValidator(validator.New())
	e.Use(middleware.InitMiddleware().AddContext())
	New(e, uc, authMiddleware.New(session))

	r := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	r.Header.Set(echo.HeaderAuthorization, "Bearer good")
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)

	res := delivery.JsonResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return rec, res
}

func TestCharge(t *testing.T) {
	req := require.New(t)
	rec, res := serve(t, chargeFunc(func(c bCtx.Ctx, r *payment.ChargeRequest) (*payment.Charge, error) {
		req.Equal("p-1", r.ProjectID)
		req.True(r.SkipTipping)
		return &payment.Charge{ID: "c-1", ProjectID: r.ProjectID, Paid: true}, nil
	}), `{"project":"p-1","skipTipping":true}`)

	req.Equal(http.StatusOK, rec.Code)
	req.Equal(true, res.Data.(map[string]interface{})["paid"])
}

func TestChargeMissingProject(t *testing.T) {
	req := require.New(t)
	rec, _ := serve(t, chargeFunc(func(bCtx.Ctx, *payment.ChargeRequest) (*payment.Charge, error) {
		req.FailNow("charge must not run")
		return nil, nil
	}), `{}`)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestChargeDeclined(t *testing.T) {
	req := require.New(t)
	rec, res := serve(t, chargeFunc(func(bCtx.Ctx, *payment.ChargeRequest) (*payment.Charge, error) {
		charge := &payment.Charge{ID: "c-1"}
		charge.Events = append(charge.Events, payment.Event{Step: payment.StepProcess, Result: payment.StepResultErrored})
		return charge, xerrors.Errorf("%w: card declined", domain.ErrPaymentFailed)
	}), `{"project":"p-1"}`)

	req.Equal(http.StatusUnprocessableEntity, rec.Code)
	req.Equal(delivery.JsonResponseStatusFail, res.Status)
	data := res.Data.(map[string]interface{})
	req.Equal("payment failed: card declined", data["error"])
	req.Len(data["charge"].(map[string]interface{})["events"], 1)
}
