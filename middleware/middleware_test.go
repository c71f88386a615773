package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/x-xyz/mintingkit/base/ctx"
)

func TestAddContext(t *testing.T) {
	req := require.New(t)
	e := echo.New()
	parent, cancel := context.WithCancel(context.Background())
	r := httptest.NewRequest(http.MethodGet, "/mintings/m-1/wait", nil).WithContext(parent)
	rec := httptest.NewRecorder()
	c := e.NewContext(r, rec)

	var got ctx.Ctx
	err := InitMiddleware().AddContext()(func(c echo.Context) error {
		got = c.Get("ctx").(ctx.Ctx)
		return nil
	})(c)
	req.NoError(err)
	req.NotEmpty(rec.Header().Get(echo.HeaderXRequestID))
	req.Equal(rec.Header().Get(echo.HeaderXRequestID), got.Value("requestID"))

	cancel()
	<-got.Done()
	req.Equal(context.Canceled, got.Err())
}

func TestIsValidAddress(t *testing.T) {
	req := require.New(t)
	e := echo.New()
	handler := IsValidAddress("address")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("address")
	c.SetParamValues("0x2ab205962f213ddc525b09b23c4c468b6910da15")
	req.NoError(handler(c))
	req.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("address")
	c.SetParamValues("vitalik.eth")
	req.NoError(handler(c))
	req.Equal(http.StatusBadRequest, rec.Code)
}
