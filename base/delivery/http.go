package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = ErrorStatus(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// ErrorStatus maps domain errors to http status codes, status is kept for unknown errors
func ErrorStatus(err error, status int) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadParamInput),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrEnsNotFound),
		errors.Is(err, domain.ErrTokenMissing):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrLocked):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotMintable):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMintFailed),
		errors.Is(err, domain.ErrPaymentFailed),
		errors.Is(err, domain.ErrUnexpectedIntentStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrReaderNotConnected):
		return http.StatusServiceUnavailable
	}
	return status
}
