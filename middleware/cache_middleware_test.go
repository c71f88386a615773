package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/service/cache/provider"
	"github.com/x-xyz/mintingkit/service/cache/provider/primitive"
)

type cacheMiddlewareSuite struct {
	suite.Suite

	local provider.Provider
}

func (s *cacheMiddlewareSuite) SetupSuite() {
	s.local = primitive.NewPrimitive("test", 1)
	cacheMiddlewareCache = s.local
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) serve(target string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("ctx", ctx.WithValue(ctx.Background(), "requestID", "test"))
	s.NoError(CacheHttp(30*time.Second)(h)(c))
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheMiddleware() {
	rec := s.serve("/projects?b=2&a=1", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, World")
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Hello, World", rec.Body.String())

	rec = s.serve("/projects?a=1&b=2", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, again")
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Hello, World", rec.Body.String())

	_, _, err := s.local.Get(ctx.Background(), "httpCacheMiddleware:"+generateKey("/projects?a=1&b=2"))
	s.NoError(err)
}

func (s *cacheMiddlewareSuite) TestSkipErrorResponse() {
	rec := s.serve("/projects/missing", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "not found")
	})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.serve("/projects/missing", func(c echo.Context) error {
		return c.String(http.StatusOK, "found")
	})
	s.Equal("found", rec.Body.String())
}
