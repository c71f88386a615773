package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/delivery"
	"github.com/x-xyz/mintingkit/domain/project"
	mmiddleware "github.com/x-xyz/mintingkit/middleware"
	authMiddleware "github.com/x-xyz/mintingkit/stores/session/delivery/http/middleware"
)

const (
	listTimeout = 30 * time.Second
	cacheTTL    = 10 * time.Second
)

type handler struct {
	project project.Usecase
}

// projectView adds the display fields of the kiosk
type projectView struct {
	*project.Project
	DisplayPrice string `json:"displayPrice,omitempty"`
	PaymentURI   string `json:"paymentUri,omitempty"`
}

func New(e *echo.Echo, project project.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{project}

	g := e.Group("/projects", authMiddleware.Auth())
	g.GET("", h.list, mmiddleware.CacheHttp(cacheTTL))
	g.GET("/search", h.findByTitle)
	g.GET("/:id", h.get)
}

func (h *handler) view(p *project.Project) *projectView {
	return &projectView{
		Project:      p,
		DisplayPrice: h.project.FormatPrice(p),
		PaymentURI:   p.PaymentURI(),
	}
}

// list
//
//	@Summary		List projects
//	@Description	Projects this device may mint
//	@Tags			projects
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	object{data=[]http.projectView}
//	@Failure		500
//	@Router			/projects [get]
func (h *handler) list(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), listTimeout)
	defer cancel()

	projects, err := h.project.List(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := make([]*projectView, 0, len(projects))
	for _, p := range projects {
		res = append(res, h.view(p))
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// get
//
//	@Summary	Get project
//	@Tags		projects
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		id	path		string	true	"project id"
//	@Success	200	{object}	object{data=http.projectView}
//	@Failure	404
//	@Router		/projects/{id} [get]
func (h *handler) get(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), listTimeout)
	defer cancel()

	if p, err := h.project.Get(ctx, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, h.view(p))
	}
}

// findByTitle
//
//	@Summary	Find project by title
//	@Tags		projects
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		title	query		string	true	"project title"
//	@Success	200		{object}	object{data=http.projectView}
//	@Failure	404
//	@Router		/projects/search [get]
func (h *handler) findByTitle(c echo.Context) error {
	ctx, cancel := bCtx.WithTimeout(c.Get("ctx").(bCtx.Ctx), listTimeout)
	defer cancel()

	if p, err := h.project.FindByTitle(ctx, c.QueryParam("title")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, h.view(p))
	}
}
