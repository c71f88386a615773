package usecase

import (
	"strings"
	"time"

	"github.com/x-xyz/mintingkit/base/backoff"
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	pricefomatter "github.com/x-xyz/mintingkit/base/price_fomatter"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/project"
	"github.com/x-xyz/mintingkit/service/cache"
	"github.com/x-xyz/mintingkit/service/mintapi"
)

const (
	// DefaultRetryInterval is the delay between two failed project list requests
	DefaultRetryInterval = 2500 * time.Millisecond
	// DefaultCacheTtl bounds how long a fetched project list is served from cache
	DefaultCacheTtl = 30 * time.Second

	listKey = "all"
)

type ProjectUseCaseCfg struct {
	Client        mintapi.Client
	Cache         cache.Service
	Formatter     pricefomatter.PriceFormatter
	RetryInterval time.Duration
}

type impl struct {
	client        mintapi.Client
	cache         cache.Service
	formatter     pricefomatter.PriceFormatter
	retryInterval time.Duration
	met           metrics.Service
}

func New(cfg *ProjectUseCaseCfg) project.Usecase {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Formatter == nil {
		cfg.Formatter = pricefomatter.NewPriceFormatter("$")
	}
	return &impl{
		client:        cfg.Client,
		cache:         cfg.Cache,
		formatter:     cfg.Formatter,
		retryInterval: cfg.RetryInterval,
		met:           metrics.New("project"),
	}
}

// List keeps requesting the vendor until it answers or ctx is done
func (im *impl) List(c ctx.Ctx) ([]*project.Project, error) {
	b := backoff.NewConstant(im.retryInterval)
	for {
		res, err := im.list(c)
		if err == nil {
			return res, nil
		}
		im.met.BumpSum("list.err", 1)
		if !mintapi.Retryable(err) {
			c.WithField("err", err).Error("failed to list projects")
			return nil, err
		}
		c.WithFields(log.Fields{
			"err":     err,
			"attempt": b.Count() + 1,
		}).Warn("failed to list projects, retrying")
		if bErr := b.Backoff(c); bErr != nil {
			c.WithField("err", err).Error("failed to list projects")
			return nil, err
		}
	}
}

func (im *impl) list(c ctx.Ctx) ([]*project.Project, error) {
	getter := func() (interface{}, error) {
		res, err := im.client.ListProjects(c)
		if err != nil {
			return nil, err
		}
		return &res, nil
	}
	if im.cache == nil {
		res, err := getter()
		if err != nil {
			return nil, err
		}
		return *res.(*[]*project.Project), nil
	}
	res := []*project.Project{}
	if err := im.cache.GetByFunc(c, listKey, &res, getter); err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) Get(c ctx.Ctx, id string) (*project.Project, error) {
	projects, err := im.List(c)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// FindByTitle prefers an exact case-insensitive match, then the first title containing it
func (im *impl) FindByTitle(c ctx.Ctx, title string) (*project.Project, error) {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return nil, domain.ErrBadParamInput
	}
	projects, err := im.List(c)
	if err != nil {
		return nil, err
	}
	var partial *project.Project
	for _, p := range projects {
		t := strings.ToLower(p.Title)
		if t == title {
			return p, nil
		}
		if partial == nil && strings.Contains(t, title) {
			partial = p
		}
	}
	if partial != nil {
		return partial, nil
	}
	return nil, domain.ErrNotFound
}

func (im *impl) FormatPrice(p *project.Project) string {
	if p.IsFree() {
		return ""
	}
	return im.formatter.FormatCents(p.PriceAmountCents)
}
