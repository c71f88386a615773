package usecase

import (
	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/domain"
	hcdomain "github.com/x-xyz/mintingkit/domain/healthcheck"
	"golang.org/x/xerrors"
)

type impl struct {
	repo   hcdomain.HealthCheckRepo
	vendor hcdomain.Pinger
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface.
// vendor may be nil, then the vendor api is reported up.
func New(repo hcdomain.HealthCheckRepo, vendor hcdomain.Pinger) hcdomain.HealthCheckUsecase {
	return &impl{
		repo:   repo,
		vendor: vendor,
	}
}

func (im *impl) Check(context ctx.Ctx) (*hcdomain.Report, error) {
	report := &hcdomain.Report{
		Mongo:  status(im.repo.PingDB(context)),
		Redis:  status(im.repo.PingCache(context)),
		Vendor: hcdomain.StatusUp,
	}
	if im.vendor != nil {
		report.Vendor = status(im.vendor.Ping(context))
	}
	if !report.Healthy() {
		context.WithField("report", report).Warn("unhealthy")
		return report, xerrors.Errorf("%w: unhealthy dependencies", domain.ErrInternalServerError)
	}
	return report, nil
}

func status(err error) string {
	if err != nil {
		return hcdomain.StatusDown
	}
	return hcdomain.StatusUp
}
