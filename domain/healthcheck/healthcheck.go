package healthcheck

import (
	"github.com/x-xyz/mintingkit/base/ctx"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Report lists the state of each dependency of the minter
type Report struct {
	Mongo  string `json:"mongo"`
	Redis  string `json:"redis"`
	Vendor string `json:"vendor"`
}

// Healthy reports whether every dependency is up
func (r *Report) Healthy() bool {
	return r.Mongo == StatusUp && r.Redis == StatusUp && r.Vendor == StatusUp
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) (*Report, error)
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingDB(context ctx.Ctx) error
	PingCache(context ctx.Ctx) error
}

// Pinger reaches the vendor API
type Pinger interface {
	Ping(context ctx.Ctx) error
}
