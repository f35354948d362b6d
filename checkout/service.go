// Package checkout turns a basket into orders. Cash-on-delivery checkouts
// commit immediately; gateway checkouts leave a temp order that the payment
// callbacks confirm or roll back.
package checkout

import (
	"time"

	"bazaar/activity"
	"bazaar/gateway"
	"bazaar/ids"
	"bazaar/metrics"
	"bazaar/mq"
	"bazaar/rdx"
	"bazaar/repo"

	"go.uber.org/zap"
)

type Config struct {
	FrontendURL string
	BackendURL  string
	Currency    string
}

type Service struct {
	Store    repo.Store
	IDs      *ids.Generator
	Activity *activity.Recorder
	Gateway  gateway.Gateway
	Locker   rdx.Locker
	Events   mq.Publisher
	Metrics  *metrics.ServerMetrics
	Log      *zap.Logger
	Config   Config
	Now      func() time.Time
}

// callbackLockTTL bounds how long one callback delivery holds its tran_id.
const callbackLockTTL = 30 * time.Second

func NewService(store repo.Store, gw gateway.Gateway, locker rdx.Locker, events mq.Publisher, m *metrics.ServerMetrics, log *zap.Logger, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "BDT"
	}
	return &Service{
		Store:    store,
		IDs:      ids.NewGenerator(),
		Activity: activity.NewRecorder(store),
		Gateway:  gw,
		Locker:   locker,
		Events:   events,
		Metrics:  m,
		Log:      log,
		Config:   cfg,
		Now:      time.Now,
	}
}
