// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rewardfarm/tomarket-harvester/pkg/lease"
	"github.com/rewardfarm/tomarket-harvester/pkg/metrics"
	"github.com/rewardfarm/tomarket-harvester/pkg/notify"
	"github.com/rewardfarm/tomarket-harvester/pkg/shape"
)

// HealthReporter exposes per-account liveness.
type HealthReporter interface {
	SetAccountServing(account string, serving bool)
}

type nopHealth struct{}

func (nopHealth) SetAccountServing(string, bool) {}

// Runnable is what the fleet drives; *Loop implements it.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Fleet runs one loop per account concurrently.
// An invalid session stops only its own account; API drift stops everything.
type Fleet struct {
	loops    []Runnable
	health   HealthReporter
	notifier notify.Notifier
}

func NewFleet(loops []Runnable, health HealthReporter, notifier notify.Notifier) *Fleet {
	if health == nil {
		health = nopHealth{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Fleet{loops: loops, health: health, notifier: notifier}
}

// Run blocks until every loop has returned.
func (f *Fleet) Run(ctx context.Context) error {
	if len(f.loops) == 0 {
		return errors.New("no accounts to run")
	}

	g, gctx := errgroup.WithContext(ctx)
	metrics.AccountsRunning.Set(float64(len(f.loops)))

	for _, loop := range f.loops {
		loop := loop
		f.health.SetAccountServing(loop.Name(), true)

		g.Go(func() error {
			err := loop.Run(gctx)
			metrics.AccountsRunning.Dec()
			f.health.SetAccountServing(loop.Name(), false)

			log := logrus.WithField("account", loop.Name())
			switch {
			case errors.Is(err, lease.ErrSessionInvalid):
				log.WithError(err).Error("session is invalid, account stopped")
				f.notify(ctx, fmt.Sprintf("account %s stopped: invalid session", loop.Name()))
				return nil
			case errors.Is(err, shape.ErrDrift):
				log.WithError(err).Error("api changed, stopping every account")
				f.notify(ctx, fmt.Sprintf("stopping: %v", err))
				return err
			case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				log.Info("account loop stopped")
				return nil
			default:
				log.WithError(err).Error("account loop failed")
				return err
			}
		})
	}

	return g.Wait()
}

func (f *Fleet) notify(ctx context.Context, message string) {
	if err := f.notifier.Notify(context.WithoutCancel(ctx), message); err != nil {
		logrus.WithError(err).Warn("could not send notification")
	}
}
