// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle/builtin"
	"github.com/rewardfarm/tomarket-harvester/pkg/lease"
	"github.com/rewardfarm/tomarket-harvester/pkg/metrics"
	"github.com/rewardfarm/tomarket-harvester/pkg/shape"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

const (
	DefaultAuthRetryDelay = 300 * time.Second
	DefaultCrashCooldown  = 600 * time.Second
	DefaultIdleSleep      = time.Hour
	DefaultProxyEchoURL   = "https://httpbin.org/ip"
)

// ErrPanic wraps a recovered panic from a sweep.
var ErrPanic = errors.New("sweep panicked")

// Acquirer obtains a fresh credential.
type Acquirer interface {
	Acquire(ctx context.Context) (lease.Grant, error)
}

// ShapeChecker verifies the remote API still exposes the expected endpoints.
type ShapeChecker interface {
	Check(ctx context.Context) error
}

// Options tunes the loop's timing.
type Options struct {
	StartDelayMin  time.Duration
	StartDelayMax  time.Duration
	AuthRetryDelay time.Duration
	CrashCooldown  time.Duration
	IdleSleep      time.Duration
	ProxyEchoURL   string
}

// Deps are the collaborators of one account loop.
type Deps struct {
	Session  *state.Session
	Client   *api.Client
	Lease    Acquirer
	Executor *cycle.Executor
	Store    state.Store
	Shape    ShapeChecker
	Clock    common.Clock
}

// Loop is the per-account state machine: acquire a credential, sweep, sleep.
type Loop struct {
	session  *state.Session
	client   *api.Client
	lease    Acquirer
	executor *cycle.Executor
	store    state.Store
	shape    ShapeChecker
	clock    common.Clock
	opts     Options
	log      *logrus.Entry
}

func NewLoop(deps Deps, opts Options) (*Loop, error) {
	if deps.Session == nil || deps.Client == nil || deps.Lease == nil || deps.Executor == nil {
		return nil, errors.New("loop needs a session, client, lease and executor")
	}
	if deps.Store == nil {
		deps.Store = state.NewMemoryStore()
	}
	if deps.Clock == nil {
		deps.Clock = common.SystemClock{}
	}
	if opts.AuthRetryDelay <= 0 {
		opts.AuthRetryDelay = DefaultAuthRetryDelay
	}
	if opts.CrashCooldown <= 0 {
		opts.CrashCooldown = DefaultCrashCooldown
	}
	if opts.IdleSleep <= 0 {
		opts.IdleSleep = DefaultIdleSleep
	}

	l := &Loop{
		session:  deps.Session,
		client:   deps.Client,
		lease:    deps.Lease,
		executor: deps.Executor,
		store:    deps.Store,
		shape:    deps.Shape,
		clock:    deps.Clock,
		opts:     opts,
		log:      logrus.WithField("account", deps.Session.Name),
	}
	l.client.OnUnauthorized(l.session.InvalidateCredential)

	return l, nil
}

// Name returns the account name.
func (l *Loop) Name() string {
	return l.session.Name
}

// Run loops until the context ends, the API shape drifts or the session becomes invalid.
func (l *Loop) Run(ctx context.Context) error {
	l.restore(ctx)

	if l.opts.StartDelayMax > 0 {
		delay := common.JitterSeconds(int(l.opts.StartDelayMin.Seconds()), int(l.opts.StartDelayMax.Seconds()))
		l.log.Infof("starting in %s", delay)
		if err := l.clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	l.checkProxy(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, err := l.Iterate(ctx)
		switch {
		case err == nil:
		case errors.Is(err, shape.ErrDrift), errors.Is(err, lease.ErrSessionInvalid):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, lease.ErrAuthFailure):
			l.log.WithError(err).Warnf("could not log in, retrying in %s", l.opts.AuthRetryDelay)
			wait = l.opts.AuthRetryDelay
		default:
			l.log.WithError(err).Errorf("unknown error, cooling down for %s", l.opts.CrashCooldown)
			wait = l.opts.CrashCooldown
		}

		metrics.SleepSeconds.WithLabelValues(l.session.Name).Set(wait.Seconds())
		l.log.Infof("sleeping for %s", wait.Round(time.Second))
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Iterate runs one sweep and returns how long to sleep afterwards.
func (l *Loop) Iterate(ctx context.Context) (wait time.Duration, err error) {
	scope := common.NewScope(ctx, "sweep", l.session.Name)
	defer scope.Finish()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			scope.TraceError(err)
			metrics.Sweeps.WithLabelValues(l.session.Name, "panic").Inc()
		}
	}()

	if l.shape != nil {
		if err := l.shape.Check(scope.Ctx); err != nil {
			if errors.Is(err, shape.ErrDrift) {
				scope.TraceError(err)
				return 0, err
			}
			scope.Log.WithError(err).Warn("api shape check inconclusive, continuing")
		}
	}

	if err := l.ensureCredential(scope.Ctx); err != nil {
		scope.TraceError(err)
		return 0, err
	}

	env := cycle.NewEnv(l.session, l.client, l.clock, scope.Log)
	reports, err := l.executor.Sweep(scope.Ctx, scope, env, l.ensureCredential)
	l.persist(ctx)
	if err != nil {
		scope.TraceError(err)
		metrics.Sweeps.WithLabelValues(l.session.Name, "aborted").Inc()
		return 0, err
	}

	ran := 0
	for _, r := range reports {
		if r.Outcome.Kind != cycle.OutcomeNotDue {
			ran++
			scope.Log.Debugf("%s: %s", r.CycleID, r.Outcome)
		}
	}
	scope.TraceEvent(fmt.Sprintf("sweep finished, %d of %d cycles acted", ran, len(reports)))
	metrics.Sweeps.WithLabelValues(l.session.Name, "ok").Inc()

	return l.NextSleep(l.clock.Now()), nil
}

// NextSleep is the time until the farming deadline, never negative.
// Without a farming controller the idle interval is used.
func (l *Loop) NextSleep(now time.Time) time.Duration {
	if l.executor.Registry().Get(builtin.FarmingCycleID) == nil {
		return l.opts.IdleSleep
	}

	st, ok := l.session.Cycles[builtin.FarmingCycleID]
	if !ok || st.NextCheck.IsZero() {
		return l.opts.IdleSleep
	}

	if d := st.NextCheck.Sub(now); d > 0 {
		return d
	}

	return 0
}

func (l *Loop) ensureCredential(ctx context.Context) error {
	if !l.session.CredentialExpired(l.clock.Now()) {
		return nil
	}

	grant, err := l.lease.Acquire(ctx)
	if err != nil {
		metrics.Logins.WithLabelValues(l.session.Name, "failed").Inc()
		return err
	}

	l.session.Credential = grant.Credential
	l.session.InitData = grant.InitData
	l.session.ReferralID = grant.ReferralID
	l.client.SetToken(grant.Credential.Token)

	metrics.Logins.WithLabelValues(l.session.Name, "ok").Inc()
	l.log.Info("logged in")

	return nil
}

func (l *Loop) restore(ctx context.Context) {
	snap, err := l.store.Load(ctx, l.session.Name)
	if err != nil {
		l.log.WithError(err).Warn("could not load stored state, starting fresh")
		return
	}
	l.session.Restore(snap)
}

func (l *Loop) persist(ctx context.Context) {
	if err := l.store.Save(ctx, l.session.Name, l.session.Snapshot()); err != nil {
		l.log.WithError(err).Warn("could not persist state")
	}
}

func (l *Loop) checkProxy(ctx context.Context) {
	if l.session.Proxy == "" || l.opts.ProxyEchoURL == "" {
		return
	}

	ip, err := l.client.ProxyIP(ctx, l.opts.ProxyEchoURL)
	if err != nil {
		l.log.WithError(err).Warnf("proxy %s check failed", l.session.Proxy)
		return
	}
	l.log.Infof("proxy %s exits from %s", l.session.Proxy, ip)
}
