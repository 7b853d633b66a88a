// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/internal/bootstrap"
	"github.com/rewardfarm/tomarket-harvester/internal/config"
	"github.com/rewardfarm/tomarket-harvester/internal/server"
	"github.com/rewardfarm/tomarket-harvester/pkg/account"
	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle/builtin"
	"github.com/rewardfarm/tomarket-harvester/pkg/lease"
	"github.com/rewardfarm/tomarket-harvester/pkg/notify"
	"github.com/rewardfarm/tomarket-harvester/pkg/puzzle"
	"github.com/rewardfarm/tomarket-harvester/pkg/runner"
	"github.com/rewardfarm/tomarket-harvester/pkg/shape"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	shutdownTelemetry func(context.Context) error

	store    state.Store
	notifier notify.Notifier
	fleet    *runner.Fleet
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
// 1. Logging
// 2. State store (memory or Redis)
// 3. Accounts and proxies
// 4. Shared services (notifier, puzzle lookup, shape checker)
// 5. One loop per account
// 6. Servers (gRPC health, metrics)
// 7. Telemetry
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := common.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	if err := app.initStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to init state store: %w", err)
	}

	accounts, err := LoadAccounts(cfg)
	if err != nil {
		return nil, err
	}
	logrus.Infof("loaded %d accounts", len(accounts))

	app.notifier = app.initNotifier(ctx)

	deps := &builtin.Dependencies{
		Puzzles: NewPuzzleLookup(cfg),
	}

	var checker runner.ShapeChecker
	if !cfg.SkipShapeCheck {
		checker = shape.NewChecker(cfg.AppURL, cfg.RequestTimeout)
	}

	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	loops := make([]runner.Runnable, 0, len(accounts))
	for _, acc := range accounts {
		loop, err := app.newLoop(acc, deps, checker)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.Name, err)
		}
		loops = append(loops, loop)
	}
	app.fleet = runner.NewFleet(loops, app.grpcServer, app.notifier)

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, cfg.ZipkinEndpoint, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

func (a *App) newLoop(acc account.Account, deps *builtin.Dependencies, checker runner.ShapeChecker) (*runner.Loop, error) {
	log := logrus.WithField("account", acc.Name)

	userAgent := api.DefaultUserAgent
	if a.cfg.FakeUserAgent {
		userAgent = api.RandomAndroidUserAgent()
	}

	client := api.NewClient(api.Options{
		BaseURL:           a.cfg.APIBaseURL,
		UserAgent:         userAgent,
		Proxy:             acc.Proxy,
		Timeout:           a.cfg.RequestTimeout,
		RequestsPerSecond: a.cfg.RequestsPerSecond,
		Logger:            log,
	})

	executor, err := bootstrap.InitCycleExecutor(bootstrap.CycleConfigs(a.cfg), deps)
	if err != nil {
		return nil, err
	}

	session := state.NewSession(acc.Name)
	session.Proxy = acc.Proxy
	session.WalletAddress = acc.WalletAddress

	sampler := lease.NewReferralSampler(a.cfg.RefID, time.Now().UnixNano())
	credentials := lease.New(lease.NewFileAuthDataProvider(acc.SessionFile), client, sampler, nil)

	delayMin, delayMax := a.cfg.RandomDelay()

	return runner.NewLoop(runner.Deps{
		Session:  session,
		Client:   client,
		Lease:    credentials,
		Executor: executor,
		Store:    a.store,
		Shape:    checker,
	}, runner.Options{
		StartDelayMin: delayMin,
		StartDelayMax: delayMax,
		ProxyEchoURL:  a.cfg.ProxyEchoURL,
	})
}

// initStore picks the state backend. Redis is pinged with exponential backoff.
func (a *App) initStore(ctx context.Context) error {
	if strings.ToLower(a.cfg.StateBackend) != config.BackendRedis {
		a.store = state.NewMemoryStore()
		logrus.Info("using in-memory state store")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisAddr(),
		Password:     a.cfg.RedisPassword,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries)), ctx)

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		policy,
	)
	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	a.store = state.NewRedisStore(client, a.cfg.StateTTL)
	logrus.Info("Redis state store initialized")
	return nil
}

// initNotifier falls back to a no-op notifier when Telegram is not configured or unreachable.
func (a *App) initNotifier(ctx context.Context) notify.Notifier {
	if a.cfg.TelegramBotToken == "" {
		return notify.Nop{}
	}

	tg, err := notify.NewTelegram(ctx, a.cfg.TelegramBotToken, a.cfg.TelegramChatID)
	if err != nil {
		logrus.WithError(err).Warn("telegram notifications disabled")
		return notify.Nop{}
	}

	logrus.Info("telegram notifications enabled")
	return tg
}

// NewPuzzleLookup builds the combo answer lookup shared by all accounts.
func NewPuzzleLookup(cfg *config.Config) *puzzle.Lookup {
	return puzzle.NewLookup(puzzle.Options{
		PrimaryURL:   cfg.PuzzlePrimaryURL,
		SecondaryURL: cfg.PuzzleSecondaryURL,
		LocalFile:    cfg.PuzzleLocalFile,
		Timeout:      cfg.RequestTimeout,
		MaxRetries:   cfg.PuzzleMaxRetries,
	})
}

// EnabledCycles lists the controller IDs the configuration turns on, in sweep order.
func EnabledCycles(cfg *config.Config) []string {
	var ids []string
	for _, c := range bootstrap.CycleConfigs(cfg) {
		if c.Enabled {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
