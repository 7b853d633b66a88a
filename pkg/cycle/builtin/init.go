package builtin

import (
	"context"
	"errors"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/puzzle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// Controller IDs in sweep order.
const (
	FarmingCycleID = "farming"
	StarsCycleID   = "stars"
	DailyCycleID   = "daily"
	GameCycleID    = "game"
	TasksCycleID   = "tasks"
	RankCycleID    = "rank"
	ComboCycleID   = "combo"
	RaffleCycleID  = "raffle"
	WalletCycleID  = "wallet"
)

// SweepOrder is the fixed order controllers are registered in.
var SweepOrder = []string{
	FarmingCycleID,
	StarsCycleID,
	DailyCycleID,
	GameCycleID,
	TasksCycleID,
	RankCycleID,
	ComboCycleID,
	RaffleCycleID,
	WalletCycleID,
}

// TypeName returns the factory type for a controller ID.
func TypeName(id string) string {
	return "builtin." + id
}

// ErrProfileUpdateUnsupported is returned by NoProfileUpdater.
var ErrProfileUpdateUnsupported = errors.New("profile updates are not supported by this auth provider")

// ProfileUpdater edits the Telegram display name for emoji tasks.
type ProfileUpdater interface {
	AppendToLastName(ctx context.Context, account, suffix string) error
}

// NoProfileUpdater is used when no Telegram user client is available.
type NoProfileUpdater struct{}

func (NoProfileUpdater) AppendToLastName(context.Context, string, string) error {
	return ErrProfileUpdateUnsupported
}

// PuzzleResolver finds the combo answer for a task.
type PuzzleResolver interface {
	Resolve(ctx context.Context, taskID int64) (puzzle.Payload, error)
}

// Dependencies holds what the built-in controllers need beyond their Env.
type Dependencies struct {
	Profile ProfileUpdater
	Puzzles PuzzleResolver
}

// RegisterCycles registers the built-in controller factories.
func RegisterCycles(deps *Dependencies) {
	if deps.Profile == nil {
		deps.Profile = NoProfileUpdater{}
	}

	cycle.RegisterType(TypeName(FarmingCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewFarmingCycle(config), nil
	})
	cycle.RegisterType(TypeName(StarsCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewStarsCycle(config), nil
	})
	cycle.RegisterType(TypeName(DailyCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewDailyCycle(config), nil
	})
	cycle.RegisterType(TypeName(GameCycleID), func(config cycle.Config) (cycle.Controller, error) {
		game, err := NewGameCycle(config)
		if err != nil {
			return nil, err
		}
		return game, nil
	})
	cycle.RegisterType(TypeName(TasksCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewTasksCycle(config, deps.Profile), nil
	})
	cycle.RegisterType(TypeName(RankCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewRankCycle(config), nil
	})
	cycle.RegisterType(TypeName(ComboCycleID), func(config cycle.Config) (cycle.Controller, error) {
		if deps.Puzzles == nil {
			return nil, cycle.ErrInvalidConfig
		}
		return NewComboCycle(config, deps.Puzzles), nil
	})
	cycle.RegisterType(TypeName(RaffleCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewRaffleCycle(config), nil
	})
	cycle.RegisterType(TypeName(WalletCycleID), func(config cycle.Config) (cycle.Controller, error) {
		return NewWalletCycle(config), nil
	})
}

// base carries the parts every controller shares.
type base struct {
	id     string
	name   string
	config cycle.Config
}

func newBase(id, name string, config cycle.Config) base {
	if config.ID == "" {
		config.ID = id
	}
	if config.Name == "" {
		config.Name = name
	}

	return base{id: id, name: name, config: config}
}

func (b base) ID() string           { return b.id }
func (b base) Name() string         { return b.name }
func (b base) Config() cycle.Config { return b.config }

// untilDeadline is the Due rule for deadline-gated categories.
func untilDeadline(now time.Time, st *state.CycleState) bool {
	return st.DueAt(now)
}

// windowMarker identifies a claimable window for the claim guard.
func windowMarker(end time.Time, status int) int64 {
	return end.Unix()*10 + int64(status)
}
