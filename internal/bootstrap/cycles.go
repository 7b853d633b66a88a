// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/internal/config"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle/builtin"
)

// CycleConfigs maps the AUTO_* switches to controller configurations in sweep order.
// Rank always runs so the rank profile gets created; AUTO_RANK_UPGRADE only gates spending stars.
func CycleConfigs(cfg *config.Config) []cycle.Config {
	enabled := map[string]bool{
		builtin.FarmingCycleID: cfg.AutoFarm,
		builtin.StarsCycleID:   cfg.AutoClaimStars,
		builtin.DailyCycleID:   cfg.AutoDailyReward,
		builtin.GameCycleID:    cfg.AutoPlayGame,
		builtin.TasksCycleID:   cfg.AutoTask,
		builtin.RankCycleID:    true,
		builtin.ComboCycleID:   cfg.AutoClaimCombo,
		builtin.RaffleCycleID:  cfg.AutoRaffle,
		builtin.WalletCycleID:  cfg.AutoAddWallet,
	}

	params := map[string]map[string]interface{}{
		builtin.GameCycleID: {
			"points_min": cfg.PointsMin,
			"points_max": cfg.PointsMax,
		},
		builtin.TasksCycleID: {
			"change_name": cfg.AutoChangeName,
		},
		builtin.RankCycleID: {
			"upgrade": cfg.AutoRankUpgrade,
		},
	}

	configs := make([]cycle.Config, 0, len(builtin.SweepOrder))
	for _, id := range builtin.SweepOrder {
		configs = append(configs, cycle.Config{
			ID:         id,
			Name:       id,
			Type:       builtin.TypeName(id),
			Enabled:    enabled[id],
			Parameters: params[id],
		})
	}

	return configs
}

// InitCycleExecutor builds one account's executor from the enabled controllers.
// Each account gets its own registry so controllers never share state across accounts.
func InitCycleExecutor(configs []cycle.Config, deps *builtin.Dependencies) (*cycle.Executor, error) {
	builtin.RegisterCycles(deps)

	registry := cycle.NewRegistry()
	if err := cycle.RegisterAll(registry, configs); err != nil {
		return nil, fmt.Errorf("failed to register cycles: %w", err)
	}

	logrus.Debugf("cycle order: %v", registry.IDs())

	return cycle.NewExecutor(registry), nil
}
