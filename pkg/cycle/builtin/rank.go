package builtin

import (
	"context"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// RankCycle creates the rank profile once eligible and, when upgrade is set, spends unused stars on upgrades.
type RankCycle struct {
	base
	upgrade bool
}

func NewRankCycle(config cycle.Config) *RankCycle {
	return &RankCycle{
		base:    newBase(RankCycleID, "Rank", config),
		upgrade: config.GetParameterBool("upgrade", true),
	}
}

func (c *RankCycle) Due(time.Time, *state.CycleState) bool {
	return true
}

func (c *RankCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	if res := env.Client.EvaluateRank(ctx); res.Success() {
		if res := env.Client.CreateRank(ctx); res.Success() {
			env.Log.Info("rank profile created")
		} else {
			env.Log.Debugf("rank create: %s", res.Describe())
		}
	}

	if !c.upgrade {
		return cycle.NotDue()
	}

	data, res := env.Client.RankData(ctx)
	if !res.Success() {
		return cycle.Failed("rank data: %s", res.Describe())
	}

	stars := data.UnusedStars.Int()
	if stars <= 0 {
		return cycle.NotDue()
	}

	if res := env.Client.UpgradeRank(ctx, stars); !res.Success() {
		return cycle.Failed("rank upgrade: %s", res.Describe())
	}

	env.Log.Infof("rank upgraded with %d stars", stars)
	return cycle.Claimed(float64(stars))
}
