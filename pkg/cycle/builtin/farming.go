package builtin

import (
	"context"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// FarmingCycle claims a finished farm and starts the next one.
type FarmingCycle struct {
	base
	jitterMin  int
	jitterMax  int
	retryDelay time.Duration
}

func NewFarmingCycle(config cycle.Config) *FarmingCycle {
	return &FarmingCycle{
		base:       newBase(FarmingCycleID, "Farming", config),
		jitterMin:  config.GetParameterInt("jitter_min", 350),
		jitterMax:  config.GetParameterInt("jitter_max", 500),
		retryDelay: config.GetParameterDuration("retry_delay", 5*time.Minute),
	}
}

// Due is always true: the balance read is what tells whether the farm finished.
func (c *FarmingCycle) Due(time.Time, *state.CycleState) bool {
	return true
}

func (c *FarmingCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	st := env.Session.Cycle(c.ID())
	now := env.Now()

	bal, res := env.Balance(ctx)
	if !res.Success() {
		st.NextCheck = now.Add(c.retryDelay)
		return cycle.Failed("balance unavailable: %s", res.Describe())
	}
	env.Log.Infof("current balance: %.2f, play passes: %d", bal.AvailableBalance.Float(), bal.PlayPasses)

	marker := int64(0)
	if bal.Farming != nil {
		end := bal.Farming.EndAt.Time()
		marker = end.Unix()
		st.Guard.Observe(marker)

		if end.After(now) {
			st.NextCheck = end.Add(common.JitterSeconds(c.jitterMin, c.jitterMax))
			env.Log.Infof("farming in progress, next claim in %d minutes", int(st.NextCheck.Sub(now).Minutes()))
			return cycle.NotDue()
		}
	} else {
		st.Guard.Observe(marker)
	}

	if now.Before(st.NextCheck) {
		return cycle.NotDue()
	}

	if !st.Guard.Allow() {
		env.Log.Info("farm already claimed, starting the next one")
		if !c.start(ctx, env, st) {
			return cycle.Failed("farm start failed after claim")
		}
		return cycle.NotDue()
	}

	claim, res := env.Client.ClaimFarm(ctx)

	switch {
	case res.Kind != api.KindOK:
		st.NextCheck = now.Add(c.retryDelay)
		return cycle.Failed("farm claim: %s", res.Describe())
	case res.Status == 500:
		env.Log.Info("farming not started yet, starting now")
		if !c.start(ctx, env, st) {
			return cycle.Failed("farm start failed")
		}
		return cycle.NotDue()
	case res.Success():
		st.Guard.Arm(marker)
		amount := claim.ClaimThisTime.Float()
		env.Log.Infof("claimed %.2f points from farming", amount)
		c.start(ctx, env, st)
		return cycle.Claimed(amount)
	default:
		st.NextCheck = now.Add(c.retryDelay)
		return cycle.Failed("farm claim rejected: %s", res.Describe())
	}
}

// start begins a new farm and schedules the next claim from its end time.
func (c *FarmingCycle) start(ctx context.Context, env *cycle.Env, st *state.CycleState) bool {
	started, res := env.Client.StartFarm(ctx)
	if !res.Success() || started.EndAt == 0 {
		st.NextCheck = env.Now().Add(c.retryDelay)
		env.Log.Warnf("could not start farming: %s", res.Describe())
		return false
	}

	end := started.EndAt.Time()
	st.Guard.Observe(end.Unix())
	st.NextCheck = end.Add(common.JitterSeconds(c.jitterMin, c.jitterMax))
	env.Log.Infof("farming started, ends at %s", end.Format(time.RFC3339))

	return true
}
