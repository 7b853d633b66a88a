package builtin

import (
	"context"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

const dailyInterval = 24 * time.Hour

// DailyCycle claims the daily reward, gated to one attempt per day.
type DailyCycle struct {
	base
}

func NewDailyCycle(config cycle.Config) *DailyCycle {
	return &DailyCycle{base: newBase(DailyCycleID, "Daily", config)}
}

func (c *DailyCycle) Due(now time.Time, st *state.CycleState) bool {
	return untilDeadline(now, st)
}

func (c *DailyCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	st := env.Session.Cycle(c.ID())
	st.NextCheck = env.Now().Add(dailyInterval)

	claim, res := env.Client.ClaimDaily(ctx)
	switch {
	case res.Success():
		env.Log.Infof("daily reward claimed: %.0f points, %.0f games", claim.TodayPoints.Float(), claim.TodayGame.Float())
		return cycle.Claimed(claim.TodayPoints.Float())
	case res.Status == 400:
		env.Log.Info("daily reward already claimed today")
		return cycle.AlreadyClaimed()
	default:
		return cycle.Failed("daily claim: %s", res.Describe())
	}
}
