package builtin

import (
	"context"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// StarsCycle claims the classmate stars reward once per window.
type StarsCycle struct {
	base
	pause time.Duration
}

func NewStarsCycle(config cycle.Config) *StarsCycle {
	return &StarsCycle{
		base:  newBase(StarsCycleID, "Stars", config),
		pause: config.GetParameterDuration("claim_pause", 3*time.Second),
	}
}

func (c *StarsCycle) Due(now time.Time, st *state.CycleState) bool {
	return untilDeadline(now, st)
}

func (c *StarsCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	st := env.Session.Cycle(c.ID())

	task, res := env.Client.StarsTask(ctx)
	if !res.Success() {
		return cycle.Failed("stars task: %s", res.Describe())
	}
	if task.TaskID == 0 {
		return cycle.NotDue()
	}

	end, err := api.ParseTime(task.EndTime)
	if err != nil {
		return cycle.Failed("stars task end time: %v", err)
	}
	st.Guard.Observe(windowMarker(end, task.Status))

	now := env.Now()
	if task.Status > 2 {
		st.NextCheck = end
		env.Log.Info("stars already claimed for this window")
		return cycle.AlreadyClaimed()
	}
	if !end.After(now) {
		return cycle.NotDue()
	}
	if !st.Guard.Allow() {
		return cycle.AlreadyClaimed()
	}

	claim, res := env.Client.ClaimStars(ctx, task.TaskID)
	if !res.Success() {
		return cycle.Failed("stars claim: %s", res.Describe())
	}
	st.Guard.Arm(windowMarker(end, task.Status))

	if err := env.Sleep(ctx, c.pause); err != nil {
		return cycle.Failed("interrupted: %v", err)
	}
	if res := env.Client.ClaimTask(ctx, task.TaskID); !res.Success() {
		env.Log.Warnf("stars task claim: %s", res.Describe())
	}

	st.NextCheck = end
	env.Log.Infof("claimed %.0f stars", claim.Stars.Float())
	return cycle.Claimed(claim.Stars.Float())
}
