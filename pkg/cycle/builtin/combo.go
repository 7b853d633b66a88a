package builtin

import (
	"context"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// ComboCycle answers the daily puzzle combo.
type ComboCycle struct {
	base
	puzzles PuzzleResolver
}

func NewComboCycle(config cycle.Config, puzzles PuzzleResolver) *ComboCycle {
	return &ComboCycle{
		base:    newBase(ComboCycleID, "Combo", config),
		puzzles: puzzles,
	}
}

func (c *ComboCycle) Due(now time.Time, st *state.CycleState) bool {
	return untilDeadline(now, st)
}

// ComboClaimSucceeded is strict: status 0, an empty message and data exactly {}.
func ComboClaimSucceeded(res api.Result) bool {
	return res.Kind == api.KindOK && res.Status == 0 && res.Message == "" && res.DataIsEmptyObject()
}

func (c *ComboCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	st := env.Session.Cycle(c.ID())

	entries, res := env.Client.ComboTasks(ctx, env.Session.InitData)
	if !res.Success() {
		return cycle.Failed("combo task: %s", res.Describe())
	}
	if len(entries) == 0 {
		return cycle.NotDue()
	}

	combo := entries[0]
	end, err := api.ParseTime(combo.EndTime)
	if err != nil {
		return cycle.Failed("combo end time: %v", err)
	}
	marker := windowMarker(end, combo.Status)
	st.Guard.Observe(marker)

	now := env.Now()
	if combo.Status > 0 {
		st.NextCheck = end
		env.Log.Info("combo already claimed for this window")
		return cycle.AlreadyClaimed()
	}
	if !end.After(now) {
		return cycle.NotDue()
	}
	if !st.Guard.Allow() {
		return cycle.AlreadyClaimed()
	}

	payload, err := c.puzzles.Resolve(ctx, combo.TaskID)
	if err != nil {
		return cycle.Failed("no combo answer for task %d: %v", combo.TaskID, err)
	}

	res = env.Client.ClaimCombo(ctx, payload.TaskID, payload.Code)
	if !ComboClaimSucceeded(res) {
		return cycle.Failed("combo claim: %s", res.Describe())
	}
	st.Guard.Arm(marker)

	st.NextCheck = end
	env.Log.Infof("combo claimed: %.0f points, %.0f games, %.0f stars", combo.Score.Float(), combo.Games.Float(), combo.Star.Float())
	return cycle.Claimed(combo.Score.Float())
}
