package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// GameCycle spends play passes on the drop game.
type GameCycle struct {
	base
	pointsMin  int
	pointsMax  int
	maxRetries int
	playWait   time.Duration
	claimPause time.Duration
}

func NewGameCycle(config cycle.Config) (*GameCycle, error) {
	c := &GameCycle{
		base:       newBase(GameCycleID, "Game", config),
		pointsMin:  config.GetParameterInt("points_min", 450),
		pointsMax:  config.GetParameterInt("points_max", 550),
		maxRetries: config.GetParameterInt("max_retries", 5),
		playWait:   config.GetParameterDuration("play_wait", 30*time.Second),
		claimPause: config.GetParameterDuration("claim_pause", 1500*time.Millisecond),
	}
	if c.pointsMin < 0 || c.pointsMax < c.pointsMin {
		return nil, fmt.Errorf("%w: points range [%d, %d]", cycle.ErrInvalidConfig, c.pointsMin, c.pointsMax)
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 5
	}

	return c, nil
}

func (c *GameCycle) Due(time.Time, *state.CycleState) bool {
	return true
}

func (c *GameCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	bal, res := env.Balance(ctx)
	if !res.Success() {
		return cycle.Failed("balance unavailable: %s", res.Describe())
	}

	tickets := bal.PlayPasses
	if tickets <= 0 {
		env.Log.Info("no play passes left")
		return cycle.NotDue()
	}
	env.Log.Infof("playing %d games", tickets)

	total := 0.0
	played := 0
	retries := 0

	for tickets > 0 {
		if res := env.Client.PlayGame(ctx); !res.Success() {
			env.Log.Warnf("could not start game: %s", res.Describe())
			break
		}
		if err := env.Sleep(ctx, c.playWait); err != nil {
			break
		}

		points := common.RandomInt(c.pointsMin, c.pointsMax)
		claim, res := env.Client.ClaimGame(ctx, points)
		if res.Kind == api.KindOK && res.Status == 500 && res.Message == api.GameNotStartedMsg {
			retries++
			if retries >= c.maxRetries {
				env.Log.Warnf("max retries reached (%d), stopping games", retries)
				break
			}
			env.Log.Info("game not started on the server, retrying")
			continue
		}
		if !res.Success() {
			env.Log.Warnf("game claim failed: %s", res.Describe())
			break
		}

		retries = 0
		tickets--
		played++
		total += claim.Points.Float()
		env.Log.Infof("game finished: %.0f points, %d passes left", claim.Points.Float(), tickets)

		if err := env.Sleep(ctx, c.claimPause); err != nil {
			break
		}
	}

	env.ForgetBalance()
	if played == 0 {
		return cycle.Failed("no game was claimed")
	}

	return cycle.Claimed(total)
}
