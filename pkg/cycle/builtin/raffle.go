package builtin

import (
	"context"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// RaffleCycle spends raffle tickets.
type RaffleCycle struct {
	base
	pause time.Duration
}

func NewRaffleCycle(config cycle.Config) *RaffleCycle {
	return &RaffleCycle{
		base:  newBase(RaffleCycleID, "Raffle", config),
		pause: config.GetParameterDuration("spin_pause", 5*time.Second),
	}
}

func (c *RaffleCycle) Due(time.Time, *state.CycleState) bool {
	return true
}

func (c *RaffleCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	tickets, res := env.Client.Tickets(ctx, env.Session.InitData)
	if !res.Success() {
		return cycle.Failed("tickets: %s", res.Describe())
	}

	left := tickets.TicketSpin1
	if left <= 0 {
		env.Log.Debug("no raffle tickets")
		return cycle.NotDue()
	}

	spins := 0
	for left > 0 {
		spin, res := env.Client.SpinRaffle(ctx)
		if !res.Success() {
			env.Log.Warnf("raffle spin failed: %s", res.Describe())
			break
		}
		left--
		spins++

		if len(spin.Results) > 0 {
			env.Log.Infof("raffle won %.2f %s, %d tickets left", spin.Results[0].Amount.Float(), spin.Results[0].Type, left)
		}

		if err := env.Sleep(ctx, c.pause); err != nil {
			break
		}
	}

	if spins == 0 {
		return cycle.Failed("no raffle spin succeeded")
	}

	return cycle.Claimed(float64(spins))
}
