package builtin

import (
	"context"
	"strings"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// WalletCycle keeps the linked wallet equal to the configured address.
type WalletCycle struct {
	base
	recheck time.Duration
}

func NewWalletCycle(config cycle.Config) *WalletCycle {
	return &WalletCycle{
		base:    newBase(WalletCycleID, "Wallet", config),
		recheck: config.GetParameterDuration("recheck", 6*time.Hour),
	}
}

func (c *WalletCycle) Due(now time.Time, st *state.CycleState) bool {
	return untilDeadline(now, st)
}

func (c *WalletCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	st := env.Session.Cycle(c.ID())

	local := strings.TrimSpace(env.Session.WalletAddress)
	if local == "" {
		st.NextCheck = env.Now().Add(c.recheck)
		env.Log.Debug("no wallet configured for this account")
		return cycle.NotDue()
	}

	info, res := env.Client.Wallet(ctx)
	if !res.Success() {
		return cycle.Failed("wallet lookup: %s", res.Describe())
	}

	remote := strings.TrimSpace(info.WalletAddress)
	if remote == local {
		st.NextCheck = env.Now().Add(c.recheck)
		env.Log.Debug("wallet already linked")
		return cycle.AlreadyClaimed()
	}

	if remote != "" {
		if res := env.Client.RemoveWallet(ctx); !res.Success() {
			return cycle.Failed("wallet remove: %s", res.Describe())
		}
		env.Log.Infof("removed linked wallet %s", remote)
	}

	if res := env.Client.AddWallet(ctx, local); !res.Success() {
		return cycle.Failed("wallet add: %s", res.Describe())
	}

	st.NextCheck = env.Now().Add(c.recheck)
	env.Log.Infof("linked wallet %s", local)
	return cycle.Claimed(0)
}
