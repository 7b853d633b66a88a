package cycle

import (
	"context"
	"fmt"

	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/metrics"
)

// Report pairs a controller with what it did in a sweep.
type Report struct {
	CycleID string
	Outcome Outcome
}

// Executor runs every registered controller once per sweep.
type Executor struct {
	registry *Registry
}

// NewExecutor creates a new sweep executor.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Registry returns the registry used by this executor.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Sweep runs due controllers in registry order. before is called ahead of each due
// controller; an error from it or a cancelled context aborts the sweep.
// Failed outcomes and controller panics never abort the sweep.
func (e *Executor) Sweep(ctx context.Context, scope *common.Scope, env *Env, before func(ctx context.Context) error) ([]Report, error) {
	env.ForgetBalance()
	reports := make([]Report, 0, e.registry.Count())

	for _, c := range e.registry.All() {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		st := env.Session.Cycle(c.ID())
		now := env.Now()
		if !c.Due(now, st) {
			reports = append(reports, Report{CycleID: c.ID(), Outcome: NotDue()})
			continue
		}

		if before != nil {
			if err := before(ctx); err != nil {
				return reports, err
			}
		}

		child := scope.NewChildScope(c.ID())
		env.Log = child.Log
		outcome := runIsolated(child, c, env)
		child.SetAttributes("outcome", string(outcome.Kind))
		child.Finish()

		st.LastRunAt = now
		st.LastOutcome = string(outcome.Kind)

		metrics.CycleOutcomes.WithLabelValues(env.Session.Name, c.ID(), string(outcome.Kind)).Inc()
		if outcome.Kind == OutcomeClaimed {
			metrics.RewardsClaimed.WithLabelValues(env.Session.Name, c.ID()).Add(outcome.Amount)
		}
		if outcome.Kind == OutcomeFailed {
			env.Log.Warnf("%s cycle failed: %s", c.Name(), outcome.Reason)
		}

		reports = append(reports, Report{CycleID: c.ID(), Outcome: outcome})
	}

	env.Log = scope.Log
	return reports, ctx.Err()
}

func runIsolated(scope *common.Scope, c Controller, env *Env) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s panicked: %v", c.ID(), r)
			scope.TraceError(err)
			outcome = Failed("%v", err)
		}
	}()

	return c.Run(scope.Ctx, env)
}
