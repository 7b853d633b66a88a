// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tomarket_harvester"

var (
	CycleOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycle_outcomes_total",
		Help:      "Controller runs by account, cycle and outcome.",
	}, []string{"account", "cycle", "outcome"})

	RewardsClaimed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rewards_claimed_total",
		Help:      "Sum of claimed amounts by account and cycle.",
	}, []string{"account", "cycle"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Credential acquisitions by account and result.",
	}, []string{"account", "result"})

	Sweeps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweeps_total",
		Help:      "Completed or aborted sweeps by account and result.",
	}, []string{"account", "result"})

	SleepSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sleep_seconds",
		Help:      "Length of the current sleep per account.",
	}, []string{"account"})

	AccountsRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "accounts_running",
		Help:      "Accounts whose loop is still running.",
	})
)

// Register adds every collector to the registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(CycleOutcomes, RewardsClaimed, Logins, Sweeps, SleepSeconds, AccountsRunning)
}
