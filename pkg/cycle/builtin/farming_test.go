package builtin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
)

func TestFarming_InProgressSchedulesWithoutClaim(t *testing.T) {
	fake, client := newFakeAPI(t)
	end := testStart.Add(60 * time.Second)
	fake.reply(api.PathBalance, fmt.Sprintf(`{"status":0,"data":{"available_balance":100,"farming":{"end_at":%d}}}`, end.Unix()))

	env, _ := newTestEnv(client)
	out := NewFarmingCycle(cycle.Config{}).Run(context.Background(), env)

	if out.Kind != cycle.OutcomeNotDue {
		t.Errorf("outcome = %s, expected not_due", out)
	}
	if n := fake.count(api.PathFarmClaim); n != 0 {
		t.Errorf("claim called %d times while farming in progress", n)
	}

	next := env.Session.Cycle(FarmingCycleID).NextCheck
	if next.Before(end.Add(350*time.Second)) || next.After(end.Add(500*time.Second)) {
		t.Errorf("NextCheck = %v, expected end plus [350s, 500s]", next)
	}
}

func TestFarming_ClaimThenStart(t *testing.T) {
	fake, client := newFakeAPI(t)
	newEnd := testStart.Add(8 * time.Hour)
	fake.reply(api.PathBalance, fmt.Sprintf(`{"status":0,"data":{"available_balance":"100","farming":{"end_at":%d}}}`, testStart.Add(-time.Minute).Unix()))
	fake.reply(api.PathFarmClaim, `{"status":0,"data":{"claim_this_time":"12.5"}}`)
	fake.reply(api.PathFarmStart, fmt.Sprintf(`{"status":0,"data":{"end_at":%d}}`, newEnd.Unix()))

	env, _ := newTestEnv(client)
	out := NewFarmingCycle(cycle.Config{}).Run(context.Background(), env)

	if out.Kind != cycle.OutcomeClaimed || out.Amount != 12.5 {
		t.Errorf("outcome = %s, expected claimed 12.5", out)
	}
	if fake.count(api.PathFarmStart) != 1 {
		t.Errorf("start called %d times, expected 1", fake.count(api.PathFarmStart))
	}
	if body := fake.lastBody(api.PathFarmClaim); body["game_id"] != api.FarmGameID {
		t.Errorf("claim body = %v", body)
	}

	st := env.Session.Cycle(FarmingCycleID)
	if st.NextCheck.Before(newEnd.Add(350*time.Second)) || st.NextCheck.After(newEnd.Add(500*time.Second)) {
		t.Errorf("NextCheck = %v, expected new end plus [350s, 500s]", st.NextCheck)
	}
	if !st.Guard.Allow() {
		t.Error("a successful start should release the claim guard")
	}
}

func TestFarming_NotStartedStartsFarm(t *testing.T) {
	fake, client := newFakeAPI(t)
	fake.reply(api.PathBalance, `{"status":0,"data":{"available_balance":0}}`)
	fake.reply(api.PathFarmClaim, `{"status":500,"message":"farm not started"}`)
	fake.reply(api.PathFarmStart, fmt.Sprintf(`{"status":0,"data":{"end_at":%d}}`, testStart.Add(time.Hour).Unix()))

	env, _ := newTestEnv(client)
	out := NewFarmingCycle(cycle.Config{}).Run(context.Background(), env)

	if out.Kind != cycle.OutcomeNotDue {
		t.Errorf("outcome = %s", out)
	}
	if fake.count(api.PathFarmStart) != 1 {
		t.Error("farm should have been started")
	}
}

func TestFarming_ClaimedButNotStartedRestartsWithoutReclaim(t *testing.T) {
	fake, client := newFakeAPI(t)
	staleEnd := testStart.Add(-time.Minute).Unix()
	newEnd := testStart.Add(8 * time.Hour)
	fake.reply(api.PathBalance, fmt.Sprintf(`{"status":0,"data":{"farming":{"end_at":%d}}}`, staleEnd))
	fake.reply(api.PathFarmClaim, `{"status":0,"data":{"claim_this_time":1}}`)
	fake.reply(api.PathFarmStart, `{"status":500,"message":"busy"}`)

	env, clock := newTestEnv(client)
	farming := NewFarmingCycle(cycle.Config{})

	farming.Run(context.Background(), env)
	if fake.count(api.PathFarmClaim) != 1 {
		t.Fatalf("first run should claim once")
	}
	next := env.Session.Cycle(FarmingCycleID).NextCheck
	if !next.After(clock.Now()) {
		t.Errorf("a failed start must schedule a future retry, got %v", next)
	}

	clock.Advance(10 * time.Minute)
	env.ForgetBalance()
	out := farming.Run(context.Background(), env)
	if fake.count(api.PathFarmClaim) != 1 {
		t.Errorf("claim repeated without a remote state change")
	}
	if fake.count(api.PathFarmStart) != 2 {
		t.Errorf("start called %d times, expected a retry of the start", fake.count(api.PathFarmStart))
	}
	if out.Kind != cycle.OutcomeFailed {
		t.Errorf("outcome = %s, expected failed", out)
	}

	fake.reply(api.PathFarmStart, fmt.Sprintf(`{"status":0,"data":{"end_at":%d}}`, newEnd.Unix()))
	clock.Advance(10 * time.Minute)
	env.ForgetBalance()
	out = farming.Run(context.Background(), env)
	if out.Kind != cycle.OutcomeNotDue {
		t.Errorf("outcome = %s, expected not_due after the farm restarted", out)
	}
	if fake.count(api.PathFarmClaim) != 1 {
		t.Errorf("claim called %d times, expected 1", fake.count(api.PathFarmClaim))
	}
	st := env.Session.Cycle(FarmingCycleID)
	if !st.Guard.Allow() {
		t.Error("a started farm should release the claim guard")
	}
	if st.NextCheck.Before(newEnd) {
		t.Errorf("NextCheck = %v, expected after the new end", st.NextCheck)
	}
}

func TestFarming_FailedClaimIsRetried(t *testing.T) {
	tests := []struct {
		name  string
		first string
	}{
		{"undecodable body", `<html>gateway timeout</html>`},
		{"unauthorized status", `{"status":401,"message":"Access Denied"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, client := newFakeAPI(t)
			fake.reply(api.PathBalance, fmt.Sprintf(`{"status":0,"data":{"farming":{"end_at":%d}}}`, testStart.Add(-time.Minute).Unix()))
			fake.reply(api.PathFarmStart, fmt.Sprintf(`{"status":0,"data":{"end_at":%d}}`, testStart.Add(8*time.Hour).Unix()))

			calls := 0
			fake.on(api.PathFarmClaim, func(map[string]any) string {
				calls++
				if calls == 1 {
					return tt.first
				}
				return `{"status":0,"data":{"claim_this_time":4}}`
			})

			env, clock := newTestEnv(client)
			farming := NewFarmingCycle(cycle.Config{})

			if out := farming.Run(context.Background(), env); out.Kind != cycle.OutcomeFailed {
				t.Fatalf("first outcome = %s, expected failed", out)
			}
			if !env.Session.Cycle(FarmingCycleID).Guard.Allow() {
				t.Fatal("a claim the server never handled must not arm the guard")
			}

			clock.Advance(6 * time.Minute)
			env.ForgetBalance()
			out := farming.Run(context.Background(), env)
			if out.Kind != cycle.OutcomeClaimed || out.Amount != 4 {
				t.Errorf("second outcome = %s, expected claimed 4", out)
			}
			if fake.count(api.PathFarmClaim) != 2 {
				t.Errorf("claim called %d times, expected 2", fake.count(api.PathFarmClaim))
			}
		})
	}
}

func TestFarming_BalanceFailureSchedulesRetry(t *testing.T) {
	fake, client := newFakeAPI(t)
	fake.reply(api.PathBalance, `not json`)

	env, clock := newTestEnv(client)
	out := NewFarmingCycle(cycle.Config{Parameters: map[string]interface{}{"retry_delay": 120}}).Run(context.Background(), env)

	if out.Kind != cycle.OutcomeFailed {
		t.Errorf("outcome = %s", out)
	}
	if got := env.Session.Cycle(FarmingCycleID).NextCheck; !got.Equal(clock.Now().Add(2 * time.Minute)) {
		t.Errorf("NextCheck = %v", got)
	}
}
