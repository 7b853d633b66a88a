package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

func newTestSweep(t *testing.T, controllers ...Controller) (*Executor, *Env, *common.Scope) {
	t.Helper()

	registry := NewRegistry()
	for _, c := range controllers {
		if err := registry.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	env := NewEnv(state.NewSession("tester"), nil, common.NewFakeClock(time.Unix(1700000000, 0)), logrus.NewEntry(logger))
	scope := common.NewScope(context.Background(), "sweep", "tester")
	t.Cleanup(scope.Finish)

	return NewExecutor(registry), env, scope
}

func TestSweep_RunsDueControllersInOrder(t *testing.T) {
	var order []string
	first := &mockController{id: "first", due: true, outcome: Claimed(10)}
	skipped := &mockController{id: "skipped", due: false}
	failing := &mockController{id: "failing", due: true, outcome: Failed("boom")}
	last := &mockController{id: "last", due: true, outcome: NotDue()}
	for _, c := range []*mockController{first, failing, last} {
		c := c
		c.onRun = func() { order = append(order, c.id) }
	}

	executor, env, scope := newTestSweep(t, first, skipped, failing, last)

	befores := 0
	reports, err := executor.Sweep(context.Background(), scope, env, func(context.Context) error {
		befores++
		return nil
	})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if len(reports) != 4 {
		t.Fatalf("got %d reports, expected 4", len(reports))
	}
	if skipped.runs != 0 {
		t.Error("a controller that is not due must not run")
	}
	if len(order) != 3 || order[0] != "first" || order[1] != "failing" || order[2] != "last" {
		t.Errorf("run order = %v", order)
	}
	if befores != 3 {
		t.Errorf("before hook ran %d times, expected once per due controller", befores)
	}
	if got := env.Session.Cycle("first").LastOutcome; got != string(OutcomeClaimed) {
		t.Errorf("LastOutcome = %q", got)
	}
}

func TestSweep_BeforeErrorAborts(t *testing.T) {
	first := &mockController{id: "first", due: true, outcome: NotDue()}
	second := &mockController{id: "second", due: true, outcome: NotDue()}

	executor, env, scope := newTestSweep(t, first, second)

	authErr := errors.New("login failed")
	calls := 0
	_, err := executor.Sweep(context.Background(), scope, env, func(context.Context) error {
		calls++
		if calls == 2 {
			return authErr
		}
		return nil
	})

	if !errors.Is(err, authErr) {
		t.Errorf("error = %v, expected the hook error", err)
	}
	if first.runs != 1 || second.runs != 0 {
		t.Errorf("runs = %d/%d, expected 1/0", first.runs, second.runs)
	}
}

func TestSweep_CancelledContext(t *testing.T) {
	c := &mockController{id: "only", due: true}
	executor, env, scope := newTestSweep(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := executor.Sweep(ctx, scope, env, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, expected context.Canceled", err)
	}
	if c.runs != 0 {
		t.Error("nothing should run on a cancelled context")
	}
}

func TestOutcome_String(t *testing.T) {
	if s := Claimed(1.5).String(); s != "claimed 1.50" {
		t.Errorf("Claimed.String() = %q", s)
	}
	if s := Failed("x %d", 1).String(); s != "failed: x 1" {
		t.Errorf("Failed.String() = %q", s)
	}
	if s := NotDue().String(); s != "not_due" {
		t.Errorf("NotDue.String() = %q", s)
	}
}

func TestSweep_PanickingControllerDoesNotBlockOthers(t *testing.T) {
	broken := &mockController{id: "broken", due: true, onRun: func() { panic("nil map") }}
	after := &mockController{id: "after", due: true, outcome: Claimed(1)}

	executor, env, scope := newTestSweep(t, broken, after)

	reports, err := executor.Sweep(context.Background(), scope, env, nil)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if after.runs != 1 {
		t.Error("controller after a panic should still run")
	}
	if reports[0].Outcome.Kind != OutcomeFailed {
		t.Errorf("panicking controller outcome = %s, expected failed", reports[0].Outcome)
	}
	if env.Session.Cycle("broken").LastOutcome != string(OutcomeFailed) {
		t.Error("panic should be recorded as a failed run")
	}
}
