package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

// Controller drives one reward category for an account.
// Controllers are registered in a Registry and run in registration order by the Executor.
type Controller interface {
	// ID returns the unique category identifier, also the key of its CycleState.
	ID() string

	// Name returns a human-readable name.
	Name() string

	// Due reports whether Run should be invoked this sweep.
	Due(now time.Time, st *state.CycleState) bool

	// Run performs the category's remote calls and updates its CycleState.
	// It reports failures through the Outcome and never returns an error.
	Run(ctx context.Context, env *Env) Outcome

	// Config returns the controller's configuration.
	Config() Config
}

// OutcomeKind classifies what a controller achieved.
type OutcomeKind string

const (
	OutcomeClaimed        OutcomeKind = "claimed"
	OutcomeAlreadyClaimed OutcomeKind = "already_claimed"
	OutcomeNotDue         OutcomeKind = "not_due"
	OutcomeFailed         OutcomeKind = "failed"
)

// Outcome is the result of one controller run.
type Outcome struct {
	Kind   OutcomeKind
	Amount float64
	Reason string
}

func Claimed(amount float64) Outcome {
	return Outcome{Kind: OutcomeClaimed, Amount: amount}
}

func AlreadyClaimed() Outcome {
	return Outcome{Kind: OutcomeAlreadyClaimed}
}

func NotDue() Outcome {
	return Outcome{Kind: OutcomeNotDue}
}

func Failed(format string, args ...interface{}) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: fmt.Sprintf(format, args...)}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeClaimed:
		return fmt.Sprintf("claimed %.2f", o.Amount)
	case OutcomeFailed:
		return "failed: " + o.Reason
	default:
		return string(o.Kind)
	}
}

// Env is what a controller sees of its account during a sweep.
type Env struct {
	Session *state.Session
	Client  *api.Client
	Clock   common.Clock
	Log     *logrus.Entry

	balance *api.Balance
}

// NewEnv creates an environment for one account.
func NewEnv(session *state.Session, client *api.Client, clock common.Clock, log *logrus.Entry) *Env {
	if clock == nil {
		clock = common.SystemClock{}
	}
	if log == nil {
		log = logrus.WithField("account", session.Name)
	}

	return &Env{Session: session, Client: client, Clock: clock, Log: log}
}

// Balance returns the account balance, read at most once per sweep.
func (e *Env) Balance(ctx context.Context) (api.Balance, api.Result) {
	if e.balance != nil {
		return *e.balance, api.Result{Kind: api.KindOK, Status: 0}
	}

	bal, res := e.Client.Balance(ctx)
	if res.Success() {
		e.balance = &bal
	}

	return bal, res
}

// ForgetBalance drops the cached balance, e.g. after tickets were spent.
func (e *Env) ForgetBalance() {
	e.balance = nil
}

// Sleep waits on the environment clock.
func (e *Env) Sleep(ctx context.Context, d time.Duration) error {
	return e.Clock.Sleep(ctx, d)
}

// Now reads the environment clock.
func (e *Env) Now() time.Time {
	return e.Clock.Now()
}
