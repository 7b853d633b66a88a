package builtin

import (
	"context"
	"strings"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

const (
	taskStatusClaimed = 3
	taskTypeEmoji     = "emoji"
	emojiSuffix       = "🍅"
)

// Task types skipped even inside their time window.
var windowExcluded = map[string]bool{
	"charge_stars_season2": true,
	"chain_donate_free":    true,
	"daily_donate":         true,
	"new_package":          true,
}

// Task types skipped when the task has no usable window.
var noWindowExcluded = map[string]bool{
	"wallet":               true,
	"mysterious":           true,
	"classmate":            true,
	"classmateInvite":      true,
	"classmateInviteBack":  true,
	"charge_stars_season2": true,
	"chain_donate_free":    true,
	"daily_donate":         true,
}

// SelectTasks keeps tasks that are enabled, visible, unclaimed and allowed for their type.
func SelectTasks(tasks []api.Task, now time.Time) []api.Task {
	var out []api.Task
	seen := make(map[int64]bool, len(tasks))

	for _, task := range tasks {
		if seen[task.TaskID] {
			continue
		}
		if !task.Enable || task.Invisible || task.Status == taskStatusClaimed {
			continue
		}

		if hasWindow(task) {
			if !inWindow(task, now) || windowExcluded[task.Type] {
				continue
			}
		} else if noWindowExcluded[task.Type] {
			continue
		}

		seen[task.TaskID] = true
		out = append(out, task)
	}

	return out
}

func hasWindow(task api.Task) bool {
	return task.StartTime != "" && task.EndTime != ""
}

// inWindow is false for an unparseable window.
func inWindow(task api.Task, now time.Time) bool {
	start, err := api.ParseTime(task.StartTime)
	if err != nil {
		return false
	}
	end, err := api.ParseTime(task.EndTime)
	if err != nil {
		return false
	}

	return !now.Before(start) && !now.After(end)
}

// TasksCycle works through the task catalogue.
type TasksCycle struct {
	base
	profile     ProfileUpdater
	changeName  bool
	emojiWait   time.Duration
	stepPause   time.Duration
	betweenWait time.Duration
}

func NewTasksCycle(config cycle.Config, profile ProfileUpdater) *TasksCycle {
	return &TasksCycle{
		base:        newBase(TasksCycleID, "Tasks", config),
		profile:     profile,
		changeName:  config.GetParameterBool("change_name", false),
		emojiWait:   config.GetParameterDuration("emoji_wait", 30*time.Second),
		stepPause:   config.GetParameterDuration("step_pause", 3*time.Second),
		betweenWait: config.GetParameterDuration("between_tasks", 2*time.Second),
	}
}

func (c *TasksCycle) Due(time.Time, *state.CycleState) bool {
	return true
}

func (c *TasksCycle) Run(ctx context.Context, env *cycle.Env) cycle.Outcome {
	all, res := env.Client.Tasks(ctx, env.Session.InitData)
	if !res.Success() {
		return cycle.Failed("task list: %s", res.Describe())
	}

	tasks := SelectTasks(all, env.Now())
	if len(tasks) == 0 {
		env.Log.Debug("no tasks to complete")
		return cycle.NotDue()
	}
	env.Log.Infof("%d tasks to complete", len(tasks))

	total := 0.0
	claimed := 0
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}

		var ok bool
		if strings.EqualFold(task.Type, taskTypeEmoji) {
			ok = c.runEmoji(ctx, env, task)
		} else {
			ok = c.runTask(ctx, env, task)
		}
		if ok {
			claimed++
			total += task.Score.Float()
		}

		if err := env.Sleep(ctx, c.betweenWait); err != nil {
			break
		}
	}

	if claimed == 0 {
		return cycle.Failed("no task was claimed")
	}

	return cycle.Claimed(total)
}

func (c *TasksCycle) runTask(ctx context.Context, env *cycle.Env, task api.Task) bool {
	started, res := env.Client.StartTask(ctx, task.TaskID, env.Session.InitData)
	if !res.Success() || !started.Startable() {
		env.Log.Debugf("task %q not startable: %s", task.Name, res.Describe())
		return false
	}

	wait := time.Duration(task.WaitSecond)*time.Second + c.stepPause
	if err := env.Sleep(ctx, wait); err != nil {
		return false
	}

	return c.checkAndClaim(ctx, env, task)
}

func (c *TasksCycle) runEmoji(ctx context.Context, env *cycle.Env, task api.Task) bool {
	if !c.changeName {
		env.Log.Debugf("skipping emoji task %q, name change disabled", task.Name)
		return false
	}

	if err := env.Sleep(ctx, c.emojiWait); err != nil {
		return false
	}
	if err := c.profile.AppendToLastName(ctx, env.Session.Name, emojiSuffix); err != nil {
		env.Log.WithError(err).Warn("could not update display name, trying the task anyway")
	}

	if _, res := env.Client.StartTask(ctx, task.TaskID, env.Session.InitData); !res.Success() {
		env.Log.Warnf("emoji task start: %s", res.Describe())
		return false
	}
	if err := env.Sleep(ctx, c.stepPause); err != nil {
		return false
	}

	return c.checkAndClaim(ctx, env, task)
}

func (c *TasksCycle) checkAndClaim(ctx context.Context, env *cycle.Env, task api.Task) bool {
	if res := env.Client.CheckTask(ctx, task.TaskID, env.Session.InitData); !res.Success() {
		env.Log.Debugf("task %q check: %s", task.Name, res.Describe())
	}
	if err := env.Sleep(ctx, c.stepPause); err != nil {
		return false
	}

	res := env.Client.ClaimTask(ctx, task.TaskID)
	if !res.Success() {
		env.Log.Infof("task %q not claimed: %s", task.Name, res.Describe())
		return false
	}

	env.Log.Infof("task %q claimed, reward %.0f", task.Name, task.Score.Float())
	return true
}
