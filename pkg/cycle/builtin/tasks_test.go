package builtin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
)

func TestSelectTasks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	open := now.Add(-time.Hour).Format("2006-01-02 15:04:05")
	closeAt := now.Add(time.Hour).Format("2006-01-02 15:04:05")
	expired := now.Add(-2 * time.Hour).Format("2006-01-02 15:04:05")
	later := now.Add(2 * time.Hour).Format("2006-01-02 15:04:05")

	tasks := []api.Task{
		{TaskID: 1, Type: "charge_stars_season2", Enable: true, StartTime: open, EndTime: closeAt},
		{TaskID: 2, Type: "youtube", Enable: true, StartTime: open, EndTime: closeAt},
		{TaskID: 3, Type: "wallet", Enable: true},
		{TaskID: 4, Type: "telegram", Enable: true},
		{TaskID: 5, Type: "telegram", Enable: false},
		{TaskID: 6, Type: "telegram", Enable: true, Invisible: true},
		{TaskID: 7, Type: "telegram", Enable: true, Status: 3},
		{TaskID: 8, Type: "new_package", Enable: true, StartTime: open, EndTime: closeAt},
		{TaskID: 9, Type: "new_package", Enable: true},
		{TaskID: 4, Type: "telegram", Enable: true},
		{TaskID: 10, Type: "new_package", Enable: true, StartTime: expired, EndTime: open},
		{TaskID: 11, Type: "youtube", Enable: true, StartTime: closeAt, EndTime: later},
		{TaskID: 12, Type: "telegram", Enable: true, StartTime: "soon", EndTime: "later"},
	}

	got := SelectTasks(tasks, now)

	ids := make(map[int64]bool)
	for _, task := range got {
		ids[task.TaskID] = true
	}

	want := map[int64]bool{2: true, 4: true, 9: true}
	if len(got) != len(want) {
		t.Errorf("selected %d tasks, expected %d: %+v", len(got), len(want), got)
	}
	for id := range want {
		if !ids[id] {
			t.Errorf("task %d should be selected", id)
		}
	}
	if ids[1] {
		t.Error("charge_stars_season2 inside its window must be skipped")
	}
	for _, id := range []int64{10, 11, 12} {
		if ids[id] {
			t.Errorf("task %d is outside its window and must be skipped", id)
		}
	}
}

func TestTasks_StartWaitCheckClaim(t *testing.T) {
	fake, client := newFakeAPI(t)
	fake.reply(api.PathTaskList, `{"status":0,"data":{"standard":[{"taskId":11,"name":"Follow","type":"telegram","enable":true,"waitSecond":10,"score":500}]}}`)
	fake.reply(api.PathTaskStart, `{"status":0,"data":"ok"}`)
	fake.reply(api.PathTaskCheck, `{"status":0,"data":{"status":2}}`)
	fake.reply(api.PathTaskClaim, `{"status":0,"data":"ok"}`)

	env, clock := newTestEnv(client)
	out := NewTasksCycle(cycle.Config{}, NoProfileUpdater{}).Run(context.Background(), env)

	if out.Kind != cycle.OutcomeClaimed || out.Amount != 500 {
		t.Errorf("outcome = %s, expected claimed 500", out)
	}
	if body := fake.lastBody(api.PathTaskStart); body["init_data"] != "user=1&hash=2" {
		t.Errorf("start body = %v", body)
	}

	sleeps := clock.Sleeps()
	if len(sleeps) == 0 || sleeps[0] != 13*time.Second {
		t.Errorf("sleeps = %v, expected waitSecond plus 3s first", sleeps)
	}
}

func TestTasks_UnstartableIsSkipped(t *testing.T) {
	fake, client := newFakeAPI(t)
	fake.reply(api.PathTaskList, `{"status":0,"data":{"standard":[{"taskId":11,"type":"telegram","enable":true}]}}`)
	fake.reply(api.PathTaskStart, `{"status":0,"data":{"status":3}}`)

	env, _ := newTestEnv(client)
	out := NewTasksCycle(cycle.Config{}, NoProfileUpdater{}).Run(context.Background(), env)

	if out.Kind != cycle.OutcomeFailed {
		t.Errorf("outcome = %s", out)
	}
	if fake.count(api.PathTaskClaim) != 0 {
		t.Error("an unstartable task must not be claimed")
	}
}

type recordingProfile struct {
	suffixes []string
	err      error
}

func (r *recordingProfile) AppendToLastName(_ context.Context, _, suffix string) error {
	r.suffixes = append(r.suffixes, suffix)
	return r.err
}

func TestTasks_EmojiNeedsNameChange(t *testing.T) {
	list := `{"status":0,"data":{"standard":[{"taskId":21,"name":"Tomato","type":"emoji","enable":true,"score":2000}]}}`

	fake, client := newFakeAPI(t)
	fake.reply(api.PathTaskList, list)
	env, _ := newTestEnv(client)

	profile := &recordingProfile{}
	NewTasksCycle(cycle.Config{}, profile).Run(context.Background(), env)
	if fake.count(api.PathTaskStart) != 0 || len(profile.suffixes) != 0 {
		t.Error("emoji task must be skipped when name change is disabled")
	}

	fake.reply(api.PathTaskStart, `{"status":0,"data":"ok"}`)
	fake.reply(api.PathTaskCheck, `{"status":0,"data":{}}`)
	fake.reply(api.PathTaskClaim, `{"status":0,"data":"ok"}`)
	profile.err = errors.New("no user client")

	out := NewTasksCycle(cycle.Config{Parameters: map[string]interface{}{"change_name": true}}, profile).Run(context.Background(), env)
	if out.Kind != cycle.OutcomeClaimed {
		t.Errorf("outcome = %s", out)
	}
	if len(profile.suffixes) != 1 || profile.suffixes[0] != "🍅" {
		t.Errorf("suffixes = %v", profile.suffixes)
	}
}
