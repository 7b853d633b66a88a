package builtin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
	"github.com/rewardfarm/tomarket-harvester/pkg/common"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle"
	"github.com/rewardfarm/tomarket-harvester/pkg/state"
)

var testStart = time.Unix(1700000000, 0)

// fakeAPI routes POSTs by path and records every call.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]func(body map[string]any) string
	calls  []string
	bodies map[string][]map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *api.Client) {
	t.Helper()
	f := &fakeAPI{
		routes: make(map[string]func(map[string]any) string),
		bodies: make(map[string][]map[string]any),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.calls = append(f.calls, r.URL.Path)
		f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
		route, ok := f.routes[r.URL.Path]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = w.Write([]byte(`{"status":404,"message":"no route"}`))
			return
		}
		_, _ = w.Write([]byte(route(body)))
	}))
	t.Cleanup(srv.Close)

	return f, api.NewClient(api.Options{BaseURL: srv.URL, RetryPause: -1})
}

func (f *fakeAPI) on(path string, fn func(body map[string]any) string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = fn
}

func (f *fakeAPI) reply(path, body string) {
	f.on(path, func(map[string]any) string { return body })
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) lastBody(path string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	b := f.bodies[path]
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

func newTestEnv(client *api.Client) (*cycle.Env, *common.FakeClock) {
	clock := common.NewFakeClock(testStart)
	session := state.NewSession("tester")
	session.InitData = "user=1&hash=2"

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	return cycle.NewEnv(session, client, clock, logrus.NewEntry(logger)), clock
}

func localStamp(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}
