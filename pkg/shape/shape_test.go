// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package shape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func appServer(t *testing.T, bundle string) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><script type="module" src="/assets/index-abc123.js"></script></html>`))
	})
	mux.HandleFunc("/assets/index-abc123.js", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bundle))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL
}

func TestCheck_AllEndpointsPresent(t *testing.T) {
	url := appServer(t, "const x = '"+strings.Join(EndpointPatterns, "','")+"';")

	if err := NewChecker(url, 0).Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestCheck_MissingEndpointIsDrift(t *testing.T) {
	var kept []string
	for _, p := range EndpointPatterns {
		if p != "/tasks/puzzleClaim" && p != "/tasks/classmateStars" {
			kept = append(kept, p)
		}
	}
	url := appServer(t, strings.Join(kept, "\n"))

	err := NewChecker(url, 0).Check(context.Background())
	if !errors.Is(err, ErrDrift) {
		t.Fatalf("error = %v, expected ErrDrift", err)
	}
	if !strings.Contains(err.Error(), "/tasks/classmateStars") {
		t.Errorf("error should name the missing endpoint: %v", err)
	}
}

func TestCheck_UnreachableIsInconclusive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewChecker(srv.URL, 0).Check(context.Background())
	if err == nil || errors.Is(err, ErrDrift) {
		t.Errorf("error = %v, expected a non-drift error", err)
	}
}

func TestScriptPaths_LongestFirst(t *testing.T) {
	page := `<script src="/a/index.js"></script><script src="/assets/index-long.js"></script><script src="/a/index.js"></script>`

	got := ScriptPaths(page)
	if len(got) != 2 || got[0] != "/assets/index-long.js" {
		t.Errorf("ScriptPaths() = %v", got)
	}
}
