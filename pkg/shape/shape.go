// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package shape

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultAppURL = "https://mini-app.tomarket.ai/"

// ErrDrift means the web app no longer references every endpoint this client relies on.
var ErrDrift = errors.New("remote api shape drifted")

// EndpointPatterns must all appear in the web app bundle.
var EndpointPatterns = []string{
	`https://api-web.tomarket.ai/tomarket-game/v1`,
	`/user/login`,
	`/user/balance`,
	`/daily/claim`,
	`/tasks/list`,
	`/tasks/start`,
	`/tasks/check`,
	`/tasks/claim`,
	`/user/tickets`,
	`/spin/raffle`,
	`/tasks/puzzle`,
	`/tasks/puzzleClaim`,
	`/tasks/classmateTask`,
	`/tasks/classmateStars`,
}

var scriptPattern = regexp.MustCompile(`src="(/.*?/index.*?\.js)"`)

// Checker compares the live web app bundle against EndpointPatterns.
type Checker struct {
	http     *resty.Client
	appURL   string
	patterns []*regexp.Regexp
}

func NewChecker(appURL string, timeout time.Duration) *Checker {
	if appURL == "" {
		appURL = DefaultAppURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	patterns := make([]*regexp.Regexp, 0, len(EndpointPatterns))
	for _, p := range EndpointPatterns {
		patterns = append(patterns, regexp.MustCompile(p))
	}

	return &Checker{
		http:     resty.New().SetTimeout(timeout),
		appURL:   strings.TrimRight(appURL, "/"),
		patterns: patterns,
	}
}

// Check returns ErrDrift when the bundle lacks an endpoint. Any other error means the
// check was inconclusive, e.g. the app page could not be fetched.
func (c *Checker) Check(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(c.appURL + "/")
	if err != nil {
		return fmt.Errorf("fetch app page: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch app page: http %d", resp.StatusCode())
	}

	scripts := ScriptPaths(resp.String())
	if len(scripts) == 0 {
		return fmt.Errorf("%w: no index script found in app page", ErrDrift)
	}

	bundle, err := c.http.R().SetContext(ctx).Get(c.appURL + scripts[0])
	if err != nil {
		return fmt.Errorf("fetch bundle: %w", err)
	}
	if bundle.IsError() {
		return fmt.Errorf("fetch bundle: http %d", bundle.StatusCode())
	}

	if missing := c.Missing(bundle.String()); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrDrift, strings.Join(missing, ", "))
	}

	return nil
}

// Missing lists the endpoint patterns absent from content.
func (c *Checker) Missing(content string) []string {
	var missing []string
	for i, p := range c.patterns {
		if !p.MatchString(content) {
			missing = append(missing, EndpointPatterns[i])
		}
	}

	return missing
}

// ScriptPaths extracts index script paths, longest first.
func ScriptPaths(page string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range scriptPattern.FindAllStringSubmatch(page, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })

	return out
}
