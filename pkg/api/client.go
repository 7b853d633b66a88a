// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api-web.tomarket.ai/tomarket-game/v1"
	// RetryPause is the wait applied before a retryable result is returned.
	RetryPause = time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	UserAgent         string
	Proxy             string
	Timeout           time.Duration
	RequestsPerSecond float64
	RetryPause        time.Duration
	Logger            *logrus.Entry
}

// Client performs JSON POSTs against the game API for one account.
type Client struct {
	http           *resty.Client
	limiter        *rate.Limiter
	retryPause     time.Duration
	log            *logrus.Entry
	onUnauthorized func()
}

// NewClient builds a client. A zero RetryPause means RetryPause; a negative one disables the wait.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryPause == 0 {
		opts.RetryPause = RetryPause
	}
	if opts.RetryPause < 0 {
		opts.RetryPause = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = RandomAndroidUserAgent()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeaders(defaultHeaders()).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.Proxy != "" {
		httpClient.SetProxy(opts.Proxy)
	}

	return &Client{
		http:       httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		retryPause: opts.RetryPause,
		log:        opts.Logger,
	}
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Content-Type":    "application/json",
		"Origin":          "https://mini-app.tomarket.ai",
		"Referer":         "https://mini-app.tomarket.ai/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-site",
	}
}

// SetToken installs the access token sent on every call.
func (c *Client) SetToken(token string) {
	if token == "" {
		c.http.Header.Del("Authorization")
		return
	}
	c.http.SetHeader("Authorization", token)
}

// OnUnauthorized registers a hook fired on every 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Call POSTs body to path (relative to the base URL, or absolute) and classifies the response.
func (c *Client) Call(ctx context.Context, path string, body any) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Kind: KindFatal, Status: NoStatus, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	} else {
		req.SetBody(map[string]any{})
	}

	resp, err := req.Post(path)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Kind: KindFatal, Status: NoStatus, Err: ctx.Err()}
		}
		c.log.WithError(err).Warnf("request to %s failed", path)
		return c.retryable(ctx, 0, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return c.unauthorized(path, resp.StatusCode(), NoStatus)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		c.log.Warnf("undecodable response from %s (http %d)", path, resp.StatusCode())
		return c.retryable(ctx, resp.StatusCode(), fmt.Errorf("decode response: %w", err))
	}

	result := Result{
		Kind:       KindOK,
		HTTPStatus: resp.StatusCode(),
		Status:     NoStatus,
		Message:    env.Message,
		Data:       env.Data,
	}
	if env.Status != nil {
		result.Status = *env.Status
	}
	if result.Status == http.StatusUnauthorized {
		return c.unauthorized(path, resp.StatusCode(), result.Status)
	}

	return result
}

// unauthorized covers both an HTTP 401 and a 401 status inside the envelope.
func (c *Client) unauthorized(path string, httpStatus, status int) Result {
	c.log.Warnf("request to %s was unauthorized", path)
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	return Result{Kind: KindUnauthorized, HTTPStatus: httpStatus, Status: status}
}

func (c *Client) retryable(ctx context.Context, httpStatus int, err error) Result {
	if c.retryPause > 0 {
		timer := time.NewTimer(c.retryPause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}

	return Result{Kind: KindRetryable, HTTPStatus: httpStatus, Status: NoStatus, Err: err}
}

// ProxyIP returns the exit address seen by an IP echo service.
func (c *Client) ProxyIP(ctx context.Context, echoURL string) (string, error) {
	var out struct {
		Origin string `json:"origin"`
	}

	resp, err := c.http.R().SetContext(ctx).Get(echoURL)
	if err != nil {
		return "", fmt.Errorf("proxy check: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("proxy check: http %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("proxy check: %w", err)
	}
	if out.Origin == "" {
		return "", errors.New("proxy check: empty origin")
	}

	return out.Origin, nil
}
