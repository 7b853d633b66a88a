// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package puzzle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
)

const (
	DefaultPrimaryURL   = "https://raw.githubusercontent.com/yanpaing007/Tomarket/refs/heads/main/bot/config/combo.json"
	DefaultSecondaryURL = "https://raw.githubusercontent.com/zuydd/database/refs/heads/main/tomarket.json"

	// ExpireLayout is the layout of the expire field, always in UTC.
	ExpireLayout = "2006-01-02 03:04 PM"

	cacheTTL = 10 * time.Minute
)

// ErrNotFound means no source had an answer for the requested task.
var ErrNotFound = errors.New("puzzle answer not found")

// Payload is the combo answer sent to the claim endpoint.
type Payload struct {
	TaskID int64
	Code   string
}

// Document is the shape shared by the remote sources and the local override file.
type Document struct {
	Puzzle *struct {
		TaskID api.Number `json:"task_id"`
		Code   string     `json:"code"`
	} `json:"puzzle"`
	Expire  string `json:"expire"`
	Version string `json:"version"`
	Message string `json:"message"`
}

// Expired reports whether the document's expire stamp has passed. A missing stamp never expires.
func (d Document) Expired(now time.Time) bool {
	if d.Expire == "" {
		return false
	}
	exp, err := time.ParseInLocation(ExpireLayout, d.Expire, time.UTC)
	if err != nil {
		return true
	}

	return !now.Before(exp)
}

func (d Document) payload() (Payload, bool) {
	if d.Puzzle == nil || d.Puzzle.Code == "" {
		return Payload{}, false
	}

	return Payload{TaskID: int64(d.Puzzle.TaskID), Code: d.Puzzle.Code}, true
}

// Options configures a Lookup.
type Options struct {
	PrimaryURL   string
	SecondaryURL string
	LocalFile    string
	Timeout      time.Duration
	MaxRetries   uint64
	Now          func() time.Time
}

type cached struct {
	doc     Document
	fetched time.Time
}

// Lookup resolves combo answers from the primary source, the secondary source and a local file, in that order.
// It is shared by all accounts.
type Lookup struct {
	http       *resty.Client
	primary    string
	secondary  string
	localFile  string
	maxRetries uint64
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]cached
}

func NewLookup(opts Options) *Lookup {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Lookup{
		http:       resty.New().SetTimeout(opts.Timeout),
		primary:    opts.PrimaryURL,
		secondary:  opts.SecondaryURL,
		localFile:  opts.LocalFile,
		maxRetries: opts.MaxRetries,
		now:        opts.Now,
		cache:      make(map[string]cached),
	}
}

// Resolve returns the answer for taskID.
func (l *Lookup) Resolve(ctx context.Context, taskID int64) (Payload, error) {
	now := l.now()

	if l.primary != "" {
		doc, err := l.fetch(ctx, l.primary)
		switch {
		case err != nil:
			logrus.WithError(err).Warn("primary puzzle source unavailable")
		case doc.Expired(now):
			logrus.Info("primary puzzle has expired, trying the secondary source")
		default:
			if p, ok := doc.payload(); ok && p.TaskID == taskID {
				return p, nil
			}
		}
	}

	if l.secondary != "" {
		doc, err := l.fetch(ctx, l.secondary)
		if err != nil {
			logrus.WithError(err).Warn("secondary puzzle source unavailable")
		} else if p, ok := doc.payload(); ok && p.TaskID == taskID {
			return p, nil
		}
	}

	if l.localFile != "" {
		doc, err := ReadFile(l.localFile)
		if err != nil {
			logrus.WithError(err).Debug("local puzzle file unavailable")
		} else if p, ok := doc.payload(); ok && p.TaskID == taskID && !doc.Expired(now) {
			return p, nil
		}
	}

	return Payload{}, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
}

func (l *Lookup) fetch(ctx context.Context, url string) (Document, error) {
	l.mu.Lock()
	if c, ok := l.cache[url]; ok && l.now().Sub(c.fetched) < cacheTTL {
		l.mu.Unlock()
		return c.doc, nil
	}
	l.mu.Unlock()

	var doc Document
	operation := func() error {
		resp, err := l.http.R().SetContext(ctx).Get(url)
		if err != nil {
			return err
		}
		if resp.IsError() {
			if resp.StatusCode() == 404 {
				return backoff.Permanent(fmt.Errorf("http %d", resp.StatusCode()))
			}
			return fmt.Errorf("http %d", resp.StatusCode())
		}
		if err := json.Unmarshal(resp.Body(), &doc); err != nil {
			return backoff.Permanent(fmt.Errorf("decode puzzle document: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), l.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return Document{}, err
	}

	l.mu.Lock()
	l.cache[url] = cached{doc: doc, fetched: l.now()}
	l.mu.Unlock()

	return doc, nil
}

// RemoteVersion reads version and developer message from the primary source.
func (l *Lookup) RemoteVersion(ctx context.Context) (string, string, error) {
	if l.primary == "" {
		return "", "", errors.New("no primary puzzle source configured")
	}
	doc, err := l.fetch(ctx, l.primary)
	if err != nil {
		return "", "", err
	}

	return doc.Version, doc.Message, nil
}

// LocalVersion reads the version from the local override file.
func (l *Lookup) LocalVersion() (string, error) {
	if l.localFile == "" {
		return "", errors.New("no local puzzle file configured")
	}
	doc, err := ReadFile(l.localFile)
	if err != nil {
		return "", err
	}

	return doc.Version, nil
}

// ReadFile decodes a puzzle document from disk.
func ReadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return doc, nil
}
