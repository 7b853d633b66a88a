// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Notifier tells the operator about events that need a human: stopped accounts, API drift.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// Telegram sends messages to one chat through a bot.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	mu     sync.Mutex
}

// NewTelegram connects the bot, retrying transient failures against api.telegram.org.
func NewTelegram(ctx context.Context, token string, chatID int64) (*Telegram, error) {
	return newTelegram(ctx, token, tgbotapi.APIEndpoint, chatID)
}

func newTelegram(ctx context.Context, token, endpoint string, chatID int64) (*Telegram, error) {
	var bot *tgbotapi.BotAPI

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	err := backoff.Retry(func() error {
		var err error
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
		if err != nil {
			logrus.WithError(err).Warn("telegram bot connection failed, retrying")
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, 3), ctx))
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}

// Recorder keeps messages in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []string
}

func (r *Recorder) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, message)

	return nil
}

// Snapshot returns a copy of the recorded messages.
func (r *Recorder) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.Messages))
	copy(out, r.Messages)

	return out
}
