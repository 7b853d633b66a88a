// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Endpoint paths relative to the base URL.
const (
	PathLogin         = "/user/login"
	PathBalance       = "/user/balance"
	PathTickets       = "/user/tickets"
	PathFarmStart     = "/farm/start"
	PathFarmClaim     = "/farm/claim"
	PathDailyClaim    = "/daily/claim"
	PathGamePlay      = "/game/play"
	PathGameClaim     = "/game/claim"
	PathTaskList      = "/tasks/list"
	PathTaskStart     = "/tasks/start"
	PathTaskCheck     = "/tasks/check"
	PathTaskClaim     = "/tasks/claim"
	PathStarsTask     = "/tasks/classmateTask"
	PathStarsClaim    = "/tasks/classmateStars"
	PathComboTask     = "/tasks/puzzle"
	PathComboClaim    = "/tasks/puzzleClaim"
	PathWalletTask    = "/tasks/walletTask"
	PathWalletAdd     = "/tasks/address"
	PathWalletRemove  = "/tasks/deleteAddress"
	PathRaffleSpin    = "/spin/raffle"
	PathRankEvaluate  = "/rank/evaluate"
	PathRankCreate    = "/rank/create"
	PathRankData      = "/rank/data"
	PathRankUpgrade   = "/rank/upgrade"
	RaffleCategory    = "ticket_spin_1"
	GameNotStartedMsg = "game not start"
)

// Fixed game identifiers expected by the API.
const (
	FarmGameID  = "53b22103-c7ff-413d-bc63-20f6fb806a07"
	DailyGameID = "fa873d13-d831-4d6f-8aee-9cff7a1d0db1"
	DropGameID  = "59bcd12e-04e2-404c-a172-311a0084587d"
)

// decodeData turns a successful envelope into T. A decode failure degrades the result to retryable.
// Non-success envelopes are returned untouched since their data is often a bare string.
func decodeData[T any](r Result) (T, Result) {
	var out T
	if !r.Success() || len(r.Data) == 0 {
		return out, r
	}
	if err := json.Unmarshal(r.Data, &out); err != nil {
		r.Kind = KindRetryable
		r.Err = fmt.Errorf("decode data: %w", err)
	}

	return out, r
}

// Login exchanges Telegram init data for an access token.
func (c *Client) Login(ctx context.Context, initData, inviteCode string) (string, Result) {
	r := c.Call(ctx, PathLogin, map[string]any{
		"init_data":   initData,
		"invite_code": inviteCode,
	})
	data, r := decodeData[struct {
		AccessToken string `json:"access_token"`
	}](r)

	return data.AccessToken, r
}

func (c *Client) Balance(ctx context.Context) (Balance, Result) {
	return decodeData[Balance](c.Call(ctx, PathBalance, nil))
}

func (c *Client) StartFarm(ctx context.Context) (FarmStart, Result) {
	return decodeData[FarmStart](c.Call(ctx, PathFarmStart, map[string]any{"game_id": FarmGameID}))
}

func (c *Client) ClaimFarm(ctx context.Context) (FarmClaim, Result) {
	return decodeData[FarmClaim](c.Call(ctx, PathFarmClaim, map[string]any{"game_id": FarmGameID}))
}

func (c *Client) ClaimDaily(ctx context.Context) (DailyClaim, Result) {
	return decodeData[DailyClaim](c.Call(ctx, PathDailyClaim, map[string]any{"game_id": DailyGameID}))
}

func (c *Client) PlayGame(ctx context.Context) Result {
	return c.Call(ctx, PathGamePlay, map[string]any{"game_id": DropGameID})
}

func (c *Client) ClaimGame(ctx context.Context, points int) (GameClaim, Result) {
	return decodeData[GameClaim](c.Call(ctx, PathGameClaim, map[string]any{
		"game_id": DropGameID,
		"points":  points,
	}))
}

// Tasks lists every task, flattening both list-valued and grouped categories.
func (c *Client) Tasks(ctx context.Context, initData string) ([]Task, Result) {
	r := c.Call(ctx, PathTaskList, map[string]any{
		"language_code": "en",
		"init_data":     initData,
	})
	raw, r := decodeData[map[string]json.RawMessage](r)
	if !r.Success() {
		return nil, r
	}

	var tasks []Task
	for _, value := range raw {
		var list []Task
		if err := json.Unmarshal(value, &list); err == nil {
			tasks = append(tasks, list...)
			continue
		}
		var groups map[string][]Task
		if err := json.Unmarshal(value, &groups); err == nil {
			for _, group := range groups {
				tasks = append(tasks, group...)
			}
		}
	}

	return tasks, r
}

func (c *Client) StartTask(ctx context.Context, taskID int64, initData string) (TaskStart, Result) {
	r := c.Call(ctx, PathTaskStart, map[string]any{
		"task_id":   taskID,
		"init_data": initData,
	})
	if r.Kind != KindOK {
		return TaskStart{}, r
	}

	var out TaskStart
	var text string
	if err := json.Unmarshal(r.Data, &text); err == nil {
		out.Accepted = strings.EqualFold(text, "ok")
		return out, r
	}
	if len(r.Data) > 0 {
		_ = json.Unmarshal(r.Data, &out)
	}

	return out, r
}

func (c *Client) CheckTask(ctx context.Context, taskID int64, initData string) Result {
	return c.Call(ctx, PathTaskCheck, map[string]any{
		"task_id":   taskID,
		"init_data": initData,
	})
}

func (c *Client) ClaimTask(ctx context.Context, taskID int64) Result {
	return c.Call(ctx, PathTaskClaim, map[string]any{"task_id": taskID})
}

func (c *Client) StarsTask(ctx context.Context) (StarsTask, Result) {
	return decodeData[StarsTask](c.Call(ctx, PathStarsTask, nil))
}

func (c *Client) ClaimStars(ctx context.Context, taskID int64) (StarsClaim, Result) {
	return decodeData[StarsClaim](c.Call(ctx, PathStarsClaim, map[string]any{"task_id": taskID}))
}

func (c *Client) Tickets(ctx context.Context, initData string) (Tickets, Result) {
	return decodeData[Tickets](c.Call(ctx, PathTickets, map[string]any{
		"language_code": "en",
		"init_data":     initData,
	}))
}

func (c *Client) SpinRaffle(ctx context.Context) (RaffleSpin, Result) {
	return decodeData[RaffleSpin](c.Call(ctx, PathRaffleSpin, map[string]any{"category": RaffleCategory}))
}

func (c *Client) ComboTasks(ctx context.Context, initData string) ([]ComboTask, Result) {
	return decodeData[[]ComboTask](c.Call(ctx, PathComboTask, map[string]any{
		"language_code": "en",
		"init_data":     initData,
	}))
}

func (c *Client) ClaimCombo(ctx context.Context, taskID int64, code string) Result {
	return c.Call(ctx, PathComboClaim, map[string]any{
		"task_id": taskID,
		"code":    code,
	})
}

func (c *Client) EvaluateRank(ctx context.Context) Result {
	return c.Call(ctx, PathRankEvaluate, nil)
}

func (c *Client) CreateRank(ctx context.Context) Result {
	return c.Call(ctx, PathRankCreate, nil)
}

func (c *Client) RankData(ctx context.Context) (RankData, Result) {
	return decodeData[RankData](c.Call(ctx, PathRankData, nil))
}

func (c *Client) UpgradeRank(ctx context.Context, stars int) Result {
	return c.Call(ctx, PathRankUpgrade, map[string]any{"stars": stars})
}

func (c *Client) Wallet(ctx context.Context) (WalletInfo, Result) {
	return decodeData[WalletInfo](c.Call(ctx, PathWalletTask, nil))
}

func (c *Client) AddWallet(ctx context.Context, address string) Result {
	return c.Call(ctx, PathWalletAdd, map[string]any{"wallet_address": address})
}

func (c *Client) RemoveWallet(ctx context.Context) Result {
	return c.Call(ctx, PathWalletRemove, nil)
}
