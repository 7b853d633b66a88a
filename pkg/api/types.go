// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package api

// Balance is the /user/balance payload.
type Balance struct {
	AvailableBalance Number   `json:"available_balance"`
	PlayPasses       int      `json:"play_passes"`
	Farming          *Farming `json:"farming"`
}

type Farming struct {
	StartAt Number `json:"start_at"`
	EndAt   Number `json:"end_at"`
}

type FarmStart struct {
	StartAt Number `json:"start_at"`
	EndAt   Number `json:"end_at"`
}

type FarmClaim struct {
	ClaimThisTime Number `json:"claim_this_time"`
}

type DailyClaim struct {
	TodayGame   Number `json:"today_game"`
	TodayPoints Number `json:"today_points"`
}

type GameClaim struct {
	Points Number `json:"points"`
}

// Task is one entry of the task catalogue.
type Task struct {
	TaskID     int64  `json:"taskId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Enable     bool   `json:"enable"`
	Invisible  bool   `json:"invisible"`
	Status     int    `json:"status"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	WaitSecond int    `json:"waitSecond"`
	Score      Number `json:"score"`
}

// TaskStart is the /tasks/start payload, either the literal "ok" or an object with status.
type TaskStart struct {
	Accepted bool `json:"-"`
	Status   int  `json:"status"`
}

// Startable reports whether the task moved into a checkable state.
func (t TaskStart) Startable() bool {
	return t.Accepted || t.Status == 1 || t.Status == 2
}

type StarsTask struct {
	TaskID  int64  `json:"taskId"`
	Status  int    `json:"status"`
	EndTime string `json:"endTime"`
}

type StarsClaim struct {
	Stars Number `json:"stars"`
}

type Tickets struct {
	TicketSpin1 int `json:"ticket_spin_1"`
}

type RaffleSpin struct {
	Results []RaffleResult `json:"results"`
}

type RaffleResult struct {
	Amount Number `json:"amount"`
	Type   string `json:"type"`
}

type ComboTask struct {
	TaskID  int64  `json:"taskId"`
	Status  int    `json:"status"`
	EndTime string `json:"endTime"`
	Star    Number `json:"star"`
	Games   Number `json:"games"`
	Score   Number `json:"score"`
}

type RankData struct {
	UnusedStars Number `json:"unusedStars"`
}

type WalletInfo struct {
	WalletAddress string `json:"walletAddress"`
}
