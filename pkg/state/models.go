// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package state

import (
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/lease"
)

// Session is the in-memory state of one account between sweeps.
type Session struct {
	Name          string
	Proxy         string
	WalletAddress string

	Credential lease.Credential
	InitData   string
	ReferralID string

	Cycles map[string]*CycleState
}

// NewSession creates an empty session. The credential starts expired.
func NewSession(name string) *Session {
	return &Session{
		Name:   name,
		Cycles: make(map[string]*CycleState),
	}
}

// Cycle returns the state of the given cycle, creating it on first use.
func (s *Session) Cycle(id string) *CycleState {
	if s.Cycles == nil {
		s.Cycles = make(map[string]*CycleState)
	}
	st, ok := s.Cycles[id]
	if !ok {
		st = &CycleState{}
		s.Cycles[id] = st
	}

	return st
}

// CredentialExpired reports whether a new credential must be acquired before the next call.
func (s *Session) CredentialExpired(now time.Time) bool {
	return s.Credential.Expired(now)
}

// InvalidateCredential forces re-acquisition on the next check.
func (s *Session) InvalidateCredential() {
	s.Credential = lease.Credential{}
}

// Snapshot copies the persistable part of the session.
func (s *Session) Snapshot() *Snapshot {
	snap := &Snapshot{Cycles: make(map[string]CycleState, len(s.Cycles))}
	for id, st := range s.Cycles {
		snap.Cycles[id] = *st
	}

	return snap
}

// Restore overwrites the cycle states with the snapshot content.
func (s *Session) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	for id, st := range snap.Cycles {
		cp := st
		s.Cycles[id] = &cp
	}
}

// CycleState is the per-category bookkeeping kept between sweeps.
type CycleState struct {
	NextCheck   time.Time  `json:"nextCheck"`
	LastOutcome string     `json:"lastOutcome,omitempty"`
	LastRunAt   time.Time  `json:"lastRunAt"`
	Guard       ClaimGuard `json:"guard"`
}

// DueAt reports whether the deadline has been reached.
func (c *CycleState) DueAt(now time.Time) bool {
	return !now.Before(c.NextCheck)
}

// ClaimGuard blocks a second claim until the remote side shows a different marker.
// A marker is whatever identifies the claimable window (a farm end time, a task status).
type ClaimGuard struct {
	Armed  bool  `json:"armed"`
	Marker int64 `json:"marker"`
}

// Allow reports whether a claim may be issued.
func (g *ClaimGuard) Allow() bool {
	return !g.Armed
}

// Arm records that a claim was issued while the remote side showed marker.
func (g *ClaimGuard) Arm(marker int64) {
	g.Armed = true
	g.Marker = marker
}

// Observe feeds a freshly read marker. A changed marker releases the guard.
func (g *ClaimGuard) Observe(marker int64) {
	if g.Armed && marker != g.Marker {
		g.Release()
	}
}

// Release clears the guard, used when the remote side definitively rejected the claim.
func (g *ClaimGuard) Release() {
	g.Armed = false
	g.Marker = 0
}

// Snapshot is what a Store persists per account.
type Snapshot struct {
	Cycles    map[string]CycleState `json:"cycles"`
	UpdatedAt time.Time             `json:"updatedAt"`
}
