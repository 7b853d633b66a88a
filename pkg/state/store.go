// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package state

import (
	"context"
	"sync"
	"time"
)

// Store persists cycle deadlines so a restart does not replay claims.
type Store interface {
	Load(ctx context.Context, account string) (*Snapshot, error)
	Save(ctx context.Context, account string, snap *Snapshot) error
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, account string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.items[account]
	if !ok {
		return &Snapshot{Cycles: make(map[string]CycleState)}, nil
	}

	cp := Snapshot{Cycles: make(map[string]CycleState, len(snap.Cycles)), UpdatedAt: snap.UpdatedAt}
	for id, st := range snap.Cycles {
		cp.Cycles[id] = st
	}

	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, account string, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := Snapshot{Cycles: make(map[string]CycleState, len(snap.Cycles)), UpdatedAt: time.Now()}
	for id, st := range snap.Cycles {
		cp.Cycles[id] = st
	}
	m.items[account] = cp

	return nil
}
