package ledger

import (
	"context"
	"sync"
)

// Saver persists a ledger snapshot
type Saver interface {
	Save(ctx context.Context, snap Snapshot) error
}

// Syncer writes a ledger through a Saver one snapshot at a time. The
// snapshot is taken while holding the lock, so a save never overwrites
// state newer than its own.
type Syncer struct {
	mu     sync.Mutex
	ledger *Ledger
	saver  Saver
}

// NewSyncer creates a Syncer for l
func NewSyncer(l *Ledger, saver Saver) *Syncer {
	return &Syncer{ledger: l, saver: saver}
}

// Sync saves the current ledger state
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saver.Save(ctx, s.ledger.Snapshot())
}
