package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSaver blocks its first Save until release is closed
type gatedSaver struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
	last  Snapshot
}

func newGatedSaver() *gatedSaver {
	return &gatedSaver{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSaver) Save(_ context.Context, snap Snapshot) error {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	if first {
		close(g.entered)
		<-g.release
	}

	g.mu.Lock()
	g.last = snap
	g.mu.Unlock()
	return nil
}

func (g *gatedSaver) lastSaved() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func TestSyncer_LastSaveWins(t *testing.T) {
	l := New()
	saver := newGatedSaver()
	s := NewSyncer(l, saver)
	ctx := context.Background()

	l.AddExpense(d("10"), "Food", "lunch", time.Now(), "")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Sync(ctx))
	}()
	<-saver.entered

	l.AddExpense(d("20"), "Food", "dinner", time.Now(), "")
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Sync(ctx))
	}()

	close(saver.release)
	wg.Wait()

	require.Len(t, l.Expenses(), 2)
	assert.Len(t, saver.lastSaved().Expenses, 2)
}

func TestSyncer_PropagatesError(t *testing.T) {
	s := NewSyncer(New(), failingSaver{})
	assert.ErrorIs(t, s.Sync(context.Background()), ErrInvalid)
}

type failingSaver struct{}

func (failingSaver) Save(context.Context, Snapshot) error { return ErrInvalid }
