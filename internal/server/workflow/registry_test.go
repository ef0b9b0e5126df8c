package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/productkeeper/internal/common"
)

func TestRegistry_OpenGetRemove(t *testing.T) {
	f := newFixture(newMemStore("tvh-4521/tvh-4521-1.jpg"), newMemRecords())
	r := NewRegistry(f.deps)

	s, err := r.Open(context.Background(), "alice", " 4521 ")
	require.NoError(t, err)
	assert.Equal(t, ProductID("4521"), s.Product())
	assert.Len(t, s.View().Photos, 1, "opened sessions are hydrated")

	got, err := r.Get("alice", s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Get("bob", s.ID())
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	assert.ErrorIs(t, r.Remove("bob", s.ID()), common.ErrSessionNotFound)
	require.NoError(t, r.Remove("alice", s.ID()))
	assert.True(t, s.Closed())

	_, err = r.Get("alice", s.ID())
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
}

func TestRegistry_OpenRejectsBadProductID(t *testing.T) {
	f := newFixture(newMemStore(), newMemRecords())
	r := NewRegistry(f.deps)

	_, err := r.Open(context.Background(), "alice", "TVH-12")

	assert.ErrorIs(t, err, common.ErrInvalidProductID)
	assert.Zero(t, f.store.callCount())
	assert.Zero(t, r.Len())
}

func TestRegistry_CloseAll(t *testing.T) {
	f := newFixture(newMemStore(), newMemRecords())
	r := NewRegistry(f.deps)

	a, err := r.Open(context.Background(), "alice", "1")
	require.NoError(t, err)
	b, err := r.Open(context.Background(), "bob", "2")
	require.NoError(t, err)
	_, err = a.AddPhotos([]Upload{jpeg("a.jpg")})
	require.NoError(t, err)

	r.CloseAll()

	assert.Zero(t, r.Len())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Zero(t, f.previews.Count())
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistry_ReapClosesAbandonedSessions(t *testing.T) {
	f := newFixture(newMemStore(), newMemRecords())
	r := NewRegistry(f.deps)
	c := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	r.now = c.Now

	var open []*Session
	for _, id := range []string{"1", "2", "3"} {
		s, err := r.Open(context.Background(), "alice", id)
		require.NoError(t, err)
		_, err = s.AddPhotos([]Upload{jpeg("a.jpg")})
		require.NoError(t, err)
		open = append(open, s)
	}
	require.Equal(t, 3, f.previews.Count())

	c.advance(20 * time.Minute)
	_, err := r.Get("alice", open[0].ID())
	require.NoError(t, err)

	c.advance(15 * time.Minute)
	assert.Equal(t, 2, r.Reap(context.Background(), 30*time.Minute))

	assert.Equal(t, 1, r.Len())
	assert.False(t, open[0].Closed(), "touched recently")
	assert.True(t, open[1].Closed())
	assert.True(t, open[2].Closed())
	assert.Equal(t, 1, f.previews.Count())

	_, err = r.Get("alice", open[1].ID())
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	assert.Zero(t, r.Reap(context.Background(), 30*time.Minute), "nothing left to reap")
}

func TestRegistry_ReapKeepsSessionsWithCallInFlight(t *testing.T) {
	f := newFixture(newMemStore(), newMemRecords())
	f.enhancer.started = make(chan struct{})
	f.enhancer.release = make(chan struct{})
	f.enhancer.out = "better"
	r := NewRegistry(f.deps)
	c := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	r.now = c.Now

	s, err := r.Open(context.Background(), "alice", "1")
	require.NoError(t, err)
	require.NoError(t, s.SetDescription("draft"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Enhance(context.Background())
		done <- err
	}()
	<-f.enhancer.started

	c.advance(time.Hour)
	assert.Zero(t, r.Reap(context.Background(), time.Minute))
	assert.False(t, s.Closed())

	close(f.enhancer.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, r.Reap(context.Background(), time.Minute))
	assert.True(t, s.Closed())
}

func TestRegistry_RunReaperStopsOnCancel(t *testing.T) {
	f := newFixture(newMemStore(), newMemRecords())
	r := NewRegistry(f.deps)

	_, err := r.Open(context.Background(), "alice", "1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunReaper(ctx, time.Nanosecond, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
