package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/productkeeper/internal/common"
)

// Registry holds the open sessions, one per mounted form, each owned by the
// user that opened it.
type Registry struct {
	deps Deps
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	seen    time.Time
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Open validates rawProductID, hydrates a new session and registers it.
func (r *Registry) Open(ctx context.Context, owner, rawProductID string) (*Session, error) {
	id, err := ParseProductID(rawProductID)
	if err != nil {
		return nil, err
	}

	s := NewSession(owner, id, r.deps)
	s.Hydrate(ctx)

	r.mu.Lock()
	r.sessions[s.ID()] = &entry{session: s, seen: r.now()}
	r.mu.Unlock()

	r.deps.Logger.Info(ctx, "session opened", "session_id", s.ID(), "product_id", string(id), "user_id", owner)
	return s, nil
}

// Get returns the session id owned by owner and marks it as in use.
// Sessions of other users are reported as missing.
func (r *Registry) Get(owner, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || e.session.Owner() != owner {
		return nil, common.ErrSessionNotFound
	}
	e.seen = r.now()
	return e.session, nil
}

// Remove closes the session and forgets it.
func (r *Registry) Remove(owner, id string) error {
	s, err := r.Get(owner, id)
	if err != nil {
		return err
	}
	s.Close()

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Reap closes and forgets the sessions nobody touched for longer than idle,
// which is how a form abandoned without an explicit close is torn down.
// Sessions with a remote call in flight are kept until it returns.
func (r *Registry) Reap(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var expired []*Session
	for id, e := range r.sessions {
		if e.seen.After(cutoff) || e.session.inFlight() {
			continue
		}
		expired = append(expired, e.session)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		r.deps.Logger.Info(ctx, "idle session reaped", "session_id", s.ID(), "user_id", s.Owner())
	}
	return len(expired)
}

// RunReaper calls Reap every interval until ctx is done.
func (r *Registry) RunReaper(ctx context.Context, idle, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Reap(ctx, idle)
		}
	}
}

// CloseAll releases every session; used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.sessions {
		e.session.Close()
		delete(r.sessions, id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
