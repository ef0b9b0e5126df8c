// Package previews keeps the in-memory bytes behind local photo previews.
// Every handle handed out by Create must be released exactly once.
package previews

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrAlreadyReleased = errors.New("preview handle already released")

type Preview struct {
	ContentType string
	Data        []byte
}

type Registry struct {
	mu    sync.RWMutex
	items map[string]Preview
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Preview)}
}

// Create stores data and returns a fresh handle.
func (r *Registry) Create(data []byte, contentType string) string {
	h := uuid.NewString()

	r.mu.Lock()
	r.items[h] = Preview{ContentType: contentType, Data: data}
	r.mu.Unlock()

	return h
}

func (r *Registry) Get(handle string) (Preview, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[handle]
	return p, ok
}

// Release drops the handle. A second release, or an unknown handle, yields
// ErrAlreadyReleased.
func (r *Registry) Release(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[handle]; !ok {
		return ErrAlreadyReleased
	}
	delete(r.items, handle)
	return nil
}

// Count returns the number of outstanding handles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
