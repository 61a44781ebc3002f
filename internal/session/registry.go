package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Factory builds the controller for a new session id.
type Factory func(id string) *Controller

// Registry tracks the live controller of every browser session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	idle     time.Duration
	logger   logrus.FieldLogger

	// OnEvict, when set, is called with the id of every session removed.
	OnEvict func(id string)

	now func() time.Time
}

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

func NewRegistry(factory Factory, idle time.Duration, logger logrus.FieldLogger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		factory:  factory,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the controller for id, if the session is still live.
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}

	e.lastSeen = r.now()
	return e.ctrl, true
}

func (r *Registry) GetOrCreate(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		return e.ctrl
	}

	ctrl := r.factory(id)
	r.sessions[id] = &entry{ctrl: ctrl, lastSeen: r.now()}
	return ctrl
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.evict(id, e.ctrl)
	}
}

func (r *Registry) evict(id string, ctrl *Controller) {
	ctrl.Close()
	if r.OnEvict != nil {
		r.OnEvict(id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the registry's idle timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	expired := make(map[string]*Controller)
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			expired[id] = e.ctrl
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for id, ctrl := range expired {
		r.evict(id, ctrl)
	}

	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.WithFields(logrus.Fields{
					"swept": n,
					"live":  r.Len(),
				}).Debug("swept idle sessions")
			}
		}
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for id, e := range sessions {
		r.evict(id, e.ctrl)
	}
}
