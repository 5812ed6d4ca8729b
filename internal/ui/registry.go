package ui

import (
	"sync"
	"time"

	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
)

// Registry maps visitor ids to Controllers.
type Registry struct {
	fetcher domain.SuggestionFetcher
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// NewRegistry creates an empty registry whose controllers share fetcher.
func NewRegistry(fetcher domain.SuggestionFetcher) *Registry {
	return &Registry{
		fetcher: fetcher,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Controller returns the visitor's controller, creating it on first use,
// and marks the visitor as seen.
func (r *Registry) Controller(visitorID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[visitorID]
	if !ok {
		e = &entry{ctrl: NewController(r.fetcher)}
		r.entries[visitorID] = e
	}
	e.lastSeen = r.now()
	return e.ctrl
}

// SweepIdle drops controllers not seen since before cutoff. Controllers with
// a fetch in flight are kept. It returns the number removed.
func (r *Registry) SweepIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if !e.lastSeen.Before(cutoff) {
			continue
		}
		if e.ctrl.Snapshot().Loading() {
			continue
		}
		delete(r.entries, id)
		removed++
	}
	return removed
}

// Len returns the number of tracked visitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
