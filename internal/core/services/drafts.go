// internal/core/services/drafts.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

type draftEntry struct {
	mu     sync.Mutex
	draft  *domain.Draft
	closed bool
}

// draftRegistry holds in-progress drafts. Operations on one draft are
// serialised through its entry lock.
type draftRegistry struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*draftEntry
}

func newDraftRegistry() *draftRegistry {
	return &draftRegistry{drafts: make(map[uuid.UUID]*draftEntry)}
}

func (r *draftRegistry) create() *domain.Draft {
	d := domain.NewDraft()
	r.mu.Lock()
	r.drafts[d.ID] = &draftEntry{draft: d}
	r.mu.Unlock()
	return d
}

// acquire locks and returns the draft's entry; the caller must unlock it
func (r *draftRegistry) acquire(id uuid.UUID) (*draftEntry, error) {
	r.mu.Lock()
	entry, ok := r.drafts[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}

	entry.mu.Lock()
	if entry.closed {
		entry.mu.Unlock()
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	return entry, nil
}

// drop removes a draft whose entry lock is held by the caller
func (r *draftRegistry) drop(entry *draftEntry) {
	entry.closed = true
	r.mu.Lock()
	delete(r.drafts, entry.draft.ID)
	r.mu.Unlock()
}

// prune drops drafts untouched since the cutoff
func (r *draftRegistry) prune(cutoff time.Time) int {
	r.mu.Lock()
	candidates := make([]*draftEntry, 0)
	for _, e := range r.drafts {
		candidates = append(candidates, e)
	}
	r.mu.Unlock()

	pruned := 0
	for _, e := range candidates {
		e.mu.Lock()
		if !e.closed && e.draft.UpdatedAt.Before(cutoff) {
			r.drop(e)
			pruned++
		}
		e.mu.Unlock()
	}
	return pruned
}

func (r *draftRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}
