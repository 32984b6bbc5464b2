// Package memory provides an in-memory Repository used by tests and the
// "memory" database driver for local development.
package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

type Repo struct {
	mu        sync.RWMutex
	apps      map[domain.ApplicationID]*domain.Application
	docs      map[domain.ApplicationID][]*domain.Document
	decisions map[domain.ApplicationID][]*domain.Decision
}

func NewRepo() *Repo {
	return &Repo{
		apps:      make(map[domain.ApplicationID]*domain.Application),
		docs:      make(map[domain.ApplicationID][]*domain.Document),
		decisions: make(map[domain.ApplicationID][]*domain.Decision),
	}
}

func (r *Repo) SaveApplication(_ context.Context, a *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apps[a.ID]; exists {
		return domain.ErrDuplicateID
	}
	cp := *a
	r.apps[a.ID] = &cp
	return nil
}

func (r *Repo) GetApplication(_ context.Context, id domain.ApplicationID) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *Repo) SaveDocument(_ context.Context, d *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[d.ApplicationID]; !ok {
		return domain.ErrNotFound
	}
	cp := *d
	r.docs[d.ApplicationID] = append(r.docs[d.ApplicationID], &cp)
	return nil
}

func (r *Repo) ListDocuments(_ context.Context, id domain.ApplicationID) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.docs[id]
	out := make([]*domain.Document, 0, len(src))
	for _, d := range src {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *Repo) AppendDecision(_ context.Context, d *domain.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[d.ApplicationID]; !ok {
		return domain.ErrNotFound
	}
	cp := *d
	r.decisions[d.ApplicationID] = append(r.decisions[d.ApplicationID], &cp)
	return nil
}

func (r *Repo) ListDecisions(_ context.Context, id domain.ApplicationID) ([]*domain.Decision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.decisions[id]
	out := make([]*domain.Decision, 0, len(src))
	for _, d := range src {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *Repo) LatestDecision(_ context.Context, id domain.ApplicationID) (*domain.Decision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.decisions[id]
	if len(src) == 0 {
		return nil, nil
	}
	cp := *src[len(src)-1]
	return &cp, nil
}
