package service

import (
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/settlement"
)

// sessionRegistry holds at most one review session per project. Opening a new
// session for a project replaces the previous one, so selection and evidence
// source never leak between project contexts.
type sessionRegistry struct {
	defaultExplorer *url.URL

	mu        sync.Mutex
	byID      map[uuid.UUID]*settlement.Session
	byProject map[ledger.ProjectID]uuid.UUID
}

func newSessionRegistry(defaultExplorer *url.URL) *sessionRegistry {
	return &sessionRegistry{
		defaultExplorer: defaultExplorer,
		byID:            make(map[uuid.UUID]*settlement.Session),
		byProject:       make(map[ledger.ProjectID]uuid.UUID),
	}
}

func (r *sessionRegistry) Open(project ledger.ProjectID, explorer *url.URL) *settlement.Session {
	if explorer == nil {
		explorer = r.defaultExplorer
	}
	sess := settlement.NewSession(project, explorer)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byProject[project]; ok {
		delete(r.byID, prev)
	}
	r.byID[sess.ID] = sess
	r.byProject[project] = sess.ID
	return sess
}

func (r *sessionRegistry) Get(id uuid.UUID) (*settlement.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.byID[id]
	return sess, ok
}

// ExplorerFor returns the evidence source of the project's open session, or
// the configured default when no session exists.
func (r *sessionRegistry) ExplorerFor(project ledger.ProjectID) *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byProject[project]; ok {
		return r.byID[id].Explorer
	}
	return r.defaultExplorer
}
