package settlement

import (
	"net/url"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/proof"
)

// Session is one administrator's working context over a single project's
// pending proofs: the admin-chosen evidence source and the explicit selection
// set. Both are scoped to the project and die with the session, so nothing
// leaks across project contexts. The selection mutates only through the
// explicit operations below, never as a side effect of a refresh.
type Session struct {
	ID       uuid.UUID
	Project  ledger.ProjectID
	Explorer *url.URL

	mu        sync.Mutex
	selection map[int64]struct{}
}

func NewSession(project ledger.ProjectID, explorer *url.URL) *Session {
	return &Session{
		ID:        uuid.New(),
		Project:   project,
		Explorer:  explorer,
		selection: make(map[int64]struct{}),
	}
}

func (s *Session) Select(orderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection[orderID] = struct{}{}
}

func (s *Session) Deselect(orderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selection, orderID)
}

// SelectAll replaces the selection with the given reviewable set.
func (s *Session) SelectAll(orderIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[int64]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		s.selection[id] = struct{}{}
	}
}

// SelectApprovedOnly replaces the selection with the subset of orderIDs whose
// verdict is APPROVED. This is the guard rail that keeps bulk accept away from
// NOT_APPROVED and MANUAL_REVIEW proofs.
func (s *Session) SelectApprovedOnly(orderIDs []int64, verdicts map[int64]proof.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[int64]struct{})
	for _, id := range orderIDs {
		if v, ok := verdicts[id]; ok && v.Status == proof.StatusApproved {
			s.selection[id] = struct{}{}
		}
	}
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[int64]struct{})
}

// Selected returns the selection in ascending order-id order.
func (s *Session) Selected() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
