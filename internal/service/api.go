package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/settlement"
)

func (s *service) router() chi.Router {
	r := chi.NewRouter()

	r.Get("/v1/summary", s.handleSummary)
	r.Get("/v1/projects", s.handleProjects)
	r.Route("/v1/projects/{project}", func(r chi.Router) {
		r.Get("/", s.handleProject)
		r.Get("/market", s.handleMarket)
		r.Get("/orders", s.handleOrders)
		r.Post("/session", s.handleOpenSession)
	})
	r.Route("/v1/sessions/{session}", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/selection", s.handleSelection)
		r.Post("/accept", s.handleAccept)
		r.Post("/accept-batch", s.handleAcceptBatch)
		r.Post("/reject", s.handleReject)
		r.Get("/export", s.handleExport)
	})

	return r
}

type apiError struct {
	Error string `json:"error"`
}

func (s *service) renderJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("failed to write response")
	}
}

// renderReviewErr maps the review error taxonomy onto actionable responses:
// invariant violations are client errors with the specific rule named, a
// declined ledger mutation is a bad gateway with the cause attached.
func (s *service) renderReviewErr(w http.ResponseWriter, err error) {
	switch err {
	case settlement.ErrEmptyReason:
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
	case settlement.ErrUnknownOrder:
		s.renderJSON(w, http.StatusNotFound, apiError{Error: err.Error()})
	case settlement.ErrNotFunded, settlement.ErrProofMissing, settlement.ErrDeadlineNotPassed,
		settlement.ErrStateUnknown, settlement.ErrAlreadyAccepted, settlement.ErrNothingSelected:
		s.renderJSON(w, http.StatusConflict, apiError{Error: err.Error()})
	default:
		s.renderJSON(w, http.StatusBadGateway, apiError{Error: err.Error()})
	}
}

// snapshot returns the current mirror state or reports 503 before warm-up.
func (s *service) snapshot(w http.ResponseWriter) (*ledger.Snapshot, bool) {
	snap := s.mirror.Current()
	if snap == nil {
		s.renderJSON(w, http.StatusServiceUnavailable, apiError{Error: "ledger mirror has no snapshot yet"})
		return nil, false
	}
	return snap, true
}

// projectParam resolves the {project} path segment: a 32-byte hex id directly,
// anything else as a human-readable slug via the contract.
func (s *service) projectParam(w http.ResponseWriter, r *http.Request) (ledger.ProjectID, bool) {
	raw := chi.URLParam(r, "project")
	if id, ok := ledger.ProjectIDFromHex(raw); ok {
		return id, true
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.network.RequestTimeout)
	defer cancel()
	p, err := s.network.Escrow.ProjectBySlug(&bind.CallOpts{Context: ctx}, raw)
	if err != nil || p.ProjectId == [32]byte{} {
		s.renderJSON(w, http.StatusNotFound, apiError{Error: "unknown project"})
		return ledger.ProjectID{}, false
	}
	return p.ProjectId, true
}

func (s *service) sessionParam(w http.ResponseWriter, r *http.Request) (*settlement.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "session"))
	if err != nil {
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid session id"})
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		s.renderJSON(w, http.StatusNotFound, apiError{Error: "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *service) parseExplorer(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	return url.Parse(raw)
}
