package service

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/premarket-labs/otc-coordinator-svc/internal/classifier"
	"github.com/premarket-labs/otc-coordinator-svc/internal/export"
	"github.com/premarket-labs/otc-coordinator-svc/internal/gobind"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/market"
	"github.com/premarket-labs/otc-coordinator-svc/internal/proof"
)

func (s *service) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	perProject := make(map[ledger.ProjectID]market.Snapshot, len(snap.Projects))
	for id := range snap.Projects {
		perProject[id] = market.Aggregate(snap.ProjectOrders(id))
	}

	var params *paramsView
	if snap.Params != nil {
		params = &paramsView{
			Paused:             snap.Params.Paused,
			PointsAsset:        snap.Params.PointsAsset.Hex(),
			SettlementFeeBps:   snap.Params.SettlementFeeBps,
			CancellationFeeBps: snap.Params.CancellationFeeBps,
		}
		if snap.Params.MinOrderValue != nil {
			params.MinOrderValue = snap.Params.MinOrderValue.String()
		}
	}

	s.renderJSON(w, http.StatusOK, struct {
		TakenAt time.Time      `json:"taken_at"`
		Partial bool           `json:"partial"`
		Params  *paramsView    `json:"params"`
		Summary market.Summary `json:"summary"`
	}{
		TakenAt: snap.TakenAt,
		Partial: len(snap.Missing) > 0,
		Params:  params,
		Summary: market.Summarize(perProject),
	})
}

type paramsView struct {
	Paused             bool   `json:"paused"`
	PointsAsset        string `json:"points_asset"`
	SettlementFeeBps   int64  `json:"settlement_fee_bps"`
	CancellationFeeBps int64  `json:"cancellation_fee_bps"`
	MinOrderValue      string `json:"min_order_value,omitempty"`
}

type projectView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	IsPoints     bool             `json:"is_points"`
	Active       bool             `json:"active"`
	TGEActivated bool             `json:"tge_activated"`
	Deadline     *time.Time       `json:"settlement_deadline,omitempty"`
	Metadata     *projectMetaView `json:"metadata,omitempty"`
}

type projectMetaView struct {
	Description string `json:"description,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Image       string `json:"image,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *service) projectView(p ledger.Project, state *ledger.SettlementState) projectView {
	view := projectView{
		ID:       p.ID.Hex(),
		Name:     p.Name,
		IsPoints: p.IsPoints,
		Active:   p.Active,
	}
	if state != nil {
		view.TGEActivated = state.TGEActivated
		deadline := state.Deadline
		view.Deadline = &deadline
	}
	return view
}

func (s *service) handleProjects(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	views := make([]projectView, 0, len(snap.Projects))
	for id, p := range snap.Projects {
		views = append(views, s.projectView(p, snap.States[id]))
	}
	s.renderJSON(w, http.StatusOK, views)
}

func (s *service) handleProject(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	id, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	p, ok := snap.Projects[id]
	if !ok {
		s.renderJSON(w, http.StatusNotFound, apiError{Error: "project not found"})
		return
	}

	view := s.projectView(p, snap.States[id])
	if p.MetadataURI != "" {
		rec, err := s.meta.Fetch(r.Context(), p.MetadataURI)
		if err != nil {
			// metadata is decoration; degrade to an explicit marker
			s.log.WithError(err).WithField("project", id.Hex()).Warn("failed to fetch project metadata")
			view.Metadata = &projectMetaView{Error: "could not load"}
		} else {
			view.Metadata = &projectMetaView{
				Description: rec.Description,
				ExternalURL: rec.ExternalURL,
				Image:       rec.Image,
			}
		}
	}
	s.renderJSON(w, http.StatusOK, view)
}

func (s *service) handleMarket(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	id, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	s.renderJSON(w, http.StatusOK, market.Aggregate(snap.ProjectOrders(id)))
}

type orderView struct {
	ID      int64              `json:"id"`
	Status  string             `json:"status"`
	Bucket  classifier.Bucket  `json:"bucket"`
	Side    string             `json:"side"`
	Price   string             `json:"price"`
	Amount  string             `json:"amount"`
	Actions classifier.Actions `json:"actions"`
}

func (s *service) handleOrders(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	id, ok := s.projectParam(w, r)
	if !ok {
		return
	}

	var caller common.Address
	if raw := r.URL.Query().Get("caller"); raw != "" {
		if !common.IsHexAddress(raw) {
			s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid caller address"})
			return
		}
		caller = common.HexToAddress(raw)
	}

	paused := snap.Params != nil && snap.Params.Paused
	now := time.Now()

	orders := snap.ProjectOrders(id)
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		var pr *ledger.Proof
		if p, ok := snap.Proofs[o.ID]; ok {
			pr = &p
		}
		bucket, actions := classifier.Classify(classifier.Input{
			Order:     o,
			Project:   snap.Projects[id],
			State:     snap.States[id],
			Proof:     pr,
			Caller:    caller,
			Now:       now,
			Paused:    paused,
			Allowance: s.allowanceOf(r.Context(), snap, o, pr, caller),
		})
		side := "buy"
		if o.IsSell {
			side = "sell"
		}
		views = append(views, orderView{
			ID:      o.ID,
			Status:  o.Status.String(),
			Bucket:  bucket,
			Side:    side,
			Price:   market.Price(o).String(),
			Amount:  market.Amount(o).String(),
			Actions: actions,
		})
	}
	s.renderJSON(w, http.StatusOK, views)
}

// allowanceOf reads the caller's spendable settlement-asset amount toward the
// escrow, only for orders where the token delivery path actually consults it.
// An allowance above the wallet balance cannot be pulled, so the smaller of
// the two is what classification should see. Returns nil on any failure;
// classification then fails safe to "cannot settle".
func (s *service) allowanceOf(ctx context.Context, snap *ledger.Snapshot, o ledger.Order, pr *ledger.Proof, caller common.Address) *big.Int {
	if caller != o.Seller || o.Status != ledger.StatusFunded {
		return nil
	}
	state := snap.States[o.Project]
	if state == nil || !state.TGEActivated {
		return nil
	}
	if snap.Projects[o.Project].IsPoints || (pr != nil && pr.Reference != "") {
		return nil
	}

	erc20, err := gobind.NewERC20Caller(state.Asset, s.network.EthClient)
	if err != nil {
		s.log.WithError(err).WithField("asset", state.Asset.Hex()).Warn("failed to bind settlement asset")
		return nil
	}
	child, cancel := context.WithTimeout(ctx, s.network.RequestTimeout)
	defer cancel()
	opts := &bind.CallOpts{Context: child}
	allowance, err := erc20.Allowance(opts, caller, s.network.ContractAddress)
	if err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Debug("failed to read settlement allowance")
		return nil
	}
	balance, err := erc20.BalanceOf(opts, caller)
	if err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Debug("failed to read settlement asset balance")
		return nil
	}
	if balance.Cmp(allowance) < 0 {
		return balance
	}
	return allowance
}

func (s *service) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Explorer string `json:"explorer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}
	explorer, err := s.parseExplorer(req.Explorer)
	if err != nil {
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid explorer url"})
		return
	}

	sess := s.sessions.Open(id, explorer)
	s.renderJSON(w, http.StatusCreated, struct {
		ID       string `json:"id"`
		Project  string `json:"project"`
		Explorer string `json:"explorer"`
	}{
		ID:       sess.ID.String(),
		Project:  sess.Project.Hex(),
		Explorer: sess.Explorer.String(),
	})
}

func (s *service) handleSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	sess, ok := s.sessionParam(w, r)
	if !ok {
		return
	}

	verdicts := s.currentVerdicts()
	pending := s.coordinator.Pending(snap, sess.Project)

	type pendingView struct {
		OrderID int64          `json:"order_id"`
		Verdict *proof.Verdict `json:"verdict,omitempty"`
	}
	views := make([]pendingView, 0, len(pending))
	for _, id := range pending {
		pv := pendingView{OrderID: id}
		if v, ok := verdicts[id]; ok {
			verdict := v
			pv.Verdict = &verdict
		}
		views = append(views, pv)
	}

	s.renderJSON(w, http.StatusOK, struct {
		ID        string        `json:"id"`
		Project   string        `json:"project"`
		Explorer  string        `json:"explorer"`
		Selection []int64       `json:"selection"`
		Pending   []pendingView `json:"pending"`
	}{
		ID:        sess.ID.String(),
		Project:   sess.Project.Hex(),
		Explorer:  sess.Explorer.String(),
		Selection: sess.Selected(),
		Pending:   views,
	})
}

func (s *service) handleSelection(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	sess, ok := s.sessionParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Op       string  `json:"op"` // add, remove, all, approved
		OrderIDs []int64 `json:"order_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	switch req.Op {
	case "add":
		for _, id := range req.OrderIDs {
			sess.Select(id)
		}
	case "remove":
		for _, id := range req.OrderIDs {
			sess.Deselect(id)
		}
	case "all":
		sess.SelectAll(s.coordinator.Pending(snap, sess.Project))
	case "approved":
		sess.SelectApprovedOnly(s.coordinator.Pending(snap, sess.Project), s.currentVerdicts())
	default:
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "unknown selection op"})
		return
	}

	s.renderJSON(w, http.StatusOK, struct {
		Selection []int64 `json:"selection"`
	}{Selection: sess.Selected()})
}

func (s *service) handleAccept(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	sess, ok := s.sessionParam(w, r)
	if !ok {
		return
	}

	var req struct {
		OrderID int64 `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	var verdict *proof.Verdict
	if v, ok := s.currentVerdicts()[req.OrderID]; ok {
		verdict = &v
	}
	if err := s.coordinator.Accept(r.Context(), snap, sess, req.OrderID, verdict); err != nil {
		s.renderReviewErr(w, err)
		return
	}
	s.renderJSON(w, http.StatusOK, struct {
		OrderID int64 `json:"order_id"`
	}{OrderID: req.OrderID})
}

func (s *service) handleAcceptBatch(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	sess, ok := s.sessionParam(w, r)
	if !ok {
		return
	}

	accepted, err := s.coordinator.AcceptBatch(r.Context(), snap, sess, s.currentVerdicts())
	if err != nil {
		s.renderReviewErr(w, err)
		return
	}
	s.renderJSON(w, http.StatusOK, struct {
		Accepted []int64 `json:"accepted"`
	}{Accepted: accepted})
}

func (s *service) handleReject(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	sess, ok := s.sessionParam(w, r)
	if !ok {
		return
	}

	var req struct {
		OrderID int64  `json:"order_id"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.renderJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	var verdict *proof.Verdict
	if v, ok := s.currentVerdicts()[req.OrderID]; ok {
		verdict = &v
	}
	if err := s.coordinator.Reject(r.Context(), snap, sess, req.OrderID, req.Reason, verdict); err != nil {
		s.renderReviewErr(w, err)
		return
	}
	s.renderJSON(w, http.StatusOK, struct {
		OrderID int64 `json:"order_id"`
	}{OrderID: req.OrderID})
}

func (s *service) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	sess, ok := s.sessionParam(w, r)
	if !ok {
		return
	}

	rows := export.BuildRows(snap, sess.Project, s.currentVerdicts(), sess.Explorer)

	var err error
	switch r.URL.Query().Get("format") {
	case "tsv":
		w.Header().Set("Content-Type", "text/tab-separated-values")
		w.Header().Set("Content-Disposition", `attachment; filename="proof-review.tsv"`)
		err = export.WriteTSV(w, rows)
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="proof-review.csv"`)
		err = export.WriteCSV(w, rows)
	}
	if err != nil {
		s.log.WithError(err).Error("failed to write export")
	}
}
