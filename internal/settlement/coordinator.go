// Package settlement coordinates administrator review of submitted proofs:
// selection management, the deadline gate, and single or batched accept/reject
// mutations against the ledger.
package settlement

import (
	"context"
	"database/sql"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/premarket-labs/otc-coordinator-svc/internal/convert"
	"github.com/premarket-labs/otc-coordinator-svc/internal/data"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/proof"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Mutator issues proof-review mutations against the ledger. Each call is a
// single non-decomposable request: the ledger applies the whole batch or none
// of it, so no partial client-side retry ever happens here.
type Mutator interface {
	AcceptProof(ctx context.Context, id *big.Int) (common.Hash, error)
	AcceptProofBatch(ctx context.Context, ids []*big.Int) (common.Hash, error)
	RejectProof(ctx context.Context, id *big.Int, reason string) (common.Hash, error)
}

type Coordinator struct {
	log     *logan.Entry
	mutator Mutator
	journal data.ReviewJournal
	now     func() time.Time
}

func NewCoordinator(log *logan.Entry, mutator Mutator, journal data.ReviewJournal) *Coordinator {
	return &Coordinator{
		log:     log.WithField("who", "settlement-coordinator"),
		mutator: mutator,
		journal: journal,
		now:     time.Now,
	}
}

// Reviewable reports whether the order's proof may be reviewed now: funded,
// proof present and not yet accepted, and the project deadline has passed.
func (c *Coordinator) Reviewable(snap *ledger.Snapshot, orderID int64) bool {
	_, _, err := c.reviewable(snap, orderID)
	return err == nil
}

// Pending lists the project's reviewable order ids in ascending order.
func (c *Coordinator) Pending(snap *ledger.Snapshot, project ledger.ProjectID) []int64 {
	var out []int64
	for _, o := range snap.Orders {
		if o.Project != project {
			continue
		}
		if _, _, err := c.reviewable(snap, o.ID); err == nil {
			out = append(out, o.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Coordinator) reviewable(snap *ledger.Snapshot, orderID int64) (ledger.Order, ledger.Proof, error) {
	order, ok := snap.Order(orderID)
	if !ok {
		return ledger.Order{}, ledger.Proof{}, ErrUnknownOrder
	}
	if order.Status != ledger.StatusFunded {
		return order, ledger.Proof{}, ErrNotFunded
	}
	p, ok := snap.Proofs[orderID]
	if !ok || p.Reference == "" {
		return order, ledger.Proof{}, ErrProofMissing
	}
	if p.Accepted {
		return order, p, ErrAlreadyAccepted
	}
	state := snap.States[order.Project]
	if state == nil || !state.TGEActivated {
		return order, p, ErrStateUnknown
	}
	if !convert.Overdue(state.Deadline, c.now()) {
		return order, p, ErrDeadlineNotPassed
	}
	return order, p, nil
}

// Accept accepts a single proof. Administrators may accept regardless of the
// automated verdict (out-of-band evidence override); the deadline gate still
// applies. Accepting an already-accepted proof is a no-op so the operation is
// idempotent from the caller's perspective.
func (c *Coordinator) Accept(ctx context.Context, snap *ledger.Snapshot, sess *Session, orderID int64, verdict *proof.Verdict) error {
	_, _, err := c.reviewable(snap, orderID)
	if err == ErrAlreadyAccepted {
		c.log.WithField("order_id", orderID).Debug("proof already accepted, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	txHash, err := c.mutator.AcceptProof(ctx, big.NewInt(orderID))
	if err != nil {
		return errors.Wrap(err, "ledger rejected proof acceptance", logan.F{"order_id": orderID})
	}

	c.record(orderID, "accepted", verdict, "", txHash)
	sess.Deselect(orderID)
	c.log.WithFields(logan.F{"order_id": orderID, "tx": txHash.Hex()}).Info("proof accepted")
	return nil
}

// AcceptBatch accepts the session's current selection in one ledger mutation,
// restricted to reviewable proofs with an APPROVED verdict. The selection is
// cleared only after the mutation succeeds; acceptance state itself is
// re-derived from the ledger on the next refresh, never assumed locally.
func (c *Coordinator) AcceptBatch(ctx context.Context, snap *ledger.Snapshot, sess *Session, verdicts map[int64]proof.Verdict) ([]int64, error) {
	var accepted []int64
	for _, id := range sess.Selected() {
		if _, _, err := c.reviewable(snap, id); err != nil {
			continue
		}
		if v, ok := verdicts[id]; !ok || v.Status != proof.StatusApproved {
			continue
		}
		accepted = append(accepted, id)
	}
	if len(accepted) == 0 {
		return nil, ErrNothingSelected
	}

	ids := make([]*big.Int, len(accepted))
	for i, id := range accepted {
		ids[i] = big.NewInt(id)
	}
	txHash, err := c.mutator.AcceptProofBatch(ctx, ids)
	if err != nil {
		// all affected orders stay pending, the selection stays intact
		return nil, errors.Wrap(err, "ledger rejected batch acceptance", logan.F{"order_count": len(ids)})
	}

	for _, id := range accepted {
		v := verdicts[id]
		c.record(id, "accepted", &v, "", txHash)
	}
	sess.Clear()
	c.log.WithFields(logan.F{"order_count": len(accepted), "tx": txHash.Hex()}).Info("proof batch accepted")
	return accepted, nil
}

// Reject rejects a single proof with a mandatory reason. Rejection of an
// already-accepted proof is refused here, before any network call.
func (c *Coordinator) Reject(ctx context.Context, snap *ledger.Snapshot, sess *Session, orderID int64, reason string, verdict *proof.Verdict) error {
	if reason == "" {
		return ErrEmptyReason
	}
	if _, _, err := c.reviewable(snap, orderID); err != nil {
		return err
	}

	txHash, err := c.mutator.RejectProof(ctx, big.NewInt(orderID), reason)
	if err != nil {
		return errors.Wrap(err, "ledger rejected proof rejection", logan.F{"order_id": orderID})
	}

	c.record(orderID, "rejected", verdict, reason, txHash)
	sess.Deselect(orderID)
	c.log.WithFields(logan.F{"order_id": orderID, "tx": txHash.Hex()}).Info("proof rejected")
	return nil
}

func (c *Coordinator) record(orderID int64, action string, verdict *proof.Verdict, reason string, txHash common.Hash) {
	entry := data.ReviewEntry{
		OrderID:   orderID,
		Action:    action,
		TxHash:    txHash.Hex(),
		CreatedAt: c.now().UTC(),
	}
	if verdict != nil {
		entry.Verdict = string(verdict.Status)
	}
	if reason != "" {
		entry.Reason = sql.NullString{String: reason, Valid: true}
	}
	if err := c.journal.Insert(entry); err != nil {
		// the ledger mutation already went through; losing an audit row must
		// not fail the review operation
		c.log.WithError(err).WithField("order_id", orderID).Error("failed to journal review decision")
	}
}
