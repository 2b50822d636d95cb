package service

import (
	"context"
	"sync"

	"github.com/premarket-labs/otc-coordinator-svc/internal/convert"
	"github.com/premarket-labs/otc-coordinator-svc/internal/data"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/proof"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"golang.org/x/sync/errgroup"
)

func (s *service) refreshOnce(ctx context.Context) error {
	snap, err := s.mirror.Refresh(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to refresh ledger mirror")
	}
	if len(snap.Missing) > 0 {
		s.log.WithField("missing", len(snap.Missing)).Warn("snapshot is partial")
	}

	s.persist(snap)
	s.revalidate(ctx, snap)
	return nil
}

func (s *service) pollOnce(ctx context.Context) error {
	return s.mirror.PollAcceptance(ctx)
}

func (s *service) persist(snap *ledger.Snapshot) {
	for _, o := range snap.Orders {
		rec := data.MirrorOrder{
			OrderID:   o.ID,
			Project:   o.Project.Hex(),
			Maker:     o.Maker.Hex(),
			Buyer:     o.Buyer.Hex(),
			Seller:    o.Seller.Hex(),
			Amount:    o.Amount.String(),
			UnitPrice: o.UnitPrice.String(),
			IsSell:    o.IsSell,
			Status:    uint8(o.Status),
		}
		if o.BuyerFunds != nil {
			rec.BuyerFunds = o.BuyerFunds.String()
		}
		if o.SellerCollateral != nil {
			rec.SellerCollateral = o.SellerCollateral.String()
		}
		if err := s.orders.Upsert(rec); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Error("failed to persist mirrored order")
		}
	}
}

// revalidate recomputes the verdict of every pending proof in the snapshot.
// Resolution reads are independent and run concurrently; the validator is
// idempotent, so re-running on every cycle is safe.
func (s *service) revalidate(ctx context.Context, snap *ledger.Snapshot) {
	fresh := make(map[int64]proof.Verdict)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.network.Workers)

	for _, o := range snap.Orders {
		o := o
		p, ok := snap.Proofs[o.ID]
		if !ok || p.Reference == "" || p.Accepted || o.Status != ledger.StatusFunded {
			continue
		}
		state := snap.States[o.Project]
		if state == nil {
			continue
		}

		exp := proof.Expected{
			Seller: o.Seller,
			Buyer:  o.Buyer,
			Asset:  state.Asset,
			Amount: convert.ToSettlementAmount(o.Amount, state.ConversionRatio),
		}
		explorer := s.sessions.ExplorerFor(o.Project)

		g.Go(func() error {
			v := s.validator.Validate(gctx, o.ID, p.Reference, explorer, exp)
			mu.Lock()
			fresh[o.ID] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.verdictsMu.Lock()
	s.verdicts = fresh
	s.verdictsMu.Unlock()
}

func (s *service) currentVerdicts() map[int64]proof.Verdict {
	s.verdictsMu.RLock()
	defer s.verdictsMu.RUnlock()
	out := make(map[int64]proof.Verdict, len(s.verdicts))
	for id, v := range s.verdicts {
		out[id] = v
	}
	return out
}
