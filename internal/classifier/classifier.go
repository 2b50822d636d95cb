// Package classifier derives the display bucket and per-order action
// eligibility from raw ledger records. Pure functions of their inputs, no
// ledger access happens here.
package classifier

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/premarket-labs/otc-coordinator-svc/internal/convert"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
)

type Bucket string

const (
	BucketOpen         Bucket = "open"
	BucketFilled       Bucket = "filled"
	BucketInSettlement Bucket = "in_settlement"
	BucketEnded        Bucket = "ended"
)

// Actions is the per-order action eligibility for one caller.
type Actions struct {
	CanCancel  bool `json:"can_cancel"`
	CanLock    bool `json:"can_lock"`
	CanSettle  bool `json:"can_settle"`
	CanDefault bool `json:"can_default"`
}

// Input carries everything classification depends on. State may be nil for a
// project whose settlement state could not be read or is not yet activated;
// classification then fails safe toward "not yet settleable".
type Input struct {
	Order   ledger.Order
	Project ledger.Project
	State   *ledger.SettlementState
	Proof   *ledger.Proof

	Caller common.Address
	Now    time.Time
	Paused bool

	// Allowance is the caller's settlement-asset allowance toward the escrow,
	// nil if unknown. Only consulted for the token delivery path.
	Allowance *big.Int
}

// Classify buckets the order and derives what the caller may do with it.
func Classify(in Input) (Bucket, Actions) {
	bucket := bucketOf(in.Order, in.State)
	if in.Paused {
		return bucket, Actions{}
	}

	o := in.Order
	var a Actions

	if o.Status == ledger.StatusOpen {
		a.CanCancel = in.Caller == o.Maker && oppositeUnlocked(o)
		a.CanLock = canLock(o, in.Caller)
	}

	if bucket == BucketInSettlement {
		a.CanSettle = canSettle(in)
		// strictly after the deadline; at the instant itself only proof
		// review opens, not default claims
		a.CanDefault = in.Now.After(in.State.Deadline)
	}

	return bucket, a
}

func bucketOf(o ledger.Order, state *ledger.SettlementState) Bucket {
	switch {
	case o.Status == ledger.StatusOpen:
		return BucketOpen
	case o.Status.Ended():
		return BucketEnded
	case state != nil && state.TGEActivated:
		return BucketInSettlement
	default:
		return BucketFilled
	}
}

// oppositeUnlocked reports whether the side opposite to the maker has not
// locked collateral yet, i.e. the order was never matched.
func oppositeUnlocked(o ledger.Order) bool {
	if o.IsSell {
		return o.BuyerFunds == nil || o.BuyerFunds.Sign() == 0
	}
	return o.SellerCollateral == nil || o.SellerCollateral.Sign() == 0
}

func canLock(o ledger.Order, caller common.Address) bool {
	if caller == o.Maker {
		return false
	}
	if o.AllowedTaker != nil && caller != *o.AllowedTaker {
		return false
	}
	return oppositeUnlocked(o)
}

func canSettle(in Input) bool {
	o, st := in.Order, in.State

	pointsPath := in.Project.IsPoints || (in.Proof != nil && in.Proof.Reference != "")
	if pointsPath {
		// settlement is permissionless once the proof is accepted
		return in.Proof != nil && in.Proof.Accepted
	}

	if in.Caller != o.Seller {
		return false
	}
	if in.Allowance == nil || st.ConversionRatio == nil {
		return false
	}
	due := convert.ToSettlementAmount(o.Amount, st.ConversionRatio)
	return in.Allowance.Cmp(due) >= 0
}
