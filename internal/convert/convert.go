// Package convert holds the points→settlement-asset conversion and the
// settlement-deadline arithmetic shared by the classifier, the proof validator
// and the batch coordinator.
package convert

import (
	"math/big"
	"time"
)

// RatioScale is the fixed-point scale of conversion ratios (18 fractional digits).
var RatioScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ToSettlementAmount converts a points amount into settlement-asset units:
// points * ratio / 1e18, truncated toward zero. Truncation must match the
// contract's integer division exactly, otherwise accepted proofs would be
// compared against an amount the seller can never deliver.
func ToSettlementAmount(points, ratio *big.Int) *big.Int {
	out := new(big.Int).Mul(points, ratio)
	return out.Quo(out, RatioScale)
}

// Remaining returns the time left until the settlement deadline; negative
// means the deadline has passed.
func Remaining(deadline, now time.Time) time.Duration {
	return deadline.Sub(now)
}

// Overdue reports whether the deadline has passed (remaining <= 0). This is
// the sole trigger that opens proof-review eligibility.
func Overdue(deadline, now time.Time) bool {
	return Remaining(deadline, now) <= 0
}
