package convert

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ratio(f string) *big.Int {
	r, ok := new(big.Rat).SetString(f)
	if !ok {
		panic("bad ratio literal " + f)
	}
	out := new(big.Int).Mul(r.Num(), RatioScale)
	return out.Quo(out, r.Denom())
}

func points(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), RatioScale)
}

func TestToSettlementAmount(t *testing.T) {
	// 100 points at ratio 1.2 is exactly 120 settlement units
	got := ToSettlementAmount(points(100), ratio("1.2"))
	assert.Equal(t, points(120), got)

	// 1 point at a dust ratio truncates toward zero, never rounds up
	got = ToSettlementAmount(big.NewInt(1), ratio("0.0000001"))
	assert.Equal(t, int64(0), got.Int64())

	// truncation drops the fractional remainder entirely
	got = ToSettlementAmount(big.NewInt(10), ratio("0.15"))
	assert.Equal(t, int64(1), got.Int64())

	// zero ratio yields zero
	got = ToSettlementAmount(points(1000), big.NewInt(0))
	assert.True(t, got.Sign() == 0)
}

func TestRemainingAndOverdue(t *testing.T) {
	deadline := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Minute, Remaining(deadline, deadline.Add(-time.Minute)))
	assert.Equal(t, -time.Second, Remaining(deadline, deadline.Add(time.Second)))

	assert.False(t, Overdue(deadline, deadline.Add(-time.Nanosecond)))
	assert.True(t, Overdue(deadline, deadline), "review opens exactly at the deadline")
	assert.True(t, Overdue(deadline, deadline.Add(time.Second)))
}
