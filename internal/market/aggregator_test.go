package market

import (
	"math/big"
	"testing"

	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// price builds a raw 6-decimal fixed-point unit price from whole units.
func price(units int64) *big.Int {
	return big.NewInt(units * 1_000_000)
}

// amount builds a raw 18-decimal fixed-point amount from whole units.
func amount(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func order(id int64, status ledger.OrderStatus, isSell bool, unitPrice *big.Int) ledger.Order {
	return ledger.Order{
		ID:        id,
		Status:    status,
		IsSell:    isSell,
		Amount:    amount(10),
		UnitPrice: unitPrice,
	}
}

func TestAggregate_Empty(t *testing.T) {
	snap := Aggregate(nil)

	assert.Nil(t, snap.BestBid)
	assert.Nil(t, snap.BestAsk)
	assert.Nil(t, snap.SpreadPct)
	assert.Nil(t, snap.MidMarket)
	assert.Nil(t, snap.LastPrice)
	assert.Nil(t, snap.RealizedVolume)
	assert.Nil(t, snap.PotentialVolume)
	assert.Zero(t, snap.OpenOrderCount)
	assert.Zero(t, snap.TradeCount)
}

func TestAggregate_AskOrderingWithTies(t *testing.T) {
	snap := Aggregate([]ledger.Order{
		order(1, ledger.StatusOpen, true, price(5)),
		order(2, ledger.StatusOpen, true, price(3)),
		order(3, ledger.StatusOpen, true, price(3)),
		order(4, ledger.StatusOpen, true, price(8)),
	})

	require.NotNil(t, snap.BestAsk)
	assert.True(t, snap.BestAsk.Equal(decimal.NewFromInt(3)))

	ids := []int64{snap.Asks[0].ID, snap.Asks[1].ID, snap.Asks[2].ID, snap.Asks[3].ID}
	assert.Equal(t, []int64{2, 3, 1, 4}, ids, "equal prices rank the earlier order first")
}

func TestAggregate_BidOrderingAndSpread(t *testing.T) {
	snap := Aggregate([]ledger.Order{
		order(1, ledger.StatusOpen, false, price(4)),
		order(2, ledger.StatusOpen, false, price(6)),
		order(3, ledger.StatusOpen, true, price(9)),
	})

	require.NotNil(t, snap.BestBid)
	require.NotNil(t, snap.BestAsk)
	assert.True(t, snap.BestBid.Equal(decimal.NewFromInt(6)))
	assert.True(t, snap.BestAsk.Equal(decimal.NewFromInt(9)))

	require.NotNil(t, snap.SpreadPct)
	assert.True(t, snap.SpreadPct.Equal(decimal.NewFromInt(50)), "spread = (9-6)/6*100")

	require.NotNil(t, snap.MidMarket)
	assert.True(t, snap.MidMarket.Equal(decimal.RequireFromString("7.5")))
}

func TestAggregate_TradesAndVolumes(t *testing.T) {
	snap := Aggregate([]ledger.Order{
		order(1, ledger.StatusFunded, true, price(2)),
		order(5, ledger.StatusSettled, true, price(7)),
		order(3, ledger.StatusFunded, false, price(4)),
		order(8, ledger.StatusOpen, true, price(9)),
		order(9, ledger.StatusCanceled, true, price(1)), // ended orders never count
		order(10, ledger.StatusDefaulted, true, price(1)),
	})

	assert.Equal(t, 3, snap.TradeCount)
	assert.Equal(t, 1, snap.OpenOrderCount)

	require.NotNil(t, snap.LastPrice)
	assert.True(t, snap.LastPrice.Equal(decimal.NewFromInt(7)), "last price comes from the highest-id trade")

	// realized: 10*2 + 10*7 + 10*4 = 130; potential: 10*9 = 90
	require.NotNil(t, snap.RealizedVolume)
	require.NotNil(t, snap.PotentialVolume)
	assert.True(t, snap.RealizedVolume.Equal(decimal.NewFromInt(130)))
	assert.True(t, snap.PotentialVolume.Equal(decimal.NewFromInt(90)))
}

func TestAggregate_OneSidedMarket(t *testing.T) {
	snap := Aggregate([]ledger.Order{order(1, ledger.StatusOpen, true, price(5))})

	assert.NotNil(t, snap.BestAsk)
	assert.Nil(t, snap.BestBid)
	assert.Nil(t, snap.SpreadPct, "spread is undefined without both sides")
	assert.Nil(t, snap.MidMarket)
	assert.Nil(t, snap.RealizedVolume)
	assert.NotNil(t, snap.PotentialVolume)
}

func TestSummarize(t *testing.T) {
	a := Aggregate([]ledger.Order{
		order(1, ledger.StatusFunded, true, price(2)),
		order(2, ledger.StatusOpen, true, price(3)),
	})
	b := Aggregate([]ledger.Order{
		order(3, ledger.StatusSettled, false, price(5)),
	})

	sum := Summarize(map[ledger.ProjectID]Snapshot{
		{0x01}: a,
		{0x02}: b,
	})
	assert.Equal(t, 1, sum.OpenOrderCount)
	assert.Equal(t, 2, sum.TradeCount)
	assert.True(t, sum.RealizedVolume.Equal(decimal.NewFromInt(70)), "10*2 + 10*5")
	assert.True(t, sum.PotentialVolume.Equal(decimal.NewFromInt(30)))
}
