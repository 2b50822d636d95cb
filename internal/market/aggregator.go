// Package market turns a project's raw order records into a tradable book view
// and summary statistics.
package market

import (
	"sort"

	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/shopspring/decimal"
)

const (
	priceDecimals  = 6
	amountDecimals = 18
)

// Snapshot is the aggregated market view of one project. Price fields are nil
// when the corresponding side of the market does not exist; nil distinguishes
// "no market" from a zero-priced one.
type Snapshot struct {
	BestBid   *decimal.Decimal `json:"best_bid"`
	BestAsk   *decimal.Decimal `json:"best_ask"`
	SpreadPct *decimal.Decimal `json:"spread_pct"`
	MidMarket *decimal.Decimal `json:"mid_market"`
	LastPrice *decimal.Decimal `json:"last_price"`

	OpenOrderCount int `json:"open_order_count"`
	TradeCount     int `json:"trade_count"`

	// RealizedVolume sums value over the trade history, PotentialVolume over
	// the open book. Callers get both, never a silent sum of the two.
	RealizedVolume  *decimal.Decimal `json:"realized_volume"`
	PotentialVolume *decimal.Decimal `json:"potential_volume"`

	Bids   []ledger.Order `json:"-"`
	Asks   []ledger.Order `json:"-"`
	Trades []ledger.Order `json:"-"`
}

// Price converts a raw fixed-point unit price into its decimal representation.
func Price(o ledger.Order) decimal.Decimal {
	return decimal.NewFromBigInt(o.UnitPrice, -priceDecimals)
}

// Amount converts a raw fixed-point amount into its decimal representation.
func Amount(o ledger.Order) decimal.Decimal {
	return decimal.NewFromBigInt(o.Amount, -amountDecimals)
}

// Value is the order's total value, amount x unit price.
func Value(o ledger.Order) decimal.Decimal {
	amount := decimal.NewFromBigInt(o.Amount, -amountDecimals)
	return amount.Mul(Price(o))
}

// Aggregate builds the market snapshot for one project's orders.
func Aggregate(orders []ledger.Order) Snapshot {
	var snap Snapshot

	for _, o := range orders {
		switch o.Status {
		case ledger.StatusOpen:
			if o.IsSell {
				snap.Asks = append(snap.Asks, o)
			} else {
				snap.Bids = append(snap.Bids, o)
			}
		case ledger.StatusFunded, ledger.StatusSettled:
			// a funded order is already a matched trade at a fixed price
			snap.Trades = append(snap.Trades, o)
		}
	}

	// asks ascending by price, bids descending; ties rank the earlier order
	// first and stay stable across re-aggregation
	sort.Slice(snap.Asks, func(i, j int) bool {
		a, b := snap.Asks[i], snap.Asks[j]
		if c := a.UnitPrice.Cmp(b.UnitPrice); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	sort.Slice(snap.Bids, func(i, j int) bool {
		a, b := snap.Bids[i], snap.Bids[j]
		if c := a.UnitPrice.Cmp(b.UnitPrice); c != 0 {
			return c > 0
		}
		return a.ID < b.ID
	})
	sort.Slice(snap.Trades, func(i, j int) bool {
		return snap.Trades[i].ID > snap.Trades[j].ID
	})

	snap.OpenOrderCount = len(snap.Bids) + len(snap.Asks)
	snap.TradeCount = len(snap.Trades)

	if len(snap.Asks) > 0 {
		p := Price(snap.Asks[0])
		snap.BestAsk = &p
	}
	if len(snap.Bids) > 0 {
		p := Price(snap.Bids[0])
		snap.BestBid = &p
	}
	if len(snap.Trades) > 0 {
		p := Price(snap.Trades[0])
		snap.LastPrice = &p
	}

	if snap.BestBid != nil && snap.BestAsk != nil {
		if snap.BestBid.Sign() != 0 {
			spread := snap.BestAsk.Sub(*snap.BestBid).Div(*snap.BestBid).Mul(decimal.NewFromInt(100))
			snap.SpreadPct = &spread
		}
		mid := snap.BestBid.Add(*snap.BestAsk).Div(decimal.NewFromInt(2))
		snap.MidMarket = &mid
	}

	if len(snap.Trades) > 0 {
		v := sumValue(snap.Trades)
		snap.RealizedVolume = &v
	}
	if snap.OpenOrderCount > 0 {
		v := sumValue(snap.Bids).Add(sumValue(snap.Asks))
		snap.PotentialVolume = &v
	}

	return snap
}

// Summary are the venue-wide totals across all projects.
type Summary struct {
	OpenOrderCount  int             `json:"open_order_count"`
	TradeCount      int             `json:"trade_count"`
	RealizedVolume  decimal.Decimal `json:"realized_volume"`
	PotentialVolume decimal.Decimal `json:"potential_volume"`
}

// Summarize folds per-project snapshots into global venue statistics.
func Summarize(snapshots map[ledger.ProjectID]Snapshot) Summary {
	var s Summary
	for _, snap := range snapshots {
		s.OpenOrderCount += snap.OpenOrderCount
		s.TradeCount += snap.TradeCount
		if snap.RealizedVolume != nil {
			s.RealizedVolume = s.RealizedVolume.Add(*snap.RealizedVolume)
		}
		if snap.PotentialVolume != nil {
			s.PotentialVolume = s.PotentialVolume.Add(*snap.PotentialVolume)
		}
	}
	return s
}

func sumValue(orders []ledger.Order) decimal.Decimal {
	var total decimal.Decimal
	for _, o := range orders {
		total = total.Add(Value(o))
	}
	return total
}
